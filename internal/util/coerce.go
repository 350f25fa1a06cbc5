package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reThousandsDot   = regexp.MustCompile(`^-?\d{1,3}(?:\.\d{3})+$`)
	reThousandsComma = regexp.MustCompile(`^-?\d{1,3}(?:,\d{3})+$`)
)

// Layouts that carry their own zone.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC822Z,
	"20060102T150405Z",
}

var isoLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var monthFirstLayouts = []string{
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"1/2/06",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
	"Monday, January 2, 2006",
}

var dayFirstLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006 3:04:05 PM",
	"2/1/2006 3:04 PM",
	"2/1/2006",
	"2/1/06",
	"2 Jan 2006 15:04",
	"2 Jan 2006",
	"Monday, 2 January 2006",
}

var dottedLayouts = []string{
	"2.1.2006 15:04:05",
	"2.1.2006 15:04",
	"2.1.2006",
}

// DateParser parses free-form timestamps the way a desktop export writes them.
// DayFirst selects the dd/mm ordering for slash dates; values without a zone
// are read in Location (time.Local when nil).
type DateParser struct {
	Location *time.Location
	DayFirst bool
}

func (p DateParser) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

// Parse returns false for empty or unrecognised input.
func (p DateParser) Parse(raw string) (time.Time, bool) {
	value := strings.Join(strings.Fields(raw), " ")
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	loc := p.location()
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}

	local := monthFirstLayouts
	if p.DayFirst {
		local = dayFirstLayouts
	}
	upper := strings.ToUpper(value)
	for _, layout := range local {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
		if t, err := time.ParseInLocation(layout, upper, loc); err == nil {
			return t, true
		}
	}
	for _, layout := range dottedLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Coerce accepts native times as well as text.
func (p DateParser) Coerce(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case string:
		return p.Parse(t)
	default:
		return p.Parse(FormatValue(v))
	}
}

// ParseBool is true only for the literal "true" in any casing. Surrounding
// blanks make the value false.
func ParseBool(raw string) bool {
	return strings.EqualFold(raw, "true")
}

func CoerceBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return ParseBool(FormatValue(v))
}

func ParseInt(raw string, fallback int) int {
	token := normalizeNumericToken(raw)
	if token == "" {
		return fallback
	}
	if n, err := strconv.Atoi(token); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return int(f)
	}
	return fallback
}

func ParseFloat(raw string, fallback float64) float64 {
	token := normalizeNumericToken(raw)
	if token == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}

func CoerceInt(v any, fallback int) int {
	switch t := v.(type) {
	case int:
		return t
	case int8:
		return int(t)
	case int16:
		return int(t)
	case int32:
		return int(t)
	case int64:
		return int(t)
	case uint8:
		return int(t)
	case uint16:
		return int(t)
	case uint32:
		return int(t)
	case float32:
		return int(t)
	case float64:
		return int(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case nil:
		return fallback
	default:
		return ParseInt(FormatValue(v), fallback)
	}
}

func CoerceFloat(v any, fallback float64) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case nil:
		return fallback
	default:
		return ParseFloat(FormatValue(v), fallback)
	}
}

// ParsePriority understands Outlook importance words.
func ParsePriority(raw string, fallback int) int {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return 0
	case "normal":
		return 1
	case "high":
		return 2
	}
	return ParseInt(raw, fallback)
}

// ParseTaskStatus maps Outlook status words to their numeric task status.
func ParseTaskStatus(raw string, fallback int) int {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "not started":
		return 0
	case "in progress":
		return 1
	case "completed", "complete":
		return 2
	case "waiting on someone else", "waiting":
		return 3
	case "deferred":
		return 4
	}
	return ParseInt(raw, fallback)
}

func normalizeNumericToken(token string) string {
	compact := strings.ReplaceAll(strings.TrimSpace(token), " ", "")
	compact = strings.ReplaceAll(compact, " ", "")
	compact = strings.TrimSuffix(compact, "%")
	if reThousandsDot.MatchString(compact) {
		return strings.ReplaceAll(compact, ".", "")
	}
	if reThousandsComma.MatchString(compact) {
		return strings.ReplaceAll(compact, ",", "")
	}
	if strings.Contains(compact, ",") && !strings.Contains(compact, ".") {
		return strings.ReplaceAll(compact, ",", ".")
	}
	return compact
}
