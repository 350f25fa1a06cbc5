package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var reSpaces = regexp.MustCompile(`[ \t\f\v]+`)
var reBlankLines = regexp.MustCompile(`\n{3,}`)

// ContainsFold reports whether s contains any of the probes, ignoring case.
func ContainsFold(s string, probes ...string) bool {
	ls := strings.ToLower(s)
	for _, p := range probes {
		if strings.Contains(ls, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// EqualsAnyFold reports whether s equals one of the candidates, ignoring case
// and surrounding whitespace.
func EqualsAnyFold(s string, candidates ...string) bool {
	s = strings.TrimSpace(s)
	for _, c := range candidates {
		if strings.EqualFold(s, strings.TrimSpace(c)) {
			return true
		}
	}
	return false
}

// FormatValue renders a raw property value as text.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return strings.ToUpper(fmt.Sprintf("%x", t))
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return ""
		}
		return FormatValue(*t)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []string:
		return strings.Join(t, "; ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, FormatValue(item))
		}
		return strings.Join(parts, "; ")
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// HTMLToText flattens an HTML fragment into readable text, one block per line.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script,style,head").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p,div,li,tr,h1,h2,h3,h4,h5,h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, strings.TrimSpace(reSpaces.ReplaceAllString(line, " ")))
	}
	text := strings.Join(out, "\n")
	text = reBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
