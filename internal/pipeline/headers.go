package pipeline

import (
	"strings"

	"todoreader/internal"
	"todoreader/internal/util"
)

// Undocumented-property tokens that show up in column names of raw archive dumps.
const (
	tokenBody         = "0x1000"
	tokenSubmitTime   = "0x0039"
	tokenLastModified = "0x3008"
	tokenFolder       = "0x0E05"
)

type headerRule struct {
	field   internal.Field
	probes  []string
	exclude []string
}

// Evaluated in order; the first matching rule wins.
var headerRules = []headerRule{
	{field: internal.FieldSubject, probes: []string{"Subject", "Title"}},
	{field: internal.FieldItemClass, probes: []string{"Item Class", "Message Class"}},
	{field: internal.FieldBody, probes: []string{"Body", "Content", tokenBody}},
	{field: internal.FieldCreationTime, probes: []string{tokenSubmitTime}},
	{field: internal.FieldLastModificationTime, probes: []string{tokenLastModified}},
	{field: internal.FieldFolder, probes: []string{tokenFolder}},
	{field: internal.FieldCreationTime, probes: []string{"Creation Time", "Created"}},
	{field: internal.FieldLastModificationTime, probes: []string{"Modification", "Modified"}},
	{field: internal.FieldFolder, probes: []string{"Folder"}},
	{field: internal.FieldIsComplete, probes: []string{"Complete"}, exclude: []string{"Percent"}},
	{field: internal.FieldCategories, probes: []string{"Categories", "Category"}},
	{field: internal.FieldTaskID, probes: []string{"Task ID", "Task_ID"}},
	{field: internal.FieldLocalID, probes: []string{"Local ID", "Local_ID"}},
	{field: internal.FieldCreator, probes: []string{"Creator", "Owner", "Author"}},
}

// CanonicalHeader resolves one raw header. ok is false when no rule matches.
func CanonicalHeader(raw string) (internal.Field, bool) {
	for _, rule := range headerRules {
		if !util.ContainsFold(raw, rule.probes...) {
			continue
		}
		if len(rule.exclude) > 0 && util.ContainsFold(raw, rule.exclude...) {
			continue
		}
		return rule.field, true
	}
	return "", false
}

// HeaderMap assigns every raw header of a batch to a canonical field or to
// itself. It is read-only once built.
type HeaderMap struct {
	raw     []string
	targets map[string]string
	fields  map[string]internal.Field
}

// CanonicalizeHeaders builds the HeaderMap for one batch header set.
func CanonicalizeHeaders(headers []string) HeaderMap {
	m := HeaderMap{
		targets: make(map[string]string, len(headers)),
		fields:  make(map[string]internal.Field, len(headers)),
	}
	for _, h := range headers {
		key := headerKey(h)
		if _, seen := m.targets[key]; seen {
			continue
		}
		m.raw = append(m.raw, h)
		if field, ok := CanonicalHeader(h); ok {
			m.targets[key] = string(field)
			m.fields[key] = field
			continue
		}
		m.targets[key] = h
	}
	return m
}

// Target returns the canonical name for raw, or raw itself.
func (m HeaderMap) Target(raw string) string {
	if t, ok := m.targets[headerKey(raw)]; ok {
		return t
	}
	if field, ok := CanonicalHeader(raw); ok {
		return string(field)
	}
	return raw
}

// Field returns the canonical field for raw, if any. Headers outside the
// batch set are resolved with the same rules.
func (m HeaderMap) Field(raw string) (internal.Field, bool) {
	key := headerKey(raw)
	if _, known := m.targets[key]; known {
		field, ok := m.fields[key]
		return field, ok
	}
	return CanonicalHeader(raw)
}

// Headers returns the raw headers in first-seen order.
func (m HeaderMap) Headers() []string {
	out := make([]string, len(m.raw))
	copy(out, m.raw)
	return out
}

func (m HeaderMap) Len() int {
	return len(m.raw)
}

func headerKey(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
