// Package mapi models the typed message-property store of an Outlook archive:
// well-known property tags, property types and an ordered in-memory message.
package mapi

import (
	"fmt"
	"strconv"
	"strings"
)

// Property types (low word of a tag).
const (
	PtUnspecified uint16 = 0x0000
	PtShort       uint16 = 0x0002
	PtLong        uint16 = 0x0003
	PtFloat       uint16 = 0x0004
	PtDouble      uint16 = 0x0005
	PtBoolean     uint16 = 0x000B
	PtLongLong    uint16 = 0x0014
	PtString8     uint16 = 0x001E
	PtUnicode     uint16 = 0x001F
	PtSysTime     uint16 = 0x0040
	PtBinary      uint16 = 0x0102
	PtMultiFlag   uint16 = 0x1000
)

// Well-known tags read for task items.
const (
	TagMessageClass     uint32 = 0x001A001F
	TagSubject          uint32 = 0x0037001F
	TagClientSubmitTime uint32 = 0x00390040
	TagDeliveryTime     uint32 = 0x0E060040
	TagParentDisplay    uint32 = 0x0E05001F
	TagBody             uint32 = 0x1000001F
	TagHTML             uint32 = 0x10130102
	TagCreationTime     uint32 = 0x30070040
	TagLastModified     uint32 = 0x30080040
	TagLocalID          uint32 = 0x3662001F
	TagCreatorName      uint32 = 0x3FF8001F

	TagTaskDueDate       uint32 = 0x81020040
	TagTaskStartDate     uint32 = 0x81030040
	TagTaskPercent       uint32 = 0x81050003
	TagTaskDateCompleted uint32 = 0x810F0040
	TagTaskStatus        uint32 = 0x81110003
	TagTaskComplete      uint32 = 0x81EC000B
	TagReminderTime      uint32 = 0x85020040
	TagCategories        uint32 = 0x850C001E
	TagTaskPriority      uint32 = 0x85150003
	TagTaskID            uint32 = 0x85E0001F
)

func PropID(tag uint32) uint16 { return uint16(tag >> 16) }

func PropType(tag uint32) uint16 { return uint16(tag & 0xFFFF) }

// StringVariant returns the tag with the same property id and the other
// string type (PT_STRING8 and PT_UNICODE, single or multi-valued).
func StringVariant(tag uint32) (uint32, bool) {
	id := tag &^ 0xFFFF
	switch PropType(tag) {
	case PtString8:
		return id | uint32(PtUnicode), true
	case PtUnicode:
		return id | uint32(PtString8), true
	case PtMultiFlag | PtString8:
		return id | uint32(PtMultiFlag|PtUnicode), true
	case PtMultiFlag | PtUnicode:
		return id | uint32(PtMultiFlag|PtString8), true
	}
	return 0, false
}

// Key is the property-bag name of a tag: its decimal value.
func Key(tag uint32) string {
	return strconv.FormatUint(uint64(tag), 10)
}

// ParseTag accepts "0x0037001F", an eight-digit hex tag such as "0037001F"
// or "30080040", or a decimal tag of any other length.
func ParseTag(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty property tag")
	}
	lower := strings.ToLower(s)
	base := 10
	switch {
	case strings.HasPrefix(lower, "0x"):
		lower, base = lower[2:], 16
	case len(lower) == 8:
		base = 16
	}
	v, err := strconv.ParseUint(lower, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid property tag %q: %w", s, err)
	}
	return uint32(v), nil
}
