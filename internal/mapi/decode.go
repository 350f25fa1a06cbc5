package mapi

import (
	"encoding/json"
	"fmt"
	"time"
)

// Seconds between the FILETIME epoch (1601-01-01) and the Unix epoch.
const filetimeUnixOffset = 11644473600

// FromFiletime converts a Windows FILETIME count of 100ns ticks.
func FromFiletime(ticks int64) time.Time {
	const perSecond = 10_000_000
	return time.Unix(ticks/perSecond-filetimeUnixOffset, (ticks%perSecond)*100).UTC()
}

// DecodeValue converts a JSON-encoded property value according to the type
// carried in the tag.
func DecodeValue(tag uint32, raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	ptype := PropType(tag)
	if ptype&PtMultiFlag != 0 {
		return decodeMulti(ptype&^PtMultiFlag, raw)
	}
	return decodeSingle(ptype, raw)
}

func decodeMulti(ptype uint16, raw json.RawMessage) (any, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("multi-valued property: %w", err)
	}
	if ptype == PtUnicode || ptype == PtString8 {
		out := make([]string, 0, len(items))
		for _, item := range items {
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return nil, fmt.Errorf("multi-valued string: %w", err)
			}
			out = append(out, s)
		}
		return out, nil
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		v, err := decodeSingle(ptype, item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeSingle(ptype uint16, raw json.RawMessage) (any, error) {
	switch ptype {
	case PtShort, PtLong:
		var n int32
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("integer property: %w", err)
		}
		return n, nil
	case PtLongLong:
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("int64 property: %w", err)
		}
		return n, nil
	case PtFloat, PtDouble:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("floating property: %w", err)
		}
		return f, nil
	case PtBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			return b, nil
		}
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("boolean property: %s", string(raw))
		}
		return n != 0, nil
	case PtString8, PtUnicode:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("string property: %w", err)
		}
		return s, nil
	case PtSysTime:
		return decodeTime(raw)
	case PtBinary:
		var b []byte
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, fmt.Errorf("binary property: %w", err)
		}
		return b, nil
	default:
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func decodeTime(raw json.RawMessage) (any, error) {
	var ticks int64
	if err := json.Unmarshal(raw, &ticks); err == nil {
		return FromFiletime(ticks), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("time property: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, fmt.Errorf("time property: %w", err)
	}
	return t, nil
}
