package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type Property struct {
	Name  string
	Value any
}

// PropertyBag is an insertion-ordered set of named raw values. Names compare
// case-insensitively; setting an existing name replaces its value in place.
type PropertyBag struct {
	props []Property
	index map[string]int
}

func NewPropertyBag() *PropertyBag {
	return &PropertyBag{index: map[string]int{}}
}

// BagFromRow pairs header names with row cells. Missing cells become "".
func BagFromRow(headers, row []string) *PropertyBag {
	bag := NewPropertyBag()
	for i, h := range headers {
		value := ""
		if i < len(row) {
			value = row[i]
		}
		bag.Set(h, value)
	}
	return bag
}

func (b *PropertyBag) Set(name string, value any) {
	if b.index == nil {
		b.index = map[string]int{}
	}
	key := foldKey(name)
	if i, ok := b.index[key]; ok {
		b.props[i].Value = value
		return
	}
	b.index[key] = len(b.props)
	b.props = append(b.props, Property{Name: name, Value: value})
}

func (b *PropertyBag) Get(name string) (any, bool) {
	if b == nil {
		return nil, false
	}
	i, ok := b.index[foldKey(name)]
	if !ok {
		return nil, false
	}
	return b.props[i].Value, true
}

func (b *PropertyBag) Has(name string) bool {
	_, ok := b.Get(name)
	return ok
}

func (b *PropertyBag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.props)
}

// Properties returns a copy of the entries in insertion order.
func (b *PropertyBag) Properties() []Property {
	if b == nil {
		return nil
	}
	out := make([]Property, len(b.props))
	copy(out, b.props)
	return out
}

func (b *PropertyBag) Names() []string {
	if b == nil {
		return nil
	}
	out := make([]string, 0, len(b.props))
	for _, p := range b.props {
		out = append(out, p.Name)
	}
	return out
}

func foldKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CustomProperties keeps unclaimed raw properties as strings, in bag order.
type CustomProperties struct {
	keys   []string
	values map[string]string
}

func (c *CustomProperties) Set(key, value string) {
	if c.values == nil {
		c.values = map[string]string{}
	}
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

func (c CustomProperties) Get(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c CustomProperties) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

func (c CustomProperties) Len() int {
	return len(c.keys)
}

func (c CustomProperties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONString(&buf, c.values[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *CustomProperties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = CustomProperties{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("custom properties: expected object, got %v", tok)
	}
	out := CustomProperties{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("custom properties: unexpected key %v", keyTok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("custom properties: value of %q: %w", key, err)
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}

// writeJSONString encodes s without HTML escaping.
func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
