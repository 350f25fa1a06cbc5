package mapi

import (
	"todoreader/internal"
	"todoreader/internal/util"
)

type Property struct {
	Tag   uint32
	Value any
}

// Message is an ordered typed property store for one archive item.
type Message struct {
	Folder       string
	MessageClass string

	props []Property
	index map[uint32]int
}

func NewMessage(folder, messageClass string) *Message {
	return &Message{Folder: folder, MessageClass: messageClass, index: map[uint32]int{}}
}

// Set stores a value; a repeated tag keeps its first position.
func (m *Message) Set(tag uint32, value any) {
	if m.index == nil {
		m.index = map[uint32]int{}
	}
	if i, ok := m.index[tag]; ok {
		m.props[i].Value = value
		return
	}
	m.index[tag] = len(m.props)
	m.props = append(m.props, Property{Tag: tag, Value: value})
}

// Property implements internal.PropertyStore.
func (m *Message) Property(tag uint32) (any, bool) {
	_, v, ok := m.Lookup(tag)
	return v, ok
}

// Lookup finds tag, falling back to the other string type of the same
// property id. It reports the tag that was actually stored.
func (m *Message) Lookup(tag uint32) (uint32, any, bool) {
	if i, ok := m.index[tag]; ok {
		return tag, m.props[i].Value, true
	}
	if alt, ok := StringVariant(tag); ok {
		if i, ok := m.index[alt]; ok {
			return alt, m.props[i].Value, true
		}
	}
	return 0, nil, false
}

func (m *Message) Properties() []Property {
	out := make([]Property, len(m.props))
	copy(out, m.props)
	return out
}

// Bag exposes the message as a property bag keyed by decimal tag.
func (m *Message) Bag() *internal.PropertyBag {
	bag := internal.NewPropertyBag()
	for _, p := range m.props {
		bag.Set(Key(p.Tag), p.Value)
	}
	return bag
}

// Record wraps the message for the normaliser.
func (m *Message) Record(source internal.ItemSource) internal.SourceRecord {
	class := m.MessageClass
	if class == "" {
		if v, ok := m.Property(TagMessageClass); ok {
			class = util.FormatValue(v)
		}
	}
	return internal.SourceRecord{
		Source:       source,
		Folder:       m.Folder,
		MessageClass: class,
		Properties:   m.Bag(),
		Store:        m,
	}
}
