package pipeline

import "todoreader/internal"

// Batch accumulates normalised records in encounter order.
type Batch struct {
	full   []internal.FullRecord
	simple []internal.SimpleRecord
}

func NewBatch() *Batch {
	return &Batch{}
}

func (b *Batch) Append(full internal.FullRecord, simple internal.SimpleRecord) {
	b.full = append(b.full, full)
	b.simple = append(b.simple, simple)
}

func (b *Batch) Len() int {
	return len(b.full)
}

// Full returns a copy of the full records; never nil.
func (b *Batch) Full() []internal.FullRecord {
	out := make([]internal.FullRecord, len(b.full))
	copy(out, b.full)
	return out
}

// Simple returns a copy of the simple records; never nil.
func (b *Batch) Simple() []internal.SimpleRecord {
	out := make([]internal.SimpleRecord, len(b.simple))
	copy(out, b.simple)
	return out
}
