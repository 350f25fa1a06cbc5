package internal

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyBagOrderAndCase(t *testing.T) {
	bag := NewPropertyBag()
	bag.Set("Subject", "a")
	bag.Set("Task ID", "T1")
	bag.Set("SUBJECT", "b")

	assert.Equal(t, 2, bag.Len())
	assert.Equal(t, []string{"Subject", "Task ID"}, bag.Names())

	v, ok := bag.Get("subject")
	require.True(t, ok)
	assert.Equal(t, "b", v)
	assert.False(t, bag.Has("Body"))
}

func TestBagFromRowPadsShortRows(t *testing.T) {
	bag := BagFromRow([]string{"Subject", "Complete", "Owner"}, []string{"x", "true"})
	v, ok := bag.Get("Owner")
	require.True(t, ok)
	assert.Equal(t, "", v)
	assert.Equal(t, 3, bag.Len())
}

func TestNilBagIsEmpty(t *testing.T) {
	var bag *PropertyBag
	assert.Equal(t, 0, bag.Len())
	assert.Nil(t, bag.Properties())
	_, ok := bag.Get("x")
	assert.False(t, ok)
}

func TestCustomPropertiesJSONKeepsOrder(t *testing.T) {
	var c CustomProperties
	c.Set("zeta", "1")
	c.Set("alpha", "<b>ü</b>")
	c.Set("mid", "3")

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	require.NoError(t, enc.Encode(c))
	data := bytes.TrimSpace(buf.Bytes())
	assert.Equal(t, `{"zeta":"1","alpha":"<b>ü</b>","mid":"3"}`, string(data))

	var back CustomProperties
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, back.Keys())
	v, _ := back.Get("alpha")
	assert.Equal(t, "<b>ü</b>", v)
}

func TestEmptyCustomPropertiesIsObject(t *testing.T) {
	data, err := json.Marshal(CustomProperties{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestHeaderNamesUnion(t *testing.T) {
	a := NewPropertyBag()
	a.Set("Subject", "x")
	a.Set("Date", "y")
	b := NewPropertyBag()
	b.Set("subject", "z")
	b.Set("X-Folder", "w")

	batch := SourceBatch{Records: []SourceRecord{{Properties: a}, {Properties: b}}}
	assert.Equal(t, []string{"Subject", "Date", "X-Folder"}, batch.HeaderNames())

	batch.Headers = []string{"Only"}
	assert.Equal(t, []string{"Only"}, batch.HeaderNames())
}
