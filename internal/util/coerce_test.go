package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBool(t *testing.T) {
	for _, in := range []string{"TRUE", "true", "True", "tRUE"} {
		assert.True(t, ParseBool(in), in)
	}
	for _, in := range []string{"yes", "1", "", "false", "on", "truth", " true ", "true\n"} {
		assert.False(t, ParseBool(in), in)
	}
}

func TestCoerceBool(t *testing.T) {
	assert.True(t, CoerceBool(true))
	assert.False(t, CoerceBool(false))
	assert.False(t, CoerceBool(nil))
	assert.True(t, CoerceBool("True"))
	assert.False(t, CoerceBool(1))
}

func TestParseNumbers(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "plain", input: "42", want: 42},
		{name: "decimal comma", input: "1,5", want: 1.5},
		{name: "decimal dot", input: "1.5", want: 1.5},
		{name: "thousand comma", input: "1,000", want: 1000},
		{name: "percent", input: "50%", want: 50},
		{name: "garbage", input: "lots", want: -1},
		{name: "empty", input: "", want: -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseFloat(tc.input, -1))
		})
	}

	assert.Equal(t, 7, ParseInt("7", 0))
	assert.Equal(t, 3, ParseInt("3.0", 0))
	assert.Equal(t, 0, ParseInt("3.5", 0))
	assert.Equal(t, 0, ParseInt("abc", 0))
	assert.Equal(t, 9, ParseInt("", 9))
}

func TestCoerceNumbers(t *testing.T) {
	assert.Equal(t, 5, CoerceInt(int32(5), 0))
	assert.Equal(t, 2, CoerceInt(2.9, 0))
	assert.Equal(t, 0, CoerceInt(nil, 0))
	assert.Equal(t, 12, CoerceInt("12", 0))
	assert.Equal(t, 0.25, CoerceFloat(0.25, 0))
	assert.Equal(t, 100.0, CoerceFloat(int32(100), 0))
	assert.Equal(t, 0.0, CoerceFloat("n/a", 0))
}

func TestParsePriorityAndStatus(t *testing.T) {
	assert.Equal(t, 0, ParsePriority("Low", 1))
	assert.Equal(t, 1, ParsePriority("normal", 0))
	assert.Equal(t, 2, ParsePriority("HIGH", 0))
	assert.Equal(t, 2, ParsePriority("2", 0))
	assert.Equal(t, 0, ParsePriority("urgent", 0))

	assert.Equal(t, 0, ParseTaskStatus("Not Started", -1))
	assert.Equal(t, 1, ParseTaskStatus("In Progress", -1))
	assert.Equal(t, 2, ParseTaskStatus("Completed", -1))
	assert.Equal(t, 3, ParseTaskStatus("Waiting on someone else", -1))
	assert.Equal(t, 4, ParseTaskStatus("Deferred", -1))
	assert.Equal(t, 0, ParseTaskStatus("", 0))
}

func TestDateParser(t *testing.T) {
	us := DateParser{Location: time.UTC}
	eu := DateParser{Location: time.UTC, DayFirst: true}

	cases := []struct {
		name   string
		parser DateParser
		input  string
		want   time.Time
	}{
		{name: "rfc3339", parser: us, input: "2024-12-01T10:30:00Z", want: time.Date(2024, 12, 1, 10, 30, 0, 0, time.UTC)},
		{name: "iso date", parser: us, input: "2024-12-31", want: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
		{name: "iso datetime", parser: us, input: "2024-12-31 08:15:00", want: time.Date(2024, 12, 31, 8, 15, 0, 0, time.UTC)},
		{name: "month first", parser: us, input: "12/31/2024", want: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
		{name: "month first clock", parser: us, input: "3/4/2024 9:05 pm", want: time.Date(2024, 3, 4, 21, 5, 0, 0, time.UTC)},
		{name: "day first", parser: eu, input: "3/4/2024", want: time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC)},
		{name: "dotted", parser: us, input: "24.12.2024 18:00", want: time.Date(2024, 12, 24, 18, 0, 0, 0, time.UTC)},
		{name: "mail date", parser: us, input: "Mon, 2 Dec 2024 09:00:00 +0000", want: time.Date(2024, 12, 2, 9, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.parser.Parse(tc.input)
			require.True(t, ok)
			assert.True(t, tc.want.Equal(got), "got %s want %s", got, tc.want)
		})
	}
}

func TestDateParserRejects(t *testing.T) {
	p := DateParser{Location: time.UTC}
	for _, in := range []string{"", "None", "tomorrow", "31/12/2024"} {
		_, ok := p.Parse(in)
		assert.False(t, ok, in)
	}
}

func TestDateParserCoerce(t *testing.T) {
	p := DateParser{Location: time.UTC}
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	got, ok := p.Coerce(ts)
	require.True(t, ok)
	assert.Equal(t, ts, got)

	_, ok = p.Coerce(time.Time{})
	assert.False(t, ok)
	_, ok = p.Coerce(nil)
	assert.False(t, ok)
}
