package util

import (
	"testing"
	"time"
)

func TestContainsFold(t *testing.T) {
	if !ContainsFold("Parent FOLDER name", "folder") {
		t.Fatal("expected case-insensitive match")
	}
	if ContainsFold("Subject", "folder", "owner") {
		t.Fatal("unexpected match")
	}
}

func TestFormatValue(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "string", in: "x", want: "x"},
		{name: "bool", in: true, want: "true"},
		{name: "int", in: int32(3), want: "3"},
		{name: "float", in: 0.5, want: "0.5"},
		{name: "bytes", in: []byte{0xab, 0x01}, want: "AB01"},
		{name: "time", in: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), want: "2024-12-01T00:00:00Z"},
		{name: "list", in: []string{"Work", "Home"}, want: "Work; Home"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatValue(tc.in); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestHTMLToText(t *testing.T) {
	got := HTMLToText(`<html><head><style>p{}</style></head><body><p>Buy <b>milk</b></p><p>and bread</p></body></html>`)
	want := "Buy milk\nand bread"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
