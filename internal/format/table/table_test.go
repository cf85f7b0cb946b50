package table

import "testing"

func TestFormatAlignsColumns(t *testing.T) {
	rows := [][]string{
		{"font-size", "14"},
		{"palette-mode", "prefix"},
		{"tabs", "true"},
	}
	got := Format(rows, []Alignment{AlignLeft, AlignLeft})
	want := []string{
		"font-size     14",
		"palette-mode  prefix",
		"tabs          true",
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestFormatRightAlignment(t *testing.T) {
	got := Format([][]string{{"a", "1"}, {"b", "100"}}, []Alignment{AlignLeft, AlignRight})
	if got[0] != "a    1" || got[1] != "b  100" {
		t.Fatalf("unexpected right alignment %q", got)
	}
}

func TestFormatWideRunesAndShortRows(t *testing.T) {
	got := Format([][]string{{"日本", "x"}, {"ab"}, {"abcd", "y"}}, nil)
	want := []string{"日本  x", "ab", "abcd  y"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestFormatEmpty(t *testing.T) {
	if got := Format(nil, nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
