package vt

import (
	"strings"
	"testing"
)

func feed(s *Screen, raw string) {
	s.Apply(NewDecoder().Decode([]byte(raw)))
}

func TestScreenPrintsAndMovesCursor(t *testing.T) {
	s := NewScreen(3, 10)
	feed(s, "hello\r\nworld")

	if got := s.Text(); got != "hello\nworld" {
		t.Fatalf("unexpected text %q", got)
	}
	row, col := s.CursorPosition()
	if row != 1 || col != 5 {
		t.Fatalf("expected cursor at 1,5 got %d,%d", row, col)
	}
}

func TestScreenWrapsAndScrollsIntoScrollback(t *testing.T) {
	s := NewScreen(2, 4)
	feed(s, "abcdefgh\r\nij")

	if s.ScrollbackLen() != 1 {
		t.Fatalf("expected one scrollback line, got %d", s.ScrollbackLen())
	}
	lines := s.Lines()
	if lines[0] != "efgh" || strings.TrimRight(lines[1], " ") != "ij" {
		t.Fatalf("unexpected grid %q", lines)
	}
	view := s.View(1)
	if view[0] != "abcd" || view[1] != "efgh" {
		t.Fatalf("unexpected scrolled view %q", view)
	}
	if got := s.View(99); got[0] != "abcd" {
		t.Fatalf("expected offset clamped to scrollback, got %q", got)
	}
}

func TestScreenEraseSequences(t *testing.T) {
	s := NewScreen(2, 6)
	feed(s, "abcdef\r\nghijkl")
	feed(s, "\x1b[1;3H\x1b[K")
	if got := s.Lines()[0]; got != "ab    " {
		t.Fatalf("expected erase to end of line, got %q", got)
	}
	feed(s, "\x1b[2J")
	if got := s.Text(); got != "" {
		t.Fatalf("expected cleared screen, got %q", got)
	}
}

func TestScreenAlternateScreenRestoresPrimary(t *testing.T) {
	s := NewScreen(2, 5)
	feed(s, "shell")
	feed(s, "\x1b[?1049h")
	if !s.IsAltScreen() {
		t.Fatal("expected alternate screen")
	}
	feed(s, "\x1b[Hvim")
	if got := s.Text(); got != "vim" {
		t.Fatalf("unexpected alt text %q", got)
	}
	feed(s, "\x1b[?1049l")
	if s.IsAltScreen() {
		t.Fatal("expected primary screen")
	}
	if got := s.Text(); got != "shell" {
		t.Fatalf("expected primary content restored, got %q", got)
	}
}

func TestScreenTitleBellAndCursorVisibility(t *testing.T) {
	s := NewScreen(2, 5)
	feed(s, "\x1b]2;make\x07\x07\x1b[?25l")
	if s.Title() != "make" {
		t.Fatalf("expected title, got %q", s.Title())
	}
	if !s.Bell() {
		t.Fatal("expected bell")
	}
	if s.Bell() {
		t.Fatal("expected bell to reset after read")
	}
	if s.CursorVisible() {
		t.Fatal("expected hidden cursor")
	}
}

func TestScreenWideRunes(t *testing.T) {
	s := NewScreen(2, 3)
	feed(s, "a日b")
	lines := s.Lines()
	if lines[0] != "a日" {
		t.Fatalf("unexpected first row %q", lines[0])
	}
	if strings.TrimRight(lines[1], " ") != "b" {
		t.Fatalf("expected wrap after wide rune, got %q", lines[1])
	}
}

func TestScreenScrollRegionKeepsOutsideRows(t *testing.T) {
	s := NewScreen(4, 3)
	feed(s, "top\r\naaa\r\nbbb\r\nbot")
	feed(s, "\x1b[2;3r\x1b[3;1H\n")
	lines := s.Lines()
	if lines[0] != "top" || lines[1] != "bbb" || lines[2] != "   " || lines[3] != "bot" {
		t.Fatalf("unexpected region scroll %q", lines)
	}
	if s.ScrollbackLen() != 0 {
		t.Fatalf("expected no scrollback from partial region, got %d", s.ScrollbackLen())
	}
}

func TestScreenResizeKeepsCursorRow(t *testing.T) {
	s := NewScreen(4, 4)
	feed(s, "1\r\n2\r\n3\r\n4")
	s.Resize(2, 6)
	rows, cols := s.Size()
	if rows != 2 || cols != 6 {
		t.Fatalf("unexpected size %dx%d", rows, cols)
	}
	if got := s.Text(); got != "3\n4" {
		t.Fatalf("expected bottom rows kept, got %q", got)
	}
	if s.ScrollbackLen() != 2 {
		t.Fatalf("expected rows pushed to scrollback, got %d", s.ScrollbackLen())
	}
	row, _ := s.CursorPosition()
	if row != 1 {
		t.Fatalf("expected cursor on last row, got %d", row)
	}
}

func TestScreenClearDropsScrollback(t *testing.T) {
	s := NewScreen(1, 2)
	feed(s, "ab\r\ncd")
	s.Clear()
	if s.ScrollbackLen() != 0 || s.Text() != "" {
		t.Fatalf("expected empty screen, got %q with %d scrollback", s.Text(), s.ScrollbackLen())
	}
}

func TestScreenScrollbackLimit(t *testing.T) {
	s := NewScreen(1, 1)
	s.SetScrollbackLimit(2)
	feed(s, "a\r\nb\r\nc\r\nd")
	if s.ScrollbackLen() != 2 {
		t.Fatalf("expected scrollback capped at 2, got %d", s.ScrollbackLen())
	}
	if got := s.View(2)[0]; got != "b" {
		t.Fatalf("expected oldest kept line b, got %q", got)
	}
}

func TestScreenWideRuneOnSingleColumn(t *testing.T) {
	s := NewScreen(2, 1)
	feed(s, "漢x")
	lines := s.Lines()
	if lines[0] != " " || lines[1] != "x" {
		t.Fatalf("expected wide rune blanked in one column, got %q", lines)
	}
	row, col := s.CursorPosition()
	if row != 1 || col != 0 {
		t.Fatalf("expected cursor at 1,0 got %d,%d", row, col)
	}
}

func TestScreenScrolledOffKeepsCountingPastLimit(t *testing.T) {
	s := NewScreen(1, 1)
	s.SetScrollbackLimit(2)
	feed(s, "a\r\nb\r\nc\r\nd")
	if s.ScrollbackLen() != 2 {
		t.Fatalf("expected scrollback capped at 2, got %d", s.ScrollbackLen())
	}
	if s.ScrolledOff() != 3 {
		t.Fatalf("expected 3 lines scrolled off, got %d", s.ScrolledOff())
	}
}
