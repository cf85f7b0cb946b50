package keymap

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/tabterm/internal/action"
)

func runes(s string, alt bool) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s), Alt: alt}
}

func TestTranslateBoundKeys(t *testing.T) {
	km := Default()
	cases := []struct {
		msg  tea.KeyMsg
		want action.Kind
	}{
		{runes("t", true), action.NewTab},
		{runes("w", true), action.CloseTab},
		{runes("p", true), action.ToggleCommandPalette},
		{runes(",", true), action.OpenSettings},
		{tea.KeyMsg{Type: tea.KeyRight, Alt: true}, action.NextTab},
		{tea.KeyMsg{Type: tea.KeyCtrlPgUp}, action.PreviousTab},
		{tea.KeyMsg{Type: tea.KeyShiftUp}, action.ScrollUp},
		{tea.KeyMsg{Type: tea.KeyCtrlShiftDown}, action.ScrollDownPage},
		{tea.KeyMsg{Type: tea.KeyShiftHome}, action.ScrollToTop},
	}
	for _, tc := range cases {
		if got := km.Translate(tc.msg); got.Kind != tc.want {
			t.Fatalf("%q: expected %s, got %s", tc.msg.String(), tc.want, got)
		}
	}
}

func TestTranslateUnboundKeysWriteInput(t *testing.T) {
	km := Default()
	cases := []struct {
		msg  tea.KeyMsg
		want string
	}{
		{runes("l", false), "l"},
		{runes("x", true), "\x1bx"},
		{tea.KeyMsg{Type: tea.KeyEnter}, "\r"},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, "\x03"},
		{tea.KeyMsg{Type: tea.KeyCtrlW}, "\x17"},
		{tea.KeyMsg{Type: tea.KeyBackspace}, "\x7f"},
		{tea.KeyMsg{Type: tea.KeyTab}, "\t"},
		{tea.KeyMsg{Type: tea.KeySpace}, " "},
		{tea.KeyMsg{Type: tea.KeyUp}, "\x1b[A"},
		{tea.KeyMsg{Type: tea.KeyLeft}, "\x1b[D"},
		{tea.KeyMsg{Type: tea.KeyDelete}, "\x1b[3~"},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, "\x1b[Z"},
		{tea.KeyMsg{Type: tea.KeyEscape}, "\x1b"},
		{tea.KeyMsg{Type: tea.KeyF5}, "\x1b[15~"},
	}
	for _, tc := range cases {
		got := km.Translate(tc.msg)
		if got.Kind != action.Write || got.Text != tc.want {
			t.Fatalf("%q: expected write %q, got %s", tc.msg.String(), tc.want, got)
		}
	}
}

func TestPastedRunesAreNotAltPrefixed(t *testing.T) {
	got := Encode(tea.Key{Type: tea.KeyRunes, Runes: []rune("echo hi"), Paste: true, Alt: true})
	if string(got) != "echo hi" {
		t.Fatalf("unexpected paste encoding %q", got)
	}
}

func TestUnencodableKeyIsNoAction(t *testing.T) {
	if got := Default().Translate(tea.KeyMsg{Type: tea.KeyF20}); got.Kind != action.NoAction {
		t.Fatalf("expected no action, got %s", got)
	}
}

func TestLaterBindingWinsAndKeyFor(t *testing.T) {
	km := New([]Binding{
		{Key: "alt+x", Action: action.NewTab},
		{Key: "alt+x", Action: action.Quit},
		{Key: "alt+n", Action: action.NewTab},
	})
	if a, ok := km.Resolve(runes("x", true)); !ok || a.Kind != action.Quit {
		t.Fatalf("expected later binding to win, got %v", a)
	}
	if got := km.KeyFor(action.NewTab); got != "alt+n" {
		t.Fatalf("expected alt+n for new tab, got %q", got)
	}
	if got := Default().KeyFor(action.ToggleCommandPalette); got != "alt+p" {
		t.Fatalf("unexpected palette key %q", got)
	}
}
