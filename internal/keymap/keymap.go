// Package keymap resolves key presses to actions and encodes unbound keys as
// terminal input.
package keymap

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/tabterm/internal/action"
)

// Binding maps a key string, as produced by tea.KeyMsg.String, to an action.
type Binding struct {
	Key    string
	Action action.Kind
}

// DefaultBindings returns the built-in bindings. Application shortcuts live
// on alt and shifted navigation keys so plain ctrl chords reach the shell.
func DefaultBindings() []Binding {
	return []Binding{
		{Key: "alt+t", Action: action.NewTab},
		{Key: "alt+w", Action: action.CloseTab},
		{Key: "alt+W", Action: action.CloseOtherTabs},
		{Key: "alt+q", Action: action.Quit},
		{Key: "alt+p", Action: action.ToggleCommandPalette},
		{Key: "alt+,", Action: action.OpenSettings},
		{Key: "alt+P", Action: action.OpenPluginMenu},
		{Key: "alt+right", Action: action.NextTab},
		{Key: "ctrl+pgdown", Action: action.NextTab},
		{Key: "alt+left", Action: action.PreviousTab},
		{Key: "ctrl+pgup", Action: action.PreviousTab},
		{Key: "alt+c", Action: action.CopyText},
		{Key: "alt+v", Action: action.PasteText},
		{Key: "alt+k", Action: action.ClearBuffer},
		{Key: "shift+up", Action: action.ScrollUp},
		{Key: "shift+down", Action: action.ScrollDown},
		{Key: "ctrl+shift+up", Action: action.ScrollUpPage},
		{Key: "ctrl+shift+down", Action: action.ScrollDownPage},
		{Key: "shift+home", Action: action.ScrollToTop},
		{Key: "shift+end", Action: action.ScrollToBottom},
	}
}

// Keymap is an immutable lookup table built from bindings. Later bindings for
// the same key win.
type Keymap struct {
	bindings []Binding
	byKey    map[string]action.Kind
}

func New(bindings []Binding) *Keymap {
	km := &Keymap{
		bindings: append([]Binding(nil), bindings...),
		byKey:    make(map[string]action.Kind, len(bindings)),
	}
	for _, b := range bindings {
		km.byKey[b.Key] = b.Action
	}
	return km
}

func Default() *Keymap {
	return New(DefaultBindings())
}

// Resolve returns the action bound to msg.
func (k *Keymap) Resolve(msg tea.KeyMsg) (action.Action, bool) {
	kind, ok := k.byKey[msg.String()]
	if !ok {
		return action.Action{}, false
	}
	return action.Of(kind), true
}

// KeyFor returns the first key bound to kind, or "".
func (k *Keymap) KeyFor(kind action.Kind) string {
	for _, b := range k.bindings {
		if b.Action == kind && k.byKey[b.Key] == kind {
			return b.Key
		}
	}
	return ""
}

// Bindings returns the bindings in declaration order.
func (k *Keymap) Bindings() []Binding {
	return append([]Binding(nil), k.bindings...)
}

// Translate turns a key press into an action: a bound action, a Write of the
// encoded key, or NoAction for keys that produce no input.
func (k *Keymap) Translate(msg tea.KeyMsg) action.Action {
	if a, ok := k.Resolve(msg); ok {
		return a
	}
	if b := Encode(tea.Key(msg)); len(b) > 0 {
		return action.WriteText(string(b))
	}
	return action.Of(action.NoAction)
}
