// Package session owns the live tabs and moves decoded output from the
// per-session reader goroutines onto the single update loop.
package session

import (
	"errors"
	"io"

	"github.com/atomicstack/tabterm/internal/vt"
)

// ErrUnknownSession reports an id that is not in the registry.
var ErrUnknownSession = errors.New("session: unknown session")

// ID is the opaque handle the terminal engine assigns to a session.
type ID string

// Kind distinguishes terminal tabs from the built-in panes.
type Kind int

const (
	KindTerminal Kind = iota
	KindSettings
	KindPlugins
)

func (k Kind) String() string {
	switch k {
	case KindTerminal:
		return "terminal"
	case KindSettings:
		return "settings"
	case KindPlugins:
		return "plugins"
	default:
		return "unknown"
	}
}

// Terminal is the screen state a terminal session renders from.
type Terminal interface {
	Apply(events []vt.Event)
	CursorPosition() (row, col int)
	Title() string
	IsAltScreen() bool
	Resize(rows, cols int)
	ScrollbackLen() int
	// ScrolledOff counts lines pushed into the scrollback over the
	// terminal's lifetime, including lines later trimmed away.
	ScrolledOff() int
	View(offset int) []string
	Text() string
	Clear()
}

// Engine spawns and drives the processes behind terminal sessions.
type Engine interface {
	Spawn(command string) (ID, error)
	Write(id ID, p []byte) error
	Resize(id ID, rows, cols int) error
	Stream(id ID) (io.Reader, error)
	Close(id ID) error
}

// Decoder turns raw output into events. A reader owns its decoder.
type Decoder interface {
	Decode(p []byte) []vt.Event
}

// Session is one tab. Terminal is nil for non-terminal kinds.
type Session struct {
	ID       ID
	Name     string
	Kind     Kind
	Terminal Terminal
	// Scroll is how many lines the viewport sits above the live bottom.
	Scroll int
}

// IsTerminal reports whether the session is backed by a process.
func (s *Session) IsTerminal() bool {
	return s != nil && s.Kind == KindTerminal && s.Terminal != nil
}

// ScrollBy moves the viewport delta lines towards older output.
func (s *Session) ScrollBy(delta int) {
	s.setScroll(s.Scroll + delta)
}

// ScrollToTop anchors the viewport at the oldest scrollback line.
func (s *Session) ScrollToTop() {
	s.setScroll(s.maxScroll())
}

// ScrollToBottom resumes following live output.
func (s *Session) ScrollToBottom() {
	s.Scroll = 0
}

// View renders the session's visible lines at its scroll offset.
func (s *Session) View() []string {
	if !s.IsTerminal() {
		return nil
	}
	return s.Terminal.View(s.Scroll)
}

func (s *Session) maxScroll() int {
	if !s.IsTerminal() {
		return 0
	}
	return s.Terminal.ScrollbackLen()
}

func (s *Session) setScroll(v int) {
	s.Scroll = max(0, min(v, s.maxScroll()))
}
