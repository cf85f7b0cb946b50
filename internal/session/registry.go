package session

import (
	"fmt"

	"github.com/google/uuid"
)

// Closed describes the outcome of removing a session.
type Closed struct {
	Session *Session
	Index   int
	// Empty is set when the last session was removed. The caller must shut
	// the window down; the registry does not.
	Empty bool
}

// Registry is the ordered set of tabs and the focus index. It is owned by the
// update loop and is not safe for concurrent use.
type Registry struct {
	sessions  []*Session
	focus     int
	terminals int
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Create appends s and returns its id. A missing id is generated and a
// missing name defaults from the kind. Focus is left alone.
func (r *Registry) Create(s *Session) ID {
	if s.ID == "" {
		s.ID = ID(uuid.NewString())
	}
	if s.Kind == KindTerminal {
		r.terminals++
	}
	if s.Name == "" {
		s.Name = r.defaultName(s.Kind)
	}
	r.sessions = append(r.sessions, s)
	return s.ID
}

func (r *Registry) defaultName(kind Kind) string {
	switch kind {
	case KindSettings:
		return "Settings"
	case KindPlugins:
		return "Plugins"
	default:
		return fmt.Sprintf("terminal %d", r.terminals)
	}
}

// Close removes the session at index. It reports false and changes nothing
// when index is out of range.
func (r *Registry) Close(index int) (Closed, bool) {
	if index < 0 || index >= len(r.sessions) {
		return Closed{}, false
	}
	s := r.sessions[index]
	copy(r.sessions[index:], r.sessions[index+1:])
	r.sessions[len(r.sessions)-1] = nil
	r.sessions = r.sessions[:len(r.sessions)-1]

	if index <= r.focus && r.focus > 0 {
		r.focus--
	}
	if r.focus >= len(r.sessions) {
		r.focus = max(0, len(r.sessions)-1)
	}
	return Closed{Session: s, Index: index, Empty: len(r.sessions) == 0}, true
}

// CloseCurrent removes the focused session.
func (r *Registry) CloseCurrent() (Closed, bool) {
	return r.Close(r.focus)
}

// Remove closes the session with the given id.
func (r *Registry) Remove(id ID) (Closed, error) {
	idx := r.Index(id)
	if idx < 0 {
		return Closed{}, fmt.Errorf("remove %s: %w", id, ErrUnknownSession)
	}
	closed, _ := r.Close(idx)
	return closed, nil
}

// Focus moves focus to index, reporting false when it is out of range.
func (r *Registry) Focus(index int) bool {
	if index < 0 || index >= len(r.sessions) {
		return false
	}
	r.focus = index
	return true
}

// Next advances focus, wrapping to the first tab.
func (r *Registry) Next() {
	if n := len(r.sessions); n > 0 {
		r.focus = (r.focus + 1) % n
	}
}

// Previous retreats focus, wrapping to the last tab.
func (r *Registry) Previous() {
	if n := len(r.sessions); n > 0 {
		r.focus = (r.focus - 1 + n) % n
	}
}

func (r *Registry) Len() int { return len(r.sessions) }

// FocusIndex returns the focused index; it is meaningless when Len is 0.
func (r *Registry) FocusIndex() int { return r.focus }

// Current returns the focused session, or nil when the registry is empty.
func (r *Registry) Current() *Session {
	if len(r.sessions) == 0 {
		return nil
	}
	return r.sessions[r.focus]
}

// Sessions returns the tabs in order. The slice is a copy; the sessions are
// shared and must only be mutated on the update loop.
func (r *Registry) Sessions() []*Session {
	out := make([]*Session, len(r.sessions))
	copy(out, r.sessions)
	return out
}

// Lookup finds a session by id.
func (r *Registry) Lookup(id ID) (*Session, bool) {
	if idx := r.Index(id); idx >= 0 {
		return r.sessions[idx], true
	}
	return nil, false
}

// Index returns the position of id, or -1.
func (r *Registry) Index(id ID) int {
	for i, s := range r.sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Terminals returns the terminal sessions in tab order.
func (r *Registry) Terminals() []*Session {
	var out []*Session
	for _, s := range r.sessions {
		if s.IsTerminal() {
			out = append(out, s)
		}
	}
	return out
}
