package session

type scrollSnapshot struct {
	following   bool
	scrolledOff int
}

// Autoscroll keeps a session pinned to live output while it is scrolled to
// the bottom, and keeps the same lines in view while the user is scrolled
// back through history.
type Autoscroll struct {
	snapshots map[ID]scrollSnapshot
}

func NewAutoscroll() *Autoscroll {
	return &Autoscroll{snapshots: make(map[ID]scrollSnapshot)}
}

func (a *Autoscroll) BeforeUpdate(s *Session) {
	if !s.IsTerminal() {
		return
	}
	a.snapshots[s.ID] = scrollSnapshot{
		following:   s.Scroll == 0,
		scrolledOff: s.Terminal.ScrolledOff(),
	}
}

// AfterUpdate moves a scrolled-back view up by the lines that entered the
// scrollback, so the same lines stay on screen even once the scrollback is
// full and its length no longer grows.
func (a *Autoscroll) AfterUpdate(s *Session) {
	snap, ok := a.snapshots[s.ID]
	if !ok {
		return
	}
	delete(a.snapshots, s.ID)
	if snap.following {
		s.ScrollToBottom()
		return
	}
	s.ScrollBy(s.Terminal.ScrolledOff() - snap.scrolledOff)
}

func (a *Autoscroll) Forget(id ID) {
	delete(a.snapshots, id)
}
