package session

import (
	"context"

	"github.com/atomicstack/tabterm/internal/logging/events"
)

// Observer is notified around each applied batch. BeforeUpdate runs before
// the terminal state changes; AfterUpdate runs once the change has been
// rendered. Forget replaces AfterUpdate when the session was closed in
// between.
type Observer interface {
	BeforeUpdate(s *Session)
	AfterUpdate(s *Session)
	Forget(id ID)
}

// Synchronizer drains the outbox on the update loop and applies each batch to
// the owning session's terminal.
type Synchronizer struct {
	registry  *Registry
	outbox    *Outbox
	observers []Observer
}

func NewSynchronizer(registry *Registry, outbox *Outbox, observers ...Observer) *Synchronizer {
	return &Synchronizer{registry: registry, outbox: outbox, observers: observers}
}

// Next waits for the next batch.
func (s *Synchronizer) Next(ctx context.Context) (Output, error) {
	return s.outbox.Next(ctx)
}

// Begin runs the pre-update notifications and applies out. It reports false
// when out was not applied: end-of-stream markers, empty batches, and output
// for sessions that are no longer registered.
func (s *Synchronizer) Begin(out Output) bool {
	if out.Closed || len(out.Events) == 0 {
		return false
	}
	sess, ok := s.registry.Lookup(out.Session)
	if !ok || !sess.IsTerminal() {
		events.Session.Discard(string(out.Session), len(out.Events))
		return false
	}
	for _, o := range s.observers {
		o.BeforeUpdate(sess)
	}
	sess.Terminal.Apply(out.Events)
	if title := sess.Terminal.Title(); title != "" {
		sess.Name = title
	}
	return true
}

// Finish runs the post-update notifications for a batch Begin applied. If
// the session was closed while the render was pending, observers only drop
// what they held for it.
func (s *Synchronizer) Finish(out Output) {
	sess, ok := s.registry.Lookup(out.Session)
	if !ok {
		for _, o := range s.observers {
			o.Forget(out.Session)
		}
		return
	}
	for _, o := range s.observers {
		o.AfterUpdate(sess)
	}
}

// Step processes one batch end to end. rendered is called between the two
// phases and should return once the update is visible.
func (s *Synchronizer) Step(ctx context.Context, rendered func(context.Context) error) (Output, error) {
	out, err := s.Next(ctx)
	if err != nil {
		return out, err
	}
	if !s.Begin(out) {
		return out, nil
	}
	if rendered != nil {
		if err := rendered(ctx); err != nil {
			return out, err
		}
	}
	s.Finish(out)
	return out, nil
}
