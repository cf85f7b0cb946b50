package session

import (
	"context"
	"errors"
	"sync"

	"github.com/atomicstack/tabterm/internal/vt"
)

// ErrOutboxClosed is returned by Next once the outbox is closed and drained.
var ErrOutboxClosed = errors.New("session: outbox closed")

// Output is one batch of events decoded from a single read of a session's
// output source. Closed marks the end of that source and carries no events.
type Output struct {
	Session ID
	Events  []vt.Event
	Closed  bool
}

// Outbox is the unbounded multi-producer, single-consumer queue between
// session readers and the update loop. Push never blocks, so a consumer
// that falls behind a very chatty session grows the queue without limit.
type Outbox struct {
	mu     sync.Mutex
	queue  []Output
	ready  chan struct{}
	closed bool
}

func NewOutbox() *Outbox {
	return &Outbox{ready: make(chan struct{}, 1)}
}

// Push enqueues out. It reports false once the outbox is closed.
func (o *Outbox) Push(out Output) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return false
	}
	o.queue = append(o.queue, out)
	select {
	case o.ready <- struct{}{}:
	default:
	}
	return true
}

// Next blocks until an item is available, the context ends, or the outbox is
// closed and empty. Items come out in push order.
func (o *Outbox) Next(ctx context.Context) (Output, error) {
	for {
		o.mu.Lock()
		if len(o.queue) > 0 {
			out := o.queue[0]
			o.queue[0] = Output{}
			o.queue = o.queue[1:]
			o.mu.Unlock()
			return out, nil
		}
		closed := o.closed
		o.mu.Unlock()
		if closed {
			return Output{}, ErrOutboxClosed
		}

		select {
		case <-ctx.Done():
			return Output{}, ctx.Err()
		case <-o.ready:
		}
	}
}

// Len returns the number of queued items.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

// Close stops accepting items and wakes a blocked Next. Items already queued
// are still delivered.
func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	close(o.ready)
}
