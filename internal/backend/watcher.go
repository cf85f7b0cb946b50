// Package backend polls slow external sources off the update loop: the host
// terminal's cell metrics and, when attaching, the tmux session list.
package backend

import (
	"context"
	"sync"
	"time"

	"github.com/atomicstack/tabterm/internal/resize"
	"github.com/atomicstack/tabterm/internal/tmux"
)

// Kind represents the type of data emitted by the backend watcher.
type Kind int

const (
	KindMetrics Kind = iota
	KindTmuxSessions
)

func (k Kind) String() string {
	switch k {
	case KindMetrics:
		return "metrics"
	case KindTmuxSessions:
		return "tmux-sessions"
	default:
		return "unknown"
	}
}

// Event conveys updated data or an error from a backend poll. Data is a
// resize.CellMetrics for KindMetrics and a []tmux.Session for
// KindTmuxSessions.
type Event struct {
	Kind Kind
	Data interface{}
	Err  error
}

// Options selects the pollers a Watcher runs. A nil Measurer disables the
// metrics poller; an empty TmuxSocket disables the tmux poller.
type Options struct {
	Measurer   resize.Measurer
	FontSize   float64
	TmuxSocket string
	Interval   time.Duration
}

var listTmuxSessions = tmux.ListSessions

// Watcher polls its sources at a fixed interval and publishes events.
type Watcher struct {
	opts Options

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
}

// NewWatcher starts the configured pollers.
func NewWatcher(opts Options) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event, 16),
	}

	if opts.Measurer != nil {
		w.startMetricsPoller()
	}
	if opts.TmuxSocket != "" {
		w.startTmuxPoller()
	}

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w
}

// Events returns a channel of backend events. It is closed once every poller
// has exited.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher. Pollers exit after their current fetch completes;
// use Wait if a clean drain is required (e.g. in tests).
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until all poller goroutines have exited and the events channel
// is closed. Call after Stop when a clean shutdown is required.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) startMetricsPoller() {
	throttle := newThrottle(250 * time.Millisecond)
	w.wg.Add(1)
	go w.poll(KindMetrics, func(ctx context.Context) (interface{}, error) {
		if !throttle.wait(ctx) {
			return nil, ctx.Err()
		}
		return w.opts.Measurer.Measure(ctx, w.opts.FontSize)
	})
}

func (w *Watcher) startTmuxPoller() {
	throttle := newThrottle(250 * time.Millisecond)
	w.wg.Add(1)
	go w.poll(KindTmuxSessions, func(ctx context.Context) (interface{}, error) {
		if !throttle.wait(ctx) {
			return nil, ctx.Err()
		}
		return listTmuxSessions(w.opts.TmuxSocket)
	})
}

func (w *Watcher) poll(kind Kind, fetch func(context.Context) (interface{}, error)) {
	defer w.wg.Done()

	emit := func() bool {
		data, err := fetch(w.ctx)
		evt := Event{Kind: kind, Data: data, Err: err}
		select {
		case <-w.ctx.Done():
			return false
		case w.events <- evt:
			return true
		}
	}

	if !emit() {
		return
	}

	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if !emit() {
				return
			}
		}
	}
}
