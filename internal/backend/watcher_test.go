package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atomicstack/tabterm/internal/resize"
	"github.com/atomicstack/tabterm/internal/tmux"
)

func nextEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case evt, ok := <-w.Events():
		if !ok {
			t.Fatalf("events channel closed early")
		}
		return evt
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for backend event")
	}
	return Event{}
}

func TestWatcherEmitsMetrics(t *testing.T) {
	want := resize.CellMetrics{Width: 9, Height: 18}
	w := NewWatcher(Options{Measurer: resize.Static{Metrics: want}, Interval: time.Hour})
	defer func() {
		w.Stop()
		w.Wait()
	}()
	evt := nextEvent(t, w)
	if evt.Kind != KindMetrics {
		t.Fatalf("expected metrics event, got %v", evt.Kind)
	}
	if evt.Err != nil {
		t.Fatalf("unexpected error: %v", evt.Err)
	}
	if got, ok := evt.Data.(resize.CellMetrics); !ok || got != want {
		t.Fatalf("expected %v, got %#v", want, evt.Data)
	}
}

func TestWatcherPollsTmuxSessions(t *testing.T) {
	prev := listTmuxSessions
	t.Cleanup(func() { listTmuxSessions = prev })
	var gotSocket string
	listTmuxSessions = func(socket string) ([]tmux.Session, error) {
		gotSocket = socket
		return []tmux.Session{{Name: "dev", Windows: 2}}, nil
	}
	w := NewWatcher(Options{TmuxSocket: "/tmp/sock", Interval: time.Hour})
	evt := nextEvent(t, w)
	w.Stop()
	w.Wait()
	if evt.Kind != KindTmuxSessions {
		t.Fatalf("expected tmux event, got %v", evt.Kind)
	}
	sessions, ok := evt.Data.([]tmux.Session)
	if !ok || len(sessions) != 1 || sessions[0].Name != "dev" {
		t.Fatalf("unexpected sessions %#v", evt.Data)
	}
	if gotSocket != "/tmp/sock" {
		t.Fatalf("expected socket /tmp/sock, got %q", gotSocket)
	}
}

func TestWatcherReportsErrors(t *testing.T) {
	prev := listTmuxSessions
	t.Cleanup(func() { listTmuxSessions = prev })
	boom := errors.New("no server")
	listTmuxSessions = func(string) ([]tmux.Session, error) { return nil, boom }
	w := NewWatcher(Options{TmuxSocket: "/tmp/sock", Interval: time.Hour})
	defer w.Stop()
	if evt := nextEvent(t, w); !errors.Is(evt.Err, boom) {
		t.Fatalf("expected %v, got %v", boom, evt.Err)
	}
}

func TestWatcherWithoutPollersClosesEvents(t *testing.T) {
	w := NewWatcher(Options{})
	select {
	case _, ok := <-w.Events():
		if ok {
			t.Fatalf("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatalf("events channel not closed")
	}
}

func TestThrottleHonoursContext(t *testing.T) {
	th := newThrottle(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	if !th.wait(ctx) {
		t.Fatalf("first wait should pass immediately")
	}
	cancel()
	if th.wait(ctx) {
		t.Fatalf("wait should stop once the context ends")
	}
}
