package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/atomicstack/tabterm/internal/vt"
)

type recordingTerminal struct {
	applied     []vt.Event
	title       string
	scrollback  int
	scrolledOff int
}

func (r *recordingTerminal) Apply(evs []vt.Event) {
	r.applied = append(r.applied, evs...)
	for _, ev := range evs {
		if ev.Kind == vt.EventOSC {
			r.title = ev.Text
		}
		if ev.Kind == vt.EventControl && ev.Final == '\n' {
			r.scrollback++
			r.scrolledOff++
		}
	}
}
func (r *recordingTerminal) CursorPosition() (int, int) { return 0, 0 }
func (r *recordingTerminal) Title() string              { return r.title }
func (r *recordingTerminal) IsAltScreen() bool          { return false }
func (r *recordingTerminal) Resize(int, int)            {}
func (r *recordingTerminal) ScrollbackLen() int         { return r.scrollback }
func (r *recordingTerminal) ScrolledOff() int           { return r.scrolledOff }
func (r *recordingTerminal) View(int) []string          { return nil }
func (r *recordingTerminal) Text() string               { return "" }
func (r *recordingTerminal) Clear()                     { r.applied = nil }

type recordingObserver struct {
	calls []string
}

func (o *recordingObserver) BeforeUpdate(s *Session) { o.calls = append(o.calls, "before:"+s.Name) }
func (o *recordingObserver) AfterUpdate(s *Session)  { o.calls = append(o.calls, "after:"+s.Name) }
func (o *recordingObserver) Forget(id ID)            { o.calls = append(o.calls, "forget:"+string(id)) }

func TestOutboxPreservesOrderAcrossProducers(t *testing.T) {
	outbox := NewOutbox()
	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				outbox.Push(Output{Session: ID(rune('a' + p)), Events: []vt.Event{vt.Control(byte(i))}})
			}
		}(p)
	}
	wg.Wait()
	outbox.Close()

	next := map[ID]int{}
	ctx := context.Background()
	for {
		out, err := outbox.Next(ctx)
		if errors.Is(err, ErrOutboxClosed) {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		if got := int(out.Events[0].Final); got != next[out.Session] {
			t.Fatalf("session %s: expected %d, got %d", out.Session, next[out.Session], got)
		}
		next[out.Session]++
	}
	for id, n := range next {
		if n != 100 {
			t.Fatalf("session %s: expected 100 items, got %d", id, n)
		}
	}
}

func TestOutboxNextHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := NewOutbox().Next(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
}

func TestOutboxRejectsPushAfterClose(t *testing.T) {
	outbox := NewOutbox()
	outbox.Close()
	outbox.Close()
	if outbox.Push(Output{Session: "a"}) {
		t.Fatal("expected push to be rejected")
	}
}

func TestSynchronizerDiscardsOutputForClosedSession(t *testing.T) {
	registry := NewRegistry()
	termA := &recordingTerminal{}
	termB := &recordingTerminal{}
	a := registry.Create(&Session{ID: "a", Kind: KindTerminal, Terminal: termA})
	registry.Create(&Session{ID: "b", Kind: KindTerminal, Terminal: termB})
	outbox := NewOutbox()
	syncer := NewSynchronizer(registry, outbox)

	if _, err := registry.Remove(a); err != nil {
		t.Fatalf("remove: %v", err)
	}
	outbox.Push(Output{Session: a, Events: []vt.Event{vt.Print("late")}})

	out, err := syncer.Step(context.Background(), nil)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if out.Session != a {
		t.Fatalf("unexpected output %+v", out)
	}
	if len(termA.applied) != 0 || len(termB.applied) != 0 {
		t.Fatalf("expected late output discarded, got a=%v b=%v", termA.applied, termB.applied)
	}
}

func TestSynchronizerRunsObserversAroundRender(t *testing.T) {
	registry := NewRegistry()
	term := &recordingTerminal{}
	registry.Create(&Session{ID: "a", Name: "shell", Kind: KindTerminal, Terminal: term})
	obs := &recordingObserver{}
	outbox := NewOutbox()
	syncer := NewSynchronizer(registry, outbox, obs)

	outbox.Push(Output{Session: "a", Events: []vt.Event{vt.Print("x")}})
	_, err := syncer.Step(context.Background(), func(context.Context) error {
		obs.calls = append(obs.calls, "render")
		return nil
	})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	want := []string{"before:shell", "render", "after:shell"}
	if strings.Join(obs.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, obs.calls)
	}
}

func TestSynchronizerForgetsSessionClosedDuringRender(t *testing.T) {
	registry := NewRegistry()
	registry.Create(&Session{ID: "a", Name: "shell", Kind: KindTerminal, Terminal: &recordingTerminal{}})
	obs := &recordingObserver{}
	outbox := NewOutbox()
	syncer := NewSynchronizer(registry, outbox, obs)

	outbox.Push(Output{Session: "a", Events: []vt.Event{vt.Print("x")}})
	_, err := syncer.Step(context.Background(), func(context.Context) error {
		registry.CloseCurrent()
		return nil
	})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	want := []string{"before:shell", "forget:a"}
	if strings.Join(obs.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, obs.calls)
	}
}

func TestSynchronizerFollowsTitle(t *testing.T) {
	registry := NewRegistry()
	registry.Create(&Session{ID: "a", Kind: KindTerminal, Terminal: &recordingTerminal{}})
	outbox := NewOutbox()
	syncer := NewSynchronizer(registry, outbox)

	outbox.Push(Output{Session: "a", Events: []vt.Event{vt.Title("vim main.go")}})
	if _, err := syncer.Step(context.Background(), nil); err != nil {
		t.Fatalf("step: %v", err)
	}
	if got := registry.Current().Name; got != "vim main.go" {
		t.Fatalf("expected name to follow title, got %q", got)
	}
}

// pipeSource feeds scripted chunks to a reader and then reports EOF.
type pipeSource struct {
	chunks []string
}

func (p *pipeSource) Read(b []byte) (int, error) {
	if len(p.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(b, p.chunks[0])
	p.chunks = p.chunks[1:]
	return n, nil
}

func TestWriteThenOutputAppliedInOrderAlongsideOtherSessions(t *testing.T) {
	registry := NewRegistry()
	termA := &recordingTerminal{}
	termB := &recordingTerminal{}
	registry.Create(&Session{ID: "a", Kind: KindTerminal, Terminal: termA})
	registry.Create(&Session{ID: "b", Kind: KindTerminal, Terminal: termB})

	outbox := NewOutbox()
	readers := NewReaders(outbox)
	readers.Start("a", &pipeSource{chunks: []string{"ls\r\n", "file.txt"}}, vt.NewDecoder())
	noisy := make([]string, 50)
	for i := range noisy {
		noisy[i] = "noise\n"
	}
	readers.Start("b", &pipeSource{chunks: noisy}, vt.NewDecoder())
	readers.Wait()
	outbox.Close()

	syncer := NewSynchronizer(registry, outbox)
	closed := 0
	for {
		out, err := syncer.Step(context.Background(), nil)
		if errors.Is(err, ErrOutboxClosed) {
			break
		}
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if out.Closed {
			closed++
		}
	}
	if closed != 2 {
		t.Fatalf("expected an end-of-stream marker per reader, got %d", closed)
	}

	var texts []string
	for _, ev := range termA.applied {
		if ev.Kind == vt.EventPrint {
			texts = append(texts, ev.Text)
		}
	}
	if strings.Join(texts, "|") != "ls|file.txt" {
		t.Fatalf("expected session a output in order, got %v", texts)
	}
	for _, ev := range termB.applied {
		if ev.Kind == vt.EventPrint && ev.Text != "noise" {
			t.Fatalf("session b received foreign output %q", ev.Text)
		}
	}
}

func TestAutoscrollFollowsOrHoldsPosition(t *testing.T) {
	term := &recordingTerminal{scrollback: 10}
	s := &Session{ID: "a", Kind: KindTerminal, Terminal: term}
	auto := NewAutoscroll()

	auto.BeforeUpdate(s)
	term.scrollback, term.scrolledOff = 12, 2
	auto.AfterUpdate(s)
	if s.Scroll != 0 {
		t.Fatalf("expected following session to stay at bottom, got %d", s.Scroll)
	}

	s.ScrollBy(3)
	auto.BeforeUpdate(s)
	term.scrollback, term.scrolledOff = 15, 5
	auto.AfterUpdate(s)
	if s.Scroll != 6 {
		t.Fatalf("expected offset to grow with scrollback, got %d", s.Scroll)
	}

	s.ScrollBy(100)
	if s.Scroll != 15 {
		t.Fatalf("expected scroll clamped to scrollback, got %d", s.Scroll)
	}
}

func TestAutoscrollHoldsPositionWithFullScrollback(t *testing.T) {
	term := &recordingTerminal{scrollback: 100, scrolledOff: 400}
	s := &Session{ID: "a", Kind: KindTerminal, Terminal: term}
	auto := NewAutoscroll()

	s.ScrollBy(10)
	auto.BeforeUpdate(s)
	// The limit trims as fast as lines arrive, so the length stays put.
	term.scrolledOff += 4
	auto.AfterUpdate(s)
	if s.Scroll != 14 {
		t.Fatalf("expected offset to follow the 4 new lines, got %d", s.Scroll)
	}
}

func TestAutoscrollDropsSnapshotForClosedSession(t *testing.T) {
	registry := NewRegistry()
	registry.Create(&Session{ID: "a", Kind: KindTerminal, Terminal: &recordingTerminal{}})
	auto := NewAutoscroll()
	outbox := NewOutbox()
	syncer := NewSynchronizer(registry, outbox, auto)

	outbox.Push(Output{Session: "a", Events: []vt.Event{vt.Print("x")}})
	_, err := syncer.Step(context.Background(), func(context.Context) error {
		registry.CloseCurrent()
		return nil
	})
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if len(auto.snapshots) != 0 {
		t.Fatalf("expected no snapshots left, got %v", auto.snapshots)
	}
}
