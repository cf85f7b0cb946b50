package session

import (
	"errors"
	"testing"
)

func newTestRegistry(n int) *Registry {
	r := NewRegistry()
	for i := 0; i < n; i++ {
		r.Create(&Session{Kind: KindTerminal})
	}
	return r
}

func TestCreateAssignsIDsAndNamesWithoutFocusing(t *testing.T) {
	r := NewRegistry()
	first := r.Create(&Session{Kind: KindTerminal})
	second := r.Create(&Session{Kind: KindTerminal})
	settings := r.Create(&Session{Kind: KindSettings})

	if first == "" || first == second {
		t.Fatalf("expected distinct generated ids, got %q and %q", first, second)
	}
	if r.FocusIndex() != 0 {
		t.Fatalf("expected create to leave focus at 0, got %d", r.FocusIndex())
	}
	names := []string{}
	for _, s := range r.Sessions() {
		names = append(names, s.Name)
	}
	if names[0] != "terminal 1" || names[1] != "terminal 2" || names[2] != "Settings" {
		t.Fatalf("unexpected default names %v", names)
	}
	if s, ok := r.Lookup(settings); !ok || s.Kind != KindSettings {
		t.Fatalf("expected settings session by id")
	}
}

func TestCloseOutOfRangeIsNoOp(t *testing.T) {
	r := newTestRegistry(2)
	for _, idx := range []int{-1, 2, 10} {
		if _, ok := r.Close(idx); ok {
			t.Fatalf("expected close(%d) to be rejected", idx)
		}
	}
	if r.Len() != 2 {
		t.Fatalf("expected registry untouched, got %d sessions", r.Len())
	}
}

func TestCloseKeepsFocusInRange(t *testing.T) {
	for n := 2; n <= 5; n++ {
		for focus := 0; focus < n; focus++ {
			for idx := 0; idx < n; idx++ {
				r := newTestRegistry(n)
				r.Focus(focus)
				closed, ok := r.Close(idx)
				if !ok || closed.Empty {
					t.Fatalf("n=%d focus=%d idx=%d: unexpected result %+v ok=%v", n, focus, idx, closed, ok)
				}
				if r.Len() != n-1 {
					t.Fatalf("n=%d idx=%d: expected %d sessions, got %d", n, idx, n-1, r.Len())
				}
				if r.FocusIndex() >= n-1 {
					t.Fatalf("n=%d focus=%d idx=%d: focus %d out of range", n, focus, idx, r.FocusIndex())
				}
				want := focus
				if idx <= focus && focus > 0 {
					want = focus - 1
				}
				if r.FocusIndex() != want {
					t.Fatalf("n=%d focus=%d idx=%d: expected focus %d, got %d", n, focus, idx, want, r.FocusIndex())
				}
			}
		}
	}
}

func TestCloseLastSessionReportsEmpty(t *testing.T) {
	r := newTestRegistry(1)
	closed, ok := r.CloseCurrent()
	if !ok || !closed.Empty {
		t.Fatalf("expected empty registry signal, got %+v", closed)
	}
	if r.Current() != nil {
		t.Fatal("expected no current session")
	}
	if _, ok := r.CloseCurrent(); ok {
		t.Fatal("expected closing an empty registry to be rejected")
	}
}

func TestNextThenPreviousRestoresFocus(t *testing.T) {
	for n := 1; n <= 4; n++ {
		for start := 0; start < n; start++ {
			r := newTestRegistry(n)
			r.Focus(start)
			r.Next()
			r.Previous()
			if r.FocusIndex() != start {
				t.Fatalf("n=%d start=%d: focus ended at %d", n, start, r.FocusIndex())
			}
		}
	}
	r := newTestRegistry(3)
	r.Focus(2)
	r.Next()
	if r.FocusIndex() != 0 {
		t.Fatalf("expected wrap to 0, got %d", r.FocusIndex())
	}
	r.Previous()
	if r.FocusIndex() != 2 {
		t.Fatalf("expected wrap to 2, got %d", r.FocusIndex())
	}
}

func TestRemoveUnknownSession(t *testing.T) {
	r := newTestRegistry(1)
	if _, err := r.Remove("missing"); !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("expected ErrUnknownSession, got %v", err)
	}
}

func TestFocusRejectsOutOfRange(t *testing.T) {
	r := newTestRegistry(2)
	if r.Focus(2) || r.Focus(-1) {
		t.Fatal("expected out of range focus to be rejected")
	}
	if !r.Focus(1) || r.Current() != r.Sessions()[1] {
		t.Fatal("expected focus on second session")
	}
}
