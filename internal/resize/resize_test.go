package resize

import (
	"context"
	"errors"
	"testing"
)

type recordingSink struct {
	grids []Grid
}

func (r *recordingSink) ResizeAll(g Grid) { r.grids = append(r.grids, g) }

func TestCompute(t *testing.T) {
	m := CellMetrics{Width: 8, Height: 14}
	cases := []struct {
		name string
		vp   Viewport
		want Grid
	}{
		{"exact", Viewport{Width: 100, Height: 140}, Grid{Rows: 10, Cols: 12}},
		{"narrow", Viewport{Width: 7, Height: 14}, Grid{Rows: 1, Cols: 1}},
		{"empty", Viewport{}, Grid{Rows: 1, Cols: 1}},
		{"multiple", Viewport{Width: 640, Height: 336}, Grid{Rows: 24, Cols: 80}},
	}
	for _, tc := range cases {
		got, err := Compute(tc.vp, m)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestComputeAbsorbsFloatError(t *testing.T) {
	m := CellMetrics{Width: 0.1, Height: 0.1}
	got, err := Compute(Viewport{Width: 0.3, Height: 0.7}, m)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if got.Cols != 3 || got.Rows != 7 {
		t.Fatalf("expected 3x7, got %v", got)
	}
}

func TestComputeRejectsUnmeasuredMetrics(t *testing.T) {
	for _, m := range []CellMetrics{{}, {Width: 8}, {Height: 14}, {Width: -1, Height: 14}} {
		if _, err := Compute(Viewport{Width: 100, Height: 100}, m); !errors.Is(err, ErrUnmeasured) {
			t.Fatalf("metrics %+v: expected ErrUnmeasured, got %v", m, err)
		}
	}
}

func TestNegotiatorDefersUntilMeasured(t *testing.T) {
	sink := &recordingSink{}
	n := NewNegotiator(sink)

	n.ViewportChanged(Viewport{Width: 100, Height: 140})
	n.ViewportChanged(Viewport{Width: 200, Height: 280})
	if len(sink.grids) != 0 {
		t.Fatalf("expected no propagation before metrics, got %v", sink.grids)
	}
	if n.Grid() != DefaultGrid {
		t.Fatalf("expected default grid, got %v", n.Grid())
	}

	n.SetMetrics(CellMetrics{})
	if n.Measured() || len(sink.grids) != 0 {
		t.Fatal("expected invalid metrics to be ignored")
	}

	n.SetMetrics(CellMetrics{Width: 8, Height: 14})
	if len(sink.grids) != 1 {
		t.Fatalf("expected the latest deferred viewport replayed once, got %v", sink.grids)
	}
	if want := (Grid{Rows: 20, Cols: 25}); sink.grids[0] != want || n.Grid() != want {
		t.Fatalf("expected %v, got %v", want, sink.grids[0])
	}

	n.SetMetrics(CellMetrics{Width: 10, Height: 20})
	if len(sink.grids) != 1 {
		t.Fatal("expected no replay once the pending viewport was consumed")
	}
	n.ViewportChanged(Viewport{Width: 100, Height: 100})
	if got := sink.grids[len(sink.grids)-1]; got != (Grid{Rows: 5, Cols: 10}) {
		t.Fatalf("unexpected grid %v", got)
	}
}

func TestStaticMeasurer(t *testing.T) {
	s := Static{Metrics: CellMetrics{Width: 8, Height: 14}}
	m, err := s.Measure(context.Background(), 14)
	if err != nil || m != s.Metrics {
		t.Fatalf("unexpected measure %v %v", m, err)
	}
	vp := s.Viewport(80, 24)
	g, _ := Compute(vp, m)
	if g != (Grid{Rows: 24, Cols: 80}) {
		t.Fatalf("expected cells to round trip, got %v", g)
	}
	if _, err := (Static{}).Measure(context.Background(), 14); !errors.Is(err, ErrUnmeasured) {
		t.Fatalf("expected ErrUnmeasured, got %v", err)
	}
}

func TestFontMetrics(t *testing.T) {
	if got := FontMetrics(14); got != DefaultMetrics {
		t.Fatalf("expected 14px font to match defaults, got %+v", got)
	}
	if got := FontMetrics(0); got != DefaultMetrics {
		t.Fatalf("expected fallback for zero size, got %+v", got)
	}
}
