// Package resize converts viewport pixel geometry into terminal grid sizes.
package resize

import (
	"errors"
	"fmt"
	"math"

	"github.com/atomicstack/tabterm/internal/logging/events"
)

// ErrUnmeasured reports cell metrics that cannot be divided by.
var ErrUnmeasured = errors.New("resize: cell metrics not measured")

// CellMetrics is the pixel size of one monospaced glyph.
type CellMetrics struct {
	Width  float64
	Height float64
}

// DefaultMetrics is the fallback used for pixel viewports on hosts that
// cannot report glyph geometry.
var DefaultMetrics = CellMetrics{Width: 8, Height: 14}

// Valid reports whether both dimensions are usable divisors.
func (m CellMetrics) Valid() bool {
	return m.Width > 0 && m.Height > 0 && !math.IsInf(m.Width, 0) && !math.IsInf(m.Height, 0)
}

// Viewport is a pixel area.
type Viewport struct {
	Width  float64
	Height float64
}

// Grid is a terminal size in cells.
type Grid struct {
	Rows int
	Cols int
}

// DefaultGrid is used until the first resize has been applied.
var DefaultGrid = Grid{Rows: 24, Cols: 80}

func (g Grid) String() string {
	return fmt.Sprintf("%dx%d", g.Cols, g.Rows)
}

// epsilon absorbs float error so an exact multiple of the cell size never
// floors to one cell short.
const epsilon = 1e-9

// Compute returns the grid that fits in vp. Each dimension is at least 1.
func Compute(vp Viewport, m CellMetrics) (Grid, error) {
	if !m.Valid() {
		return Grid{}, ErrUnmeasured
	}
	rows := int(math.Floor(vp.Height/m.Height + epsilon))
	cols := int(math.Floor(vp.Width/m.Width + epsilon))
	return Grid{Rows: max(rows, 1), Cols: max(cols, 1)}, nil
}

// Sink receives grid changes. The dispatcher resizes every terminal session
// and its process.
type Sink interface {
	ResizeAll(g Grid)
}

// Negotiator holds the latest metrics and viewport and pushes grid changes to
// its sink. It lives on the update loop.
type Negotiator struct {
	sink     Sink
	metrics  CellMetrics
	measured bool
	pending  *Viewport
	grid     Grid
}

func NewNegotiator(sink Sink) *Negotiator {
	return &Negotiator{sink: sink, grid: DefaultGrid}
}

// Measured reports whether metrics have arrived.
func (n *Negotiator) Measured() bool { return n.measured }

// Metrics returns the latest metrics, or DefaultMetrics before measurement.
func (n *Negotiator) Metrics() CellMetrics {
	if !n.measured {
		return DefaultMetrics
	}
	return n.metrics
}

// Grid returns the last applied grid.
func (n *Negotiator) Grid() Grid { return n.grid }

// SetMetrics records a measurement. Invalid metrics are ignored. A viewport
// change that was deferred while unmeasured is applied now.
func (n *Negotiator) SetMetrics(m CellMetrics) {
	if !m.Valid() {
		events.Resize.Metrics(m.Width, m.Height, false)
		return
	}
	n.metrics = m
	n.measured = true
	events.Resize.Metrics(m.Width, m.Height, true)
	if n.pending != nil {
		vp := *n.pending
		n.pending = nil
		n.ViewportChanged(vp)
	}
}

// ViewportChanged recomputes the grid for vp. Without metrics the change is
// remembered and nothing is propagated.
func (n *Negotiator) ViewportChanged(vp Viewport) {
	if !n.measured {
		n.pending = &vp
		events.Resize.Deferred(vp.Width, vp.Height)
		return
	}
	g, err := Compute(vp, n.metrics)
	if err != nil {
		return
	}
	n.grid = g
	events.Resize.Apply(g.Rows, g.Cols)
	if n.sink != nil {
		n.sink.ResizeAll(g)
	}
}
