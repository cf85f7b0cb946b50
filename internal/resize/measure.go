package resize

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/creack/pty"
)

// ErrNoPixelSize reports a host terminal that does not fill in the pixel
// fields of its window size.
var ErrNoPixelSize = errors.New("resize: terminal does not report pixel size")

// Measurer reports cell metrics for a font size and the pixel area covered by
// a block of cells. Measure may block and is run off the update loop.
type Measurer interface {
	Measure(ctx context.Context, fontSize float64) (CellMetrics, error)
	Viewport(cols, rows int) Viewport
}

// FontMetrics approximates the glyph box of a monospaced font at size px.
func FontMetrics(size float64) CellMetrics {
	if size <= 0 {
		return DefaultMetrics
	}
	return CellMetrics{Width: size * 4 / 7, Height: size}
}

// Static serves fixed metrics.
type Static struct {
	Metrics CellMetrics
}

func (s Static) Measure(ctx context.Context, _ float64) (CellMetrics, error) {
	if err := ctx.Err(); err != nil {
		return CellMetrics{}, err
	}
	if !s.Metrics.Valid() {
		return CellMetrics{}, ErrUnmeasured
	}
	return s.Metrics, nil
}

func (s Static) Viewport(cols, rows int) Viewport {
	return Viewport{Width: float64(cols) * s.Metrics.Width, Height: float64(rows) * s.Metrics.Height}
}

// TTY derives metrics from the pixel and cell size the host terminal reports
// for f. Hosts that leave the pixel fields empty get Fallback.
type TTY struct {
	File     *os.File
	Fallback CellMetrics
}

func NewTTY(f *os.File, fallback CellMetrics) *TTY {
	if !fallback.Valid() {
		fallback = DefaultMetrics
	}
	return &TTY{File: f, Fallback: fallback}
}

// Measure returns the host metrics. On failure it returns Fallback together
// with the error so callers can log and continue.
func (t *TTY) Measure(ctx context.Context, _ float64) (CellMetrics, error) {
	if err := ctx.Err(); err != nil {
		return t.Fallback, err
	}
	ws, err := pty.GetsizeFull(t.File)
	if err != nil {
		return t.Fallback, fmt.Errorf("measure cells: %w", err)
	}
	if ws.X == 0 || ws.Y == 0 || ws.Cols == 0 || ws.Rows == 0 {
		return t.Fallback, ErrNoPixelSize
	}
	return CellMetrics{
		Width:  float64(ws.X) / float64(ws.Cols),
		Height: float64(ws.Y) / float64(ws.Rows),
	}, nil
}

// Viewport scales the host pixel size down to cols x rows cells.
func (t *TTY) Viewport(cols, rows int) Viewport {
	ws, err := pty.GetsizeFull(t.File)
	if err != nil || ws.X == 0 || ws.Y == 0 || ws.Cols == 0 || ws.Rows == 0 {
		return Static{Metrics: t.Fallback}.Viewport(cols, rows)
	}
	return Viewport{
		Width:  float64(ws.X) * float64(cols) / float64(ws.Cols),
		Height: float64(ws.Y) * float64(rows) / float64(ws.Rows),
	}
}
