package events

import "github.com/atomicstack/tabterm/internal/logging"

type ResizeTracer struct{}

var Resize = ResizeTracer{}

// Deferred records a geometry change that arrived before cell metrics.
func (ResizeTracer) Deferred(width, height float64) {
	logging.Trace("resize.deferred", map[string]interface{}{"width": width, "height": height})
}

func (ResizeTracer) Apply(rows, cols int) {
	logging.Trace("resize.apply", map[string]interface{}{"rows": rows, "cols": cols})
}

func (ResizeTracer) Metrics(width, height float64, measured bool) {
	logging.Trace("resize.metrics", map[string]interface{}{"width": width, "height": height, "measured": measured})
}
