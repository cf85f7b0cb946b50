package events

import "github.com/atomicstack/tabterm/internal/logging"

type PaletteTracer struct{}

type ActionTracer struct{}

type CommandTracer struct{}

var (
	Palette = PaletteTracer{}
	Action  = ActionTracer{}
	Command = CommandTracer{}
)

func (ActionTracer) Dispatch(action string) {
	logging.Trace("action.dispatch", map[string]interface{}{"action": action})
}

func (ActionTracer) Unimplemented(action string) {
	logging.Trace("action.unimplemented", map[string]interface{}{"action": action})
}

func (ActionTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("action.error", map[string]interface{}{"error": err.Error()})
}

func (ActionTracer) Shutdown(reason string) {
	logging.Trace("action.shutdown", map[string]interface{}{"reason": reason})
}

func (PaletteTracer) Toggle(visible bool) {
	logging.Trace("palette.toggle", map[string]interface{}{"visible": visible})
}

func (PaletteTracer) Query(query string, matches int) {
	logging.Trace("palette.query", map[string]interface{}{"query": query, "matches": matches})
}

func (PaletteTracer) Move(selected int) {
	logging.Trace("palette.move", map[string]interface{}{"selected": selected})
}

func (PaletteTracer) Confirm(label string) {
	logging.Trace("palette.confirm", map[string]interface{}{"label": label})
}

func (CommandTracer) Queue(id, label string) {
	logging.Trace("command.queue", map[string]interface{}{"id": id, "label": label})
}

func (CommandTracer) Result(id, label, msgType string) {
	logging.Trace("command.result", map[string]interface{}{"id": id, "label": label, "msg": msgType})
}
