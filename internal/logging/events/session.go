package events

import "github.com/atomicstack/tabterm/internal/logging"

type SessionTracer struct{}

var Session = SessionTracer{}

func (SessionTracer) Create(id, name, kind string) {
	logging.Trace("session.create", map[string]interface{}{"id": id, "name": name, "kind": kind})
}

func (SessionTracer) Close(id string, index, remaining int) {
	logging.Trace("session.close", map[string]interface{}{"id": id, "index": index, "remaining": remaining})
}

// Closed records a session whose output source reached end-of-stream.
func (SessionTracer) Closed(id string) {
	logging.Trace("session.closed", map[string]interface{}{"id": id})
}

// Discard records output that arrived for a session no longer registered.
func (SessionTracer) Discard(id string, events int) {
	logging.Trace("session.discard", map[string]interface{}{"id": id, "events": events})
}

func (SessionTracer) ReaderExit(id string, err error) {
	payload := map[string]interface{}{"id": id}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("session.reader.exit", payload)
}

func (SessionTracer) Focus(id string, index int) {
	logging.Trace("session.focus", map[string]interface{}{"id": id, "index": index})
}
