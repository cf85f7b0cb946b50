// Package vt turns raw pseudo-terminal output into discrete events and keeps
// the screen state those events describe.
//
// A Decoder is owned by exactly one session reader goroutine. It keeps parser
// state across calls so an escape sequence split over two reads still decodes
// as one event. A Screen is owned by the update loop and is never touched by
// reader goroutines; events cross between the two through the session outbox.
package vt

// EventKind classifies a decoded unit of terminal output.
type EventKind uint8

const (
	// EventPrint carries a run of printable text.
	EventPrint EventKind = iota
	// EventControl carries a single C0 control byte (BEL, BS, HT, LF, CR, ...).
	EventControl
	// EventCSI carries a control sequence (cursor movement, erase, modes).
	EventCSI
	// EventESC carries a two or three byte escape sequence.
	EventESC
	// EventOSC carries an operating system command such as a title change.
	EventOSC
)

// Event is one decoded unit of terminal output.
type Event struct {
	Kind EventKind
	// Text holds printable runes for EventPrint and the payload for EventOSC.
	Text string
	// Final is the control byte for EventControl and the final byte for
	// EventCSI/EventESC.
	Final byte
	// Prefix is the private marker of a CSI sequence ('?', '>', '<', '=').
	Prefix byte
	// Intermediate is the intermediate byte of a CSI/ESC sequence, if any.
	Intermediate byte
	// Params are the CSI parameters; -1 marks an omitted parameter.
	Params []int
	// Command is the numeric OSC command.
	Command int
}

// Param returns the i-th CSI parameter, or def when it is absent or zero
// where zero means "default" for the sequence.
func (e Event) Param(i, def int) int {
	if i < 0 || i >= len(e.Params) {
		return def
	}
	v := e.Params[i]
	if v <= 0 {
		return def
	}
	return v
}

// rawParam returns the i-th parameter without treating zero as default.
func (e Event) rawParam(i, def int) int {
	if i < 0 || i >= len(e.Params) || e.Params[i] < 0 {
		return def
	}
	return e.Params[i]
}

// Print builds a text event.
func Print(text string) Event {
	return Event{Kind: EventPrint, Text: text}
}

// Control builds a C0 control event.
func Control(b byte) Event {
	return Event{Kind: EventControl, Final: b}
}

// CSI builds a control sequence event without a private prefix.
func CSI(final byte, params ...int) Event {
	return Event{Kind: EventCSI, Final: final, Params: params}
}

// Title builds the OSC 2 event that sets the window title.
func Title(title string) Event {
	return Event{Kind: EventOSC, Command: 2, Text: title}
}
