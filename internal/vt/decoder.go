package vt

import (
	"bytes"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const (
	maxParams  = 32
	maxOSCData = 4096
)

// Decoder converts raw output bytes into events. It is not safe for
// concurrent use; each session reader owns its own Decoder.
type Decoder struct {
	parser  *ansi.Parser
	text    strings.Builder
	pending []Event
}

// NewDecoder returns a decoder in the ground state.
func NewDecoder() *Decoder {
	d := &Decoder{parser: ansi.NewParser()}
	d.parser.SetParamsSize(maxParams)
	d.parser.SetDataSize(maxOSCData)
	d.parser.SetHandler(ansi.Handler{
		Print:     d.print,
		Execute:   d.execute,
		HandleCsi: d.csi,
		HandleEsc: d.esc,
		HandleOsc: d.osc,
	})
	return d
}

// Decode feeds p through the parser and returns the events it completed.
// Incomplete sequences at the end of p are carried into the next call.
func (d *Decoder) Decode(p []byte) []Event {
	for _, b := range p {
		d.parser.Advance(b)
	}
	d.flushText()
	out := d.pending
	d.pending = nil
	return out
}

func (d *Decoder) print(r rune) {
	d.text.WriteRune(r)
}

func (d *Decoder) flushText() {
	if d.text.Len() == 0 {
		return
	}
	d.pending = append(d.pending, Print(d.text.String()))
	d.text.Reset()
}

func (d *Decoder) execute(b byte) {
	d.flushText()
	d.pending = append(d.pending, Control(b))
}

func (d *Decoder) csi(cmd ansi.Cmd, params ansi.Params) {
	d.flushText()
	values := make([]int, len(params))
	for i := range params {
		values[i] = params[i].Param(-1)
	}
	d.pending = append(d.pending, Event{
		Kind:         EventCSI,
		Final:        cmd.Final(),
		Prefix:       cmd.Prefix(),
		Intermediate: cmd.Intermediate(),
		Params:       values,
	})
}

func (d *Decoder) esc(cmd ansi.Cmd) {
	d.flushText()
	d.pending = append(d.pending, Event{
		Kind:         EventESC,
		Final:        cmd.Final(),
		Intermediate: cmd.Intermediate(),
	})
}

func (d *Decoder) osc(cmd int, data []byte) {
	d.flushText()
	d.pending = append(d.pending, Event{
		Kind:    EventOSC,
		Command: cmd,
		Text:    oscPayload(data),
	})
}

// oscPayload strips the leading "<number>;" the parser leaves in the data
// buffer, keeping any further semicolons that belong to the payload.
func oscPayload(data []byte) string {
	idx := bytes.IndexByte(data, ';')
	if idx < 0 {
		if isDigits(data) {
			return ""
		}
		return string(data)
	}
	if !isDigits(data[:idx]) {
		return string(data)
	}
	return string(data[idx+1:])
}

func isDigits(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
