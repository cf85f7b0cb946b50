package session

import (
	"errors"
	"io"
	"sync"

	"github.com/atomicstack/tabterm/internal/logging/events"
)

const readBufferSize = 4096

// Readers runs one blocking read loop per terminal session and feeds the
// decoded output into a shared outbox.
type Readers struct {
	outbox *Outbox
	wg     sync.WaitGroup
}

func NewReaders(outbox *Outbox) *Readers {
	return &Readers{outbox: outbox}
}

// Start launches the reader for id. The goroutine ends when src reports an
// error, which includes the pty going away after the session is closed.
func (r *Readers) Start(id ID, src io.Reader, dec Decoder) {
	r.wg.Add(1)
	go r.run(id, src, dec)
}

// Wait blocks until every reader has exited.
func (r *Readers) Wait() {
	r.wg.Wait()
}

func (r *Readers) run(id ID, src io.Reader, dec Decoder) {
	defer r.wg.Done()

	buf := make([]byte, readBufferSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if evs := dec.Decode(buf[:n]); len(evs) > 0 {
				if !r.outbox.Push(Output{Session: id, Events: evs}) {
					events.Session.ReaderExit(string(id), nil)
					return
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			}
			events.Session.ReaderExit(string(id), err)
			r.outbox.Push(Output{Session: id, Closed: true})
			return
		}
	}
}
