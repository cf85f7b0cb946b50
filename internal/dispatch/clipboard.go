package dispatch

import "github.com/atotto/clipboard"

// Clipboard is the system clipboard used by copy and paste.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// SystemClipboard uses the host clipboard utilities.
type SystemClipboard struct{}

func (SystemClipboard) ReadAll() (string, error) {
	return clipboard.ReadAll()
}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}
