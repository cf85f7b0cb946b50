package keymap

import tea "github.com/charmbracelet/bubbletea"

const esc = "\x1b"

// xterm input sequences for keys without a single-byte encoding.
var sequences = map[tea.KeyType]string{
	tea.KeyUp:        esc + "[A",
	tea.KeyDown:      esc + "[B",
	tea.KeyRight:     esc + "[C",
	tea.KeyLeft:      esc + "[D",
	tea.KeyHome:      esc + "[H",
	tea.KeyEnd:       esc + "[F",
	tea.KeyPgUp:      esc + "[5~",
	tea.KeyPgDown:    esc + "[6~",
	tea.KeyInsert:    esc + "[2~",
	tea.KeyDelete:    esc + "[3~",
	tea.KeyShiftTab:  esc + "[Z",
	tea.KeyCtrlUp:    esc + "[1;5A",
	tea.KeyCtrlDown:  esc + "[1;5B",
	tea.KeyCtrlRight: esc + "[1;5C",
	tea.KeyCtrlLeft:  esc + "[1;5D",
	tea.KeyF1:        esc + "OP",
	tea.KeyF2:        esc + "OQ",
	tea.KeyF3:        esc + "OR",
	tea.KeyF4:        esc + "OS",
	tea.KeyF5:        esc + "[15~",
	tea.KeyF6:        esc + "[17~",
	tea.KeyF7:        esc + "[18~",
	tea.KeyF8:        esc + "[19~",
	tea.KeyF9:        esc + "[20~",
	tea.KeyF10:       esc + "[21~",
	tea.KeyF11:       esc + "[23~",
	tea.KeyF12:       esc + "[24~",
}

// Encode returns the bytes a terminal sends for k. Alt prefixes the
// encoding with ESC. Keys with no encoding return nil.
func Encode(k tea.Key) []byte {
	var out string
	switch {
	case k.Type == tea.KeyRunes:
		out = string(k.Runes)
	case k.Type == tea.KeySpace:
		out = " "
	case k.Type >= 0 && k.Type < 0x20, k.Type == tea.KeyBackspace:
		out = string(rune(k.Type))
	default:
		out = sequences[k.Type]
	}
	if out == "" {
		return nil
	}
	if k.Alt && !k.Paste {
		out = esc + out
	}
	return []byte(out)
}
