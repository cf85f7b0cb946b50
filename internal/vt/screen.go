package vt

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultScrollback is the number of lines kept above the primary screen.
const DefaultScrollback = 1000

const tabWidth = 8

// Cell is one grid position. A wide rune occupies its own cell plus a
// continuation cell with a negative Width. The zero Cell renders as a blank.
type Cell struct {
	Rune  rune
	Width int
}

var wideTail = Cell{Width: -1}

// Screen is the terminal state driven by decoded events. It is not safe for
// concurrent use and is only mutated from the update loop.
type Screen struct {
	rows, cols int
	lines      [][]Cell
	scrollback [][]Cell
	limit      int

	cx, cy         int
	top, bottom    int
	savedX, savedY int
	cursorVisible  bool
	autoWrap       bool

	// primary screen state parked while the alternate screen is active
	alt           bool
	primary       [][]Cell
	primaryX      int
	primaryY      int
	primaryTop    int
	primaryBottom int

	title string
	bell  bool

	// scrolledOff counts every line ever pushed to the scrollback, including
	// lines since trimmed by the limit.
	scrolledOff int
}

// NewScreen returns a blank screen of the given size.
func NewScreen(rows, cols int) *Screen {
	rows, cols = clampSize(rows, cols)
	s := &Screen{
		rows:          rows,
		cols:          cols,
		limit:         DefaultScrollback,
		cursorVisible: true,
		autoWrap:      true,
	}
	s.lines = blankLines(rows, cols)
	s.bottom = rows - 1
	return s
}

// SetScrollbackLimit bounds the scrollback; n <= 0 disables it.
func (s *Screen) SetScrollbackLimit(n int) {
	if n < 0 {
		n = 0
	}
	s.limit = n
	s.trimScrollback()
}

// Apply applies events in order.
func (s *Screen) Apply(events []Event) {
	for _, ev := range events {
		switch ev.Kind {
		case EventPrint:
			for _, r := range ev.Text {
				s.put(r)
			}
		case EventControl:
			s.control(ev.Final)
		case EventCSI:
			s.csi(ev)
		case EventESC:
			s.esc(ev)
		case EventOSC:
			if ev.Command == 0 || ev.Command == 2 {
				s.title = ev.Text
			}
		}
	}
}

// Size returns the grid dimensions.
func (s *Screen) Size() (rows, cols int) { return s.rows, s.cols }

// CursorPosition returns the zero-based cursor row and column.
func (s *Screen) CursorPosition() (row, col int) {
	col = s.cx
	if col >= s.cols {
		col = s.cols - 1
	}
	return s.cy, col
}

func (s *Screen) CursorVisible() bool { return s.cursorVisible }

func (s *Screen) Title() string { return s.title }

func (s *Screen) IsAltScreen() bool { return s.alt }

// Bell reports whether BEL was received since the last call.
func (s *Screen) Bell() bool {
	rang := s.bell
	s.bell = false
	return rang
}

// ScrollbackLen returns the number of lines above the visible grid.
func (s *Screen) ScrollbackLen() int {
	if s.alt {
		return 0
	}
	return len(s.scrollback)
}

// ScrolledOff returns how many lines have entered the scrollback over the
// screen's lifetime. Unlike ScrollbackLen it keeps growing once the limit is
// reached.
func (s *Screen) ScrolledOff() int { return s.scrolledOff }

// Lines renders the visible grid, one string per row.
func (s *Screen) Lines() []string {
	return s.View(0)
}

// View renders rows lines ending offset lines above the bottom of the
// primary history. The offset is clamped to the scrollback length.
func (s *Screen) View(offset int) []string {
	if offset < 0 {
		offset = 0
	}
	history := s.scrollback
	if s.alt {
		history = nil
	}
	if offset > len(history) {
		offset = len(history)
	}
	out := make([]string, 0, s.rows)
	start := len(history) - offset
	for i := 0; i < s.rows; i++ {
		idx := start + i
		if idx < len(history) {
			out = append(out, renderLine(history[idx]))
			continue
		}
		out = append(out, renderLine(s.lines[idx-len(history)]))
	}
	return out
}

// Text returns the visible grid as plain text without trailing blanks.
func (s *Screen) Text() string {
	lines := s.Lines()
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// Clear erases the visible grid and the scrollback and homes the cursor.
func (s *Screen) Clear() {
	s.scrollback = nil
	s.lines = blankLines(s.rows, s.cols)
	s.cx, s.cy = 0, 0
}

// Resize changes the grid size. Rows pushed off the top while shrinking go
// to the scrollback on the primary screen.
func (s *Screen) Resize(rows, cols int) {
	rows, cols = clampSize(rows, cols)
	if rows == s.rows && cols == s.cols {
		return
	}
	if shift := s.cy - rows + 1; shift > 0 {
		if !s.alt {
			s.pushScrollback(s.lines[:shift]...)
		}
		s.lines = s.lines[shift:]
		s.cy -= shift
	}
	s.lines = fitLines(s.lines, rows, cols)
	if s.alt {
		s.primary = fitLines(s.primary, rows, cols)
		s.primaryX = min(s.primaryX, cols-1)
		s.primaryY = min(s.primaryY, rows-1)
		s.primaryTop, s.primaryBottom = 0, rows-1
	}
	s.rows, s.cols = rows, cols
	s.top, s.bottom = 0, rows-1
	s.cx = min(s.cx, cols-1)
	s.cy = min(s.cy, rows-1)
	s.savedX = min(s.savedX, cols-1)
	s.savedY = min(s.savedY, rows-1)
}

func (s *Screen) put(r rune) {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		return
	}
	if w == 2 && s.cols < 2 {
		// a wide rune cannot fit a single column
		r, w = ' ', 1
	}
	if s.cx >= s.cols {
		s.wrap()
	}
	if w == 2 && s.cx == s.cols-1 {
		if !s.autoWrap {
			return
		}
		s.lines[s.cy][s.cx] = Cell{}
		s.cx = s.cols
		s.wrap()
	}
	s.lines[s.cy][s.cx] = Cell{Rune: r, Width: w}
	if w == 2 {
		s.lines[s.cy][s.cx+1] = wideTail
	}
	s.cx += w
}

func (s *Screen) wrap() {
	if !s.autoWrap {
		s.cx = s.cols - 1
		return
	}
	s.cx = 0
	s.lineFeed()
}

func (s *Screen) control(b byte) {
	switch b {
	case 0x07:
		s.bell = true
	case 0x08:
		if s.cx >= s.cols {
			s.cx = s.cols - 1
		}
		if s.cx > 0 {
			s.cx--
		}
	case 0x09:
		next := (s.cx/tabWidth + 1) * tabWidth
		s.cx = min(next, s.cols-1)
	case 0x0a, 0x0b, 0x0c:
		s.lineFeed()
	case 0x0d:
		s.cx = 0
	}
}

func (s *Screen) lineFeed() {
	switch {
	case s.cy == s.bottom:
		s.scrollUp(1)
	case s.cy < s.rows-1:
		s.cy++
	}
}

func (s *Screen) reverseIndex() {
	switch {
	case s.cy == s.top:
		s.scrollDown(1)
	case s.cy > 0:
		s.cy--
	}
}

// scrollUp moves the scroll region up n lines. Lines leaving the top of a
// full-height region on the primary screen are kept as scrollback.
func (s *Screen) scrollUp(n int) {
	n = min(n, s.bottom-s.top+1)
	if n <= 0 {
		return
	}
	if s.top == 0 && !s.alt {
		s.pushScrollback(s.lines[:n]...)
	}
	copy(s.lines[s.top:], s.lines[s.top+n:s.bottom+1])
	for y := s.bottom - n + 1; y <= s.bottom; y++ {
		s.lines[y] = blankLine(s.cols)
	}
}

func (s *Screen) scrollDown(n int) {
	n = min(n, s.bottom-s.top+1)
	if n <= 0 {
		return
	}
	copy(s.lines[s.top+n:s.bottom+1], s.lines[s.top:s.bottom+1-n])
	for y := s.top; y < s.top+n; y++ {
		s.lines[y] = blankLine(s.cols)
	}
}

func (s *Screen) pushScrollback(lines ...[]Cell) {
	if s.limit == 0 {
		return
	}
	for _, l := range lines {
		s.scrollback = append(s.scrollback, l)
	}
	s.scrolledOff += len(lines)
	s.trimScrollback()
}

func (s *Screen) trimScrollback() {
	if over := len(s.scrollback) - s.limit; over > 0 {
		s.scrollback = append([][]Cell(nil), s.scrollback[over:]...)
	}
}

func (s *Screen) csi(ev Event) {
	if ev.Intermediate != 0 {
		return
	}
	if ev.Prefix == '?' {
		s.privateMode(ev)
		return
	}
	if ev.Prefix != 0 {
		return
	}
	n := ev.Param(0, 1)
	switch ev.Final {
	case 'A':
		s.moveTo(s.cy-n, s.cx)
	case 'B', 'e':
		s.moveTo(s.cy+n, s.cx)
	case 'C', 'a':
		s.moveTo(s.cy, s.cx+n)
	case 'D':
		s.moveTo(s.cy, min(s.cx, s.cols-1)-n)
	case 'E':
		s.moveTo(s.cy+n, 0)
	case 'F':
		s.moveTo(s.cy-n, 0)
	case 'G', '`':
		s.moveTo(s.cy, n-1)
	case 'd':
		s.moveTo(n-1, s.cx)
	case 'H', 'f':
		s.moveTo(ev.Param(0, 1)-1, ev.Param(1, 1)-1)
	case 'J':
		s.eraseDisplay(ev.rawParam(0, 0))
	case 'K':
		s.eraseLine(ev.rawParam(0, 0))
	case 'X':
		s.eraseCells(s.cy, s.cx, s.cx+n)
	case 'L':
		s.insertLines(n)
	case 'M':
		s.deleteLines(n)
	case '@':
		s.insertChars(n)
	case 'P':
		s.deleteChars(n)
	case 'S':
		s.scrollUp(n)
	case 'T':
		s.scrollDown(n)
	case 'r':
		s.setRegion(ev.Param(0, 1)-1, ev.Param(1, s.rows)-1)
	case 's':
		s.saveCursor()
	case 'u':
		s.restoreCursor()
	}
}

func (s *Screen) privateMode(ev Event) {
	set := ev.Final == 'h'
	if !set && ev.Final != 'l' {
		return
	}
	for i := range ev.Params {
		switch ev.rawParam(i, 0) {
		case 7:
			s.autoWrap = set
		case 25:
			s.cursorVisible = set
		case 47, 1047:
			s.setAltScreen(set, false)
		case 1049:
			s.setAltScreen(set, true)
		}
	}
}

func (s *Screen) esc(ev Event) {
	if ev.Intermediate != 0 {
		return
	}
	switch ev.Final {
	case '7':
		s.saveCursor()
	case '8':
		s.restoreCursor()
	case 'D':
		s.lineFeed()
	case 'E':
		s.cx = 0
		s.lineFeed()
	case 'M':
		s.reverseIndex()
	case 'c':
		s.reset()
	}
}

func (s *Screen) moveTo(row, col int) {
	s.cy = max(0, min(row, s.rows-1))
	s.cx = max(0, min(col, s.cols-1))
}

func (s *Screen) eraseDisplay(mode int) {
	switch mode {
	case 0:
		s.eraseCells(s.cy, s.cx, s.cols)
		for y := s.cy + 1; y < s.rows; y++ {
			s.lines[y] = blankLine(s.cols)
		}
	case 1:
		for y := 0; y < s.cy; y++ {
			s.lines[y] = blankLine(s.cols)
		}
		s.eraseCells(s.cy, 0, s.cx+1)
	case 2:
		s.lines = blankLines(s.rows, s.cols)
	case 3:
		s.lines = blankLines(s.rows, s.cols)
		s.scrollback = nil
	}
}

func (s *Screen) eraseLine(mode int) {
	switch mode {
	case 0:
		s.eraseCells(s.cy, s.cx, s.cols)
	case 1:
		s.eraseCells(s.cy, 0, s.cx+1)
	case 2:
		s.lines[s.cy] = blankLine(s.cols)
	}
}

func (s *Screen) eraseCells(row, from, to int) {
	from = max(0, from)
	to = min(to, s.cols)
	line := s.lines[row]
	for x := from; x < to; x++ {
		line[x] = Cell{}
	}
}

func (s *Screen) insertLines(n int) {
	if s.cy < s.top || s.cy > s.bottom {
		return
	}
	top := s.top
	s.top = s.cy
	s.scrollDown(n)
	s.top = top
	s.cx = 0
}

func (s *Screen) deleteLines(n int) {
	if s.cy < s.top || s.cy > s.bottom {
		return
	}
	top := s.top
	s.top = s.cy
	n = min(n, s.bottom-s.top+1)
	copy(s.lines[s.top:], s.lines[s.top+n:s.bottom+1])
	for y := s.bottom - n + 1; y <= s.bottom; y++ {
		s.lines[y] = blankLine(s.cols)
	}
	s.top = top
	s.cx = 0
}

func (s *Screen) insertChars(n int) {
	x := min(s.cx, s.cols-1)
	line := s.lines[s.cy]
	n = min(n, s.cols-x)
	copy(line[x+n:], line[x:s.cols-n])
	for i := x; i < x+n; i++ {
		line[i] = Cell{}
	}
}

func (s *Screen) deleteChars(n int) {
	x := min(s.cx, s.cols-1)
	line := s.lines[s.cy]
	n = min(n, s.cols-x)
	copy(line[x:], line[x+n:])
	for i := s.cols - n; i < s.cols; i++ {
		line[i] = Cell{}
	}
}

func (s *Screen) setRegion(top, bottom int) {
	top = max(0, top)
	bottom = min(bottom, s.rows-1)
	if top >= bottom {
		return
	}
	s.top, s.bottom = top, bottom
	s.cx, s.cy = 0, 0
}

func (s *Screen) saveCursor() {
	s.savedX, s.savedY = min(s.cx, s.cols-1), s.cy
}

func (s *Screen) restoreCursor() {
	s.cx, s.cy = s.savedX, s.savedY
}

func (s *Screen) setAltScreen(on, saveCursor bool) {
	if on == s.alt {
		return
	}
	if on {
		if saveCursor {
			s.saveCursor()
		}
		s.primary = s.lines
		s.primaryX, s.primaryY = s.cx, s.cy
		s.primaryTop, s.primaryBottom = s.top, s.bottom
		s.lines = blankLines(s.rows, s.cols)
		s.top, s.bottom = 0, s.rows-1
		s.alt = true
		return
	}
	s.lines = s.primary
	s.primary = nil
	s.cx, s.cy = s.primaryX, s.primaryY
	s.top, s.bottom = s.primaryTop, s.primaryBottom
	s.alt = false
	if saveCursor {
		s.restoreCursor()
	}
}

func (s *Screen) reset() {
	limit := s.limit
	*s = *NewScreen(s.rows, s.cols)
	s.limit = limit
}

func clampSize(rows, cols int) (int, int) {
	return max(rows, 1), max(cols, 1)
}

func blankLine(cols int) []Cell {
	return make([]Cell, cols)
}

func blankLines(rows, cols int) [][]Cell {
	lines := make([][]Cell, rows)
	for i := range lines {
		lines[i] = blankLine(cols)
	}
	return lines
}

func fitLines(lines [][]Cell, rows, cols int) [][]Cell {
	out := make([][]Cell, rows)
	for y := range out {
		line := blankLine(cols)
		if y < len(lines) {
			copy(line, lines[y])
			if cols > 0 && line[cols-1].Width == 2 {
				line[cols-1] = Cell{}
			}
		}
		out[y] = line
	}
	return out
}

func renderLine(line []Cell) string {
	var b strings.Builder
	b.Grow(len(line))
	for i, c := range line {
		switch {
		case c.Width < 0 && i > 0 && line[i-1].Width == 2:
			continue
		case c.Rune == 0 || c.Width < 0:
			b.WriteByte(' ')
		default:
			b.WriteRune(c.Rune)
		}
	}
	return b.String()
}
