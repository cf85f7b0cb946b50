// Package palette filters the dispatchable actions by a typed query.
package palette

import (
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/atomicstack/tabterm/internal/action"
)

// Mode selects how the query matches labels.
type Mode string

const (
	// ModePrefix keeps labels that start with the query, ignoring case.
	ModePrefix Mode = "prefix"
	// ModeFuzzy also keeps labels the query matches as a fuzzy subsequence.
	ModeFuzzy Mode = "fuzzy"
)

// ParseMode validates a mode name. The empty string selects ModePrefix.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModePrefix:
		return ModePrefix, nil
	case ModeFuzzy:
		return ModeFuzzy, nil
	default:
		return "", fmt.Errorf("unknown palette mode %q", s)
	}
}

// Palette holds the query, the catalog and the current matches. Matches
// always follow catalog order. The selection resets to the first match
// whenever the query changes.
type Palette struct {
	mode     Mode
	catalog  []action.Action
	query    string
	matches  []action.Action
	selected int
	offset   int
}

func New(catalog []action.Action, mode Mode) *Palette {
	p := &Palette{mode: mode, catalog: append([]action.Action(nil), catalog...)}
	p.matches = Matches(p.catalog, "", mode)
	return p
}

// Matches filters catalog by query without touching any palette state.
func Matches(catalog []action.Action, query string, mode Mode) []action.Action {
	lower := strings.ToLower(query)
	keep := make([]bool, len(catalog))
	for i, a := range catalog {
		keep[i] = strings.HasPrefix(strings.ToLower(a.Label()), lower)
	}
	if mode == ModeFuzzy && strings.TrimSpace(query) != "" {
		labels := make([]string, len(catalog))
		for i, a := range catalog {
			labels[i] = a.Label()
		}
		for _, rank := range fuzzy.RankFindNormalizedFold(strings.TrimSpace(query), labels) {
			keep[rank.OriginalIndex] = true
		}
	}
	out := make([]action.Action, 0, len(catalog))
	for i, a := range catalog {
		if keep[i] {
			out = append(out, a)
		}
	}
	return out
}

// SetQuery replaces the query and recomputes matches.
func (p *Palette) SetQuery(q string) {
	if q == p.query {
		return
	}
	p.query = q
	p.matches = Matches(p.catalog, q, p.mode)
	p.selected = 0
	p.offset = 0
}

// Reset clears the query, as when the palette is reopened.
func (p *Palette) Reset() {
	p.query = ""
	p.matches = Matches(p.catalog, "", p.mode)
	p.selected = 0
	p.offset = 0
}

func (p *Palette) Query() string { return p.query }

// Matches returns the current matches.
func (p *Palette) Matches() []action.Action {
	return append([]action.Action(nil), p.matches...)
}

// Selected returns the selection index; it is 0 when there are no matches.
func (p *Palette) Selected() int { return p.selected }

// Up moves the selection up, wrapping from the first match to the last.
func (p *Palette) Up() {
	if n := len(p.matches); n > 0 {
		p.selected = (p.selected - 1 + n) % n
	}
}

// Down moves the selection down, wrapping from the last match to the first.
func (p *Palette) Down() {
	if n := len(p.matches); n > 0 {
		p.selected = (p.selected + 1) % n
	}
}

// Selection returns the selected action, or false when nothing matches.
func (p *Palette) Selection() (action.Action, bool) {
	if len(p.matches) == 0 {
		return action.Action{}, false
	}
	return p.matches[p.selected], true
}

// Window returns the slice of matches to draw in maxVisible rows and the
// index of the first one, keeping the selection in view.
func (p *Palette) Window(maxVisible int) ([]action.Action, int) {
	n := len(p.matches)
	if maxVisible <= 0 || maxVisible >= n {
		p.offset = 0
		return p.Matches(), 0
	}
	if p.selected < p.offset {
		p.offset = p.selected
	}
	if p.selected >= p.offset+maxVisible {
		p.offset = p.selected - maxVisible + 1
	}
	p.offset = max(0, min(p.offset, n-maxVisible))
	return append([]action.Action(nil), p.matches[p.offset:p.offset+maxVisible]...), p.offset
}
