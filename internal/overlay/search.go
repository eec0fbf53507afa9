package overlay

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/tbung/wezterm/internal/mux"
)

// Match is one occurrence of the search pattern. End is exclusive.
type Match struct {
	Row   mux.StableRowIndex
	Start int
	End   int
}

// Search covers a pane while the user types a pattern, highlighting the
// matches in the visible region. Content, dimensions and cursor come from
// the covered pane.
type Search struct {
	mux.Pane
	id mux.PaneID

	mu       sync.Mutex
	pattern  string
	viewport *mux.StableRowIndex
	matches  []Match
	active   int
	dirty    map[mux.StableRowIndex]struct{}

	done     chan struct{}
	doneOnce sync.Once
}

// NewSearch creates a search overlay for delegate with an initial pattern.
func NewSearch(id mux.PaneID, delegate mux.Pane, pattern string) *Search {
	s := &Search{
		Pane:    delegate,
		id:      id,
		pattern: pattern,
		dirty:   make(map[mux.StableRowIndex]struct{}),
		done:    make(chan struct{}),
	}
	s.mu.Lock()
	s.recompute()
	s.mu.Unlock()
	return s
}

// ID implements mux.Pane.
func (s *Search) ID() mux.PaneID { return s.id }

// Title implements mux.Pane.
func (s *Search) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return "Search: " + s.pattern
}

// Pattern returns the search text.
func (s *Search) Pattern() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pattern
}

// Matches returns the matches in the visible region.
func (s *Search) Matches() []Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Match(nil), s.matches...)
}

// ActiveMatch returns the highlighted match.
func (s *Search) ActiveMatch() (Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.matches) == 0 {
		return Match{}, false
	}
	return s.matches[s.active], true
}

// Done is closed once the user dismisses the search.
func (s *Search) Done() <-chan struct{} { return s.done }

// ViewportChanged implements mux.ViewportAware.
func (s *Search) ViewportChanged(viewport *mux.StableRowIndex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = viewport
	s.recompute()
}

// KeyDown implements mux.Pane. Keys edit the pattern instead of reaching
// the covered pane.
func (s *Search) KeyDown(ev mux.KeyEvent) error {
	switch ev.Key {
	case mux.KeyEscape:
		s.finish()
		return nil
	case mux.KeyEnter, mux.KeyDown:
		s.step(1)
		return nil
	case mux.KeyUp:
		s.step(-1)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Key == mux.KeyBackspace {
		if r := []rune(s.pattern); len(r) > 0 {
			s.pattern = string(r[:len(r)-1])
			s.recompute()
		}
		return nil
	}
	if r, ok := ev.Rune(); ok && unicode.IsPrint(r) && ev.Mods&(mux.ModCtrl|mux.ModAlt|mux.ModSuper) == 0 {
		s.pattern += string(r)
		s.recompute()
	}
	return nil
}

// SendString implements mux.Pane by appending to the pattern.
func (s *Search) SendString(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pattern += text
	s.recompute()
	return nil
}

// DirtyLines implements mux.Pane: the covered pane's dirty rows plus the
// rows whose highlighting changed.
func (s *Search) DirtyLines(start, end mux.StableRowIndex) []mux.StableRowIndex {
	own := func() []mux.StableRowIndex {
		s.mu.Lock()
		defer s.mu.Unlock()
		return dirtyIn(s.dirty, start, end)
	}()
	return mergeRows(s.Pane.DirtyLines(start, end), own)
}

// ClearDirty forgets the highlighting changes once painted, along with
// the covered pane's dirty rows.
func (s *Search) ClearDirty() {
	s.mu.Lock()
	clear(s.dirty)
	s.mu.Unlock()
	clearDelegate(s.Pane)
}

type dirtyClearer interface {
	ClearDirty()
}

// clearDelegate clears the dirty rows of a covered pane that tracks them.
func clearDelegate(p mux.Pane) {
	if dc, ok := p.(dirtyClearer); ok {
		dc.ClearDirty()
	}
}

// CanCloseWithoutPrompting implements mux.Pane.
func (s *Search) CanCloseWithoutPrompting() bool { return true }

func (s *Search) step(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.matches) == 0 {
		return
	}
	s.markDirty(s.matches[s.active].Row)
	s.active = (s.active + n + len(s.matches)) % len(s.matches)
	s.markDirty(s.matches[s.active].Row)
}

func (s *Search) finish() {
	s.doneOnce.Do(func() { close(s.done) })
}

func (s *Search) markDirty(row mux.StableRowIndex) {
	s.dirty[row] = struct{}{}
}

// recompute rescans the visible region. Rows gaining or losing a match are
// marked dirty. Callers hold s.mu.
func (s *Search) recompute() {
	for _, m := range s.matches {
		s.markDirty(m.Row)
	}
	s.matches = s.matches[:0]
	s.active = 0
	if s.pattern == "" {
		return
	}

	dims := s.Pane.Dimensions()
	top := dims.PhysicalTop
	if s.viewport != nil {
		top = *s.viewport
	}
	first, lines := s.Pane.Lines(top, top+mux.StableRowIndex(dims.ViewportRows))
	needle := []rune(strings.ToLower(s.pattern))
	for i, ln := range lines {
		row := first + mux.StableRowIndex(i)
		for _, start := range findAll(lineRunes(ln), needle) {
			s.matches = append(s.matches, Match{Row: row, Start: start, End: start + len(needle)})
			s.markDirty(row)
		}
	}
}

func lineRunes(ln mux.Line) []rune {
	out := make([]rune, len(ln.Cells))
	for i, c := range ln.Cells {
		r := []rune(strings.ToLower(c.Text))
		if len(r) == 0 {
			out[i] = ' '
			continue
		}
		out[i] = r[0]
	}
	return out
}

func findAll(hay, needle []rune) []int {
	var out []int
	for i := 0; i+len(needle) <= len(hay); i++ {
		if string(hay[i:i+len(needle)]) == string(needle) {
			out = append(out, i)
		}
	}
	return out
}

func mergeRows(a, b []mux.StableRowIndex) []mux.StableRowIndex {
	if len(b) == 0 {
		return a
	}
	seen := make(map[mux.StableRowIndex]struct{}, len(a)+len(b))
	for _, r := range a {
		seen[r] = struct{}{}
	}
	for _, r := range b {
		seen[r] = struct{}{}
	}
	rows := make([]mux.StableRowIndex, 0, len(seen))
	for r := range seen {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i] < rows[j] })
	return rows
}
