package overlay

import (
	"context"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"github.com/tbung/wezterm/internal/mux"
)

// Selector is a fuzzy-filtered list the user picks one entry from. The
// launcher and the tab navigator are both selectors.
type Selector struct {
	title    string
	items    []string
	query    string
	matches  []int
	selected int
}

// NewSelector creates a selector over items with the cursor on initial.
func NewSelector(title string, items []string, initial int) *Selector {
	s := &Selector{title: title, items: items}
	s.filter()
	if initial >= 0 && initial < len(s.matches) {
		s.selected = initial
	}
	return s
}

// Query returns the current filter text.
func (s *Selector) Query() string { return s.query }

// Matches returns the indices of the items passing the filter, best first.
func (s *Selector) Matches() []int { return s.matches }

// Selected returns the item index under the cursor.
func (s *Selector) Selected() (int, bool) {
	if len(s.matches) == 0 {
		return 0, false
	}
	return s.matches[s.selected], true
}

func (s *Selector) filter() {
	s.matches = s.matches[:0]
	if s.query == "" {
		for i := range s.items {
			s.matches = append(s.matches, i)
		}
	} else {
		for _, m := range fuzzy.Find(s.query, s.items) {
			s.matches = append(s.matches, m.Index)
		}
	}
	if s.selected >= len(s.matches) {
		s.selected = max(len(s.matches)-1, 0)
	}
}

// Outcome is the result of feeding a key to a selector.
type Outcome uint8

const (
	Pending Outcome = iota
	Chosen
	Cancelled
)

// HandleKey applies one key press.
func (s *Selector) HandleKey(ev mux.KeyEvent) Outcome {
	switch ev.Key {
	case mux.KeyEscape:
		return Cancelled
	case mux.KeyEnter:
		if _, ok := s.Selected(); ok {
			return Chosen
		}
		return Pending
	case mux.KeyUp:
		if s.selected > 0 {
			s.selected--
		}
	case mux.KeyDown:
		if s.selected+1 < len(s.matches) {
			s.selected++
		}
	case mux.KeyBackspace:
		if r := []rune(s.query); len(r) > 0 {
			s.query = string(r[:len(r)-1])
			s.filter()
		}
	default:
		r, ok := ev.Rune()
		if !ok || !unicode.IsPrint(r) || ev.Mods&(mux.ModCtrl|mux.ModAlt|mux.ModSuper) != 0 {
			return Pending
		}
		// digits jump straight to an entry while no query is typed
		if s.query == "" && r >= '1' && r <= '9' && int(r-'1') < len(s.matches) {
			s.selected = int(r - '1')
			return Chosen
		}
		s.query += string(r)
		s.selected = 0
		s.filter()
	}
	return Pending
}

// Lines renders the selector for a screen cols wide and rows tall.
func (s *Selector) Lines(cols, rows int) ([]mux.Line, mux.CursorPosition) {
	lines := []mux.Line{
		mux.NewLine(runewidth.Truncate(s.title, cols, "…")),
		mux.NewLine(runewidth.Truncate("> "+s.query, cols, "…")),
	}
	cursor := mux.CursorPosition{
		X:     min(runewidth.StringWidth("> "+s.query), cols-1),
		Y:     1,
		Shape: mux.CursorBlinkingBar,
	}

	visible := rows - len(lines)
	first := 0
	if s.selected >= visible && visible > 0 {
		first = s.selected - visible + 1
	}
	for i := first; i < len(s.matches) && len(lines) < rows; i++ {
		marker := "  "
		if i == s.selected {
			marker = "> "
		}
		lines = append(lines, mux.NewLine(runewidth.Truncate(marker+s.items[s.matches[i]], cols, "…")))
	}
	return lines, cursor
}

// Choose runs s on t until an item is chosen or the user cancels. The
// second result is false on cancel.
func Choose(ctx context.Context, t *Term, s *Selector) (int, bool, error) {
	for {
		cols, rows := t.Size()
		lines, cursor := s.Lines(cols, rows)
		t.Render(lines, cursor)

		ev, err := t.NextKey(ctx)
		if err != nil {
			return 0, false, err
		}
		switch s.HandleKey(ev) {
		case Chosen:
			idx, _ := s.Selected()
			return idx, true, nil
		case Cancelled:
			return 0, false, nil
		}
	}
}
