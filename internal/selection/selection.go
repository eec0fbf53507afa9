package selection

import (
	"fmt"
	"strings"

	"github.com/tbung/wezterm/internal/mux"
)

// Mode is the unit a selection snaps to.
type Mode uint8

const (
	// ModeCell selects individual cells without snapping.
	ModeCell Mode = iota
	// ModeWord snaps to word boundaries.
	ModeWord
	// ModeLine snaps to whole logical lines.
	ModeLine
	// ModeSemanticZone snaps to the semantic zone under the cursor.
	ModeSemanticZone
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeCell:
		return "Cell"
	case ModeWord:
		return "Word"
	case ModeLine:
		return "Line"
	case ModeSemanticZone:
		return "SemanticZone"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(s) {
	case "cell":
		return ModeCell, true
	case "word":
		return ModeWord, true
	case "line":
		return ModeLine, true
	case "semanticzone", "zone":
		return ModeSemanticZone, true
	default:
		return ModeCell, false
	}
}

// Unit returns the range mode snaps coord to.
func Unit(mode Mode, coord Coord, c Content, boundary string) Range {
	switch mode {
	case ModeWord:
		return WordAround(coord, c, boundary)
	case ModeLine:
		return LineAround(coord, c)
	case ModeSemanticZone:
		return ZoneAround(coord, c)
	default:
		return Cell(coord)
	}
}

// Selection is the selection state of one pane. The zero value is an empty
// selection.
//
// The anchor is kept apart from the range so that extending in another
// direction can recompute the opposite edge without losing where the
// selection began.
type Selection struct {
	// WordBoundary is the set of characters that end a word.
	WordBoundary string

	start *Coord
	rng   *Range
	mode  Mode
}

// Begin starts a selection at coord. A cell selection only records the
// anchor; the other modes resolve the unit around coord immediately and
// anchor at its snapped start.
func (s *Selection) Begin(mode Mode, coord Coord, c Content) {
	s.mode = mode
	if mode == ModeCell {
		s.start = &coord
		s.rng = nil
		return
	}
	r := Unit(mode, coord, c, s.WordBoundary)
	start := r.Start
	s.start = &start
	s.rng = &r
}

// Extend moves the active end of the selection to coord.
func (s *Selection) Extend(mode Mode, coord Coord, c Content) {
	s.mode = mode

	if mode == ModeCell {
		var r Range
		switch {
		case s.start != nil:
			r = Cell(*s.start).Extend(coord)
		case s.rng != nil:
			r = s.rng.Extend(coord)
		default:
			anchor := coord
			s.start = &anchor
			r = Cell(anchor)
		}
		s.rng = &r
		return
	}

	endUnit := Unit(mode, coord, c, s.WordBoundary)
	anchor := endUnit.Start
	if s.start != nil {
		anchor = *s.start
	} else {
		s.start = &anchor
	}
	startUnit := Unit(mode, anchor, c, s.WordBoundary)
	r := startUnit.ExtendWith(endUnit)
	s.rng = &r
}

// Clear drops the selection.
func (s *Selection) Clear() {
	s.start = nil
	s.rng = nil
}

// Mode returns the mode of the most recent Begin or Extend.
func (s *Selection) Mode() Mode {
	return s.mode
}

// Anchor returns the anchor coordinate, if any.
func (s *Selection) Anchor() (Coord, bool) {
	if s.start == nil {
		return Coord{}, false
	}
	return *s.start, true
}

// Range returns the normalized selected range, if any.
func (s *Selection) Range() (Range, bool) {
	if s.rng == nil {
		return Range{}, false
	}
	return s.rng.Normalize(), true
}

// IsEmpty reports whether nothing is selected.
func (s *Selection) IsEmpty() bool {
	return s.rng == nil
}

// IntersectsRows reports whether any of rows falls within the selection.
func (s *Selection) IntersectsRows(rows []mux.StableRowIndex) bool {
	if s.rng == nil {
		return false
	}
	for _, row := range rows {
		if s.rng.ContainsRow(row) {
			return true
		}
	}
	return false
}

// Text returns the selected text. Rows joined by a soft wrap are
// concatenated; other rows are separated by a newline. Trailing whitespace
// is trimmed from every row.
func (s *Selection) Text(c Content) string {
	r, ok := s.Range()
	if !ok {
		return ""
	}
	return Text(r, c)
}

// Text serializes r against c.
func Text(r Range, c Content) string {
	first, last := r.Rows()
	firstRow, lines := c.Lines(first, last+1)

	var b strings.Builder
	lastWasWrapped := false
	for i, ln := range lines {
		row := firstRow + mux.StableRowIndex(i)
		cols := r.ColsForRow(row)
		if cols.Empty() {
			continue
		}
		if b.Len() > 0 && !lastWasWrapped {
			b.WriteByte('\n')
		}
		b.WriteString(strings.TrimRight(ln.ColumnsAsString(cols.Start, cols.End), " \t"))
		lastWasWrapped = softWrapped(ln)
	}
	return b.String()
}

func softWrapped(ln mux.Line) bool {
	if len(ln.Cells) == 0 {
		return false
	}
	last := ln.Cells[len(ln.Cells)-1]
	return last.Wrapped && last.Text != " "
}
