// Package selection tracks the text selection of a pane and resolves it
// against the pane's content.
package selection

import (
	"math"

	"github.com/tbung/wezterm/internal/mux"
)

// Coord is a cell position. Y is a stable row so a selection survives
// scrollback growth.
type Coord struct {
	X int
	Y mux.StableRowIndex
}

// Less orders coordinates top-to-bottom, then left-to-right.
func (c Coord) Less(o Coord) bool {
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}

func minCoord(a, b Coord) Coord {
	if b.Less(a) {
		return b
	}
	return a
}

func maxCoord(a, b Coord) Coord {
	if a.Less(b) {
		return b
	}
	return a
}

// Range is a selected span. Start and End are in the order the user made
// them; Normalize orders them.
type Range struct {
	Start Coord
	End   Coord
}

// Cell returns the range covering the single cell at c.
func Cell(c Coord) Range {
	return Range{Start: c, End: c}
}

// Normalize returns the range with Start not after End.
func (r Range) Normalize() Range {
	if r.End.Less(r.Start) {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

// Extend returns the range from r's start to end. Start stays the anchor;
// readers normalize, so the direction of the drag does not matter.
func (r Range) Extend(end Coord) Range {
	return Range{Start: r.Start, End: end}
}

// ExtendWith returns the smallest range covering both r and other. Neither
// range is assumed to be normalized.
func (r Range) ExtendWith(other Range) Range {
	a := r.Normalize()
	b := other.Normalize()
	return Range{
		Start: minCoord(a.Start, b.Start),
		End:   maxCoord(a.End, b.End),
	}
}

// Rows returns the first and last rows of the normalized range.
func (r Range) Rows() (first, last mux.StableRowIndex) {
	n := r.Normalize()
	return n.Start.Y, n.End.Y
}

// ContainsRow reports whether row lies within the range.
func (r Range) ContainsRow(row mux.StableRowIndex) bool {
	first, last := r.Rows()
	return row >= first && row <= last
}

// Columns is a half-open column span.
type Columns struct {
	Start int
	End   int
}

// Empty reports whether the span covers no column.
func (c Columns) Empty() bool {
	return c.End <= c.Start
}

// Contains reports whether x is within the span.
func (c Columns) Contains(x int) bool {
	return x >= c.Start && x < c.End
}

// ColsForRow returns the columns selected on row. The end column of the
// range is inclusive; rows that continue past the range's edge are open
// ended.
func (r Range) ColsForRow(row mux.StableRowIndex) Columns {
	n := r.Normalize()
	switch {
	case row < n.Start.Y || row > n.End.Y:
		return Columns{}
	case n.Start.Y == n.End.Y:
		return Columns{Start: n.Start.X, End: n.End.X + 1}
	case row == n.Start.Y:
		return Columns{Start: n.Start.X, End: math.MaxInt}
	case row == n.End.Y:
		return Columns{Start: 0, End: n.End.X + 1}
	default:
		return Columns{Start: 0, End: math.MaxInt}
	}
}
