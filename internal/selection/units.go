package selection

import (
	"strings"

	"github.com/tbung/wezterm/internal/mux"
)

// Content is the part of a pane the selection engine reads.
type Content interface {
	Lines(start, end mux.StableRowIndex) (mux.StableRowIndex, []mux.Line)
	SemanticZones() ([]mux.SemanticZone, error)
}

// DefaultWordBoundary is used when no boundary set is configured.
const DefaultWordBoundary = " \t\n{}[]()\"'`"

func line(c Content, row mux.StableRowIndex) (mux.Line, bool) {
	first, lines := c.Lines(row, row+1)
	if len(lines) == 0 || first != row {
		return mux.Line{}, false
	}
	return lines[0], true
}

func isBoundary(cell mux.Cell, boundary string) bool {
	text := cell.Text
	if text == "" {
		text = " "
	}
	return strings.ContainsAny(text, boundary)
}

// WordAround returns the word containing coord. A word continues across
// soft wraps in both directions. A boundary character or a position past
// the end of the row selects just that cell.
func WordAround(coord Coord, c Content, boundary string) Range {
	if boundary == "" {
		boundary = DefaultWordBoundary
	}
	ln, ok := line(c, coord.Y)
	if !ok || coord.X < 0 || coord.X >= len(ln.Cells) || isBoundary(ln.Cells[coord.X], boundary) {
		return Cell(coord)
	}

	start, first := coord, ln
	for {
		for start.X > 0 && !isBoundary(first.Cells[start.X-1], boundary) {
			start.X--
		}
		if start.X != 0 {
			break
		}
		prev, ok := line(c, start.Y-1)
		if !ok || !prev.IsWrapped() || isBoundary(prev.Cells[len(prev.Cells)-1], boundary) {
			break
		}
		first = prev
		start = Coord{X: len(prev.Cells) - 1, Y: start.Y - 1}
	}

	end := coord
	for {
		for end.X+1 < len(ln.Cells) && !isBoundary(ln.Cells[end.X+1], boundary) {
			end.X++
		}
		if end.X != len(ln.Cells)-1 || !ln.IsWrapped() {
			break
		}
		next, ok := line(c, end.Y+1)
		if !ok || len(next.Cells) == 0 || isBoundary(next.Cells[0], boundary) {
			break
		}
		ln = next
		end = Coord{X: 0, Y: end.Y + 1}
	}

	return Range{Start: start, End: end}
}

// LineAround returns the logical line containing coord: the run of rows
// joined by soft wraps.
func LineAround(coord Coord, c Content) Range {
	start := coord.Y
	for {
		prev, ok := line(c, start-1)
		if !ok || !prev.IsWrapped() {
			break
		}
		start--
	}

	end := coord.Y
	last, ok := line(c, end)
	for ok && last.IsWrapped() {
		next, more := line(c, end+1)
		if !more {
			break
		}
		end++
		last = next
	}

	endX := len(last.Cells) - 1
	if endX < 0 {
		endX = 0
	}
	return Range{
		Start: Coord{X: 0, Y: start},
		End:   Coord{X: endX, Y: end},
	}
}

// ZoneAround returns the semantic zone containing coord, or the single cell
// when no zone contains it.
func ZoneAround(coord Coord, c Content) Range {
	zones, err := c.SemanticZones()
	if err != nil {
		return Cell(coord)
	}
	for _, z := range zones {
		if z.Contains(coord.X, coord.Y) {
			return Range{
				Start: Coord{X: z.StartX, Y: z.StartY},
				End:   Coord{X: z.EndX, Y: z.EndY},
			}
		}
	}
	return Cell(coord)
}
