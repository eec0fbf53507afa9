package mux

import "strings"

// CursorShape is the shape requested by the terminal for its cursor.
type CursorShape uint8

const (
	// CursorDefault defers to the configured default cursor style.
	CursorDefault CursorShape = iota
	CursorBlinkingBlock
	CursorSteadyBlock
	CursorBlinkingUnderline
	CursorSteadyUnderline
	CursorBlinkingBar
	CursorSteadyBar
)

var cursorShapeNames = map[CursorShape]string{
	CursorDefault:           "Default",
	CursorBlinkingBlock:     "BlinkingBlock",
	CursorSteadyBlock:       "SteadyBlock",
	CursorBlinkingUnderline: "BlinkingUnderline",
	CursorSteadyUnderline:   "SteadyUnderline",
	CursorBlinkingBar:       "BlinkingBar",
	CursorSteadyBar:         "SteadyBar",
}

// String returns the shape name.
func (s CursorShape) String() string {
	if name, ok := cursorShapeNames[s]; ok {
		return name
	}
	return "Default"
}

// IsBlinking reports whether the shape is one of the blinking variants.
func (s CursorShape) IsBlinking() bool {
	switch s {
	case CursorBlinkingBlock, CursorBlinkingUnderline, CursorBlinkingBar:
		return true
	default:
		return false
	}
}

// Effective resolves CursorDefault to fallback.
func (s CursorShape) Effective(fallback CursorShape) CursorShape {
	if s == CursorDefault {
		return fallback
	}
	return s
}

// ParseCursorShape parses a shape name. Unknown names yield false.
func ParseCursorShape(name string) (CursorShape, bool) {
	for shape, n := range cursorShapeNames {
		if strings.EqualFold(n, name) {
			return shape, true
		}
	}
	return CursorDefault, false
}

// CursorPosition is the cursor location in stable row coordinates.
type CursorPosition struct {
	X     int
	Y     StableRowIndex
	Shape CursorShape
}

// SemanticType tags a region of terminal output.
type SemanticType uint8

const (
	SemanticOutput SemanticType = iota
	SemanticInput
	SemanticPrompt
)

// String returns the semantic type name.
func (t SemanticType) String() string {
	switch t {
	case SemanticInput:
		return "Input"
	case SemanticPrompt:
		return "Prompt"
	default:
		return "Output"
	}
}

// SemanticZone is an inclusive region of the screen with a semantic tag.
type SemanticZone struct {
	StartY StableRowIndex
	StartX int
	EndY   StableRowIndex
	EndX   int
	Type   SemanticType
}

// Contains reports whether the cell (x, y) lies within the zone.
func (z SemanticZone) Contains(x int, y StableRowIndex) bool {
	if y < z.StartY || y > z.EndY {
		return false
	}
	if y == z.StartY && x < z.StartX {
		return false
	}
	if y == z.EndY && x > z.EndX {
		return false
	}
	return true
}

// Cell is a single terminal cell.
type Cell struct {
	// Text is the grapheme rendered in the cell.
	Text string
	// Wrapped is set on the last cell of a row that soft-wraps onto the
	// next row.
	Wrapped bool
}

// Line is one physical row of cells.
type Line struct {
	Cells []Cell
}

// NewLine builds a line with one cell per rune of s.
func NewLine(s string) Line {
	cells := make([]Cell, 0, len(s))
	for _, r := range s {
		cells = append(cells, Cell{Text: string(r)})
	}
	return Line{Cells: cells}
}

// ColumnsAsString returns the text of the cells in [start, end). The range
// is clamped to the line.
func (l Line) ColumnsAsString(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(l.Cells) {
		end = len(l.Cells)
	}
	if start >= end {
		return ""
	}
	var b strings.Builder
	for _, c := range l.Cells[start:end] {
		if c.Text == "" {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(c.Text)
	}
	return b.String()
}

// String returns the whole line as text.
func (l Line) String() string {
	return l.ColumnsAsString(0, len(l.Cells))
}

// IsWrapped reports whether the line soft-wraps onto the next row.
func (l Line) IsWrapped() bool {
	return len(l.Cells) > 0 && l.Cells[len(l.Cells)-1].Wrapped
}
