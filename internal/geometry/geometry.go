// Package geometry maps between window pixel dimensions and terminal
// rows/cols given cell metrics, padding, DPI and tab bar visibility.
//
// Everything here is a pure function of its inputs.
package geometry

import "github.com/tbung/wezterm/internal/mux"

// DefaultDPI is the DPI assumed when neither the platform nor the
// configuration provides one.
const DefaultDPI = 96

// MinFontHeight is the smallest theoretical font height, in physical
// pixels, that a scale change may produce.
const MinFontHeight = 2.0

// Dimensions is the pixel size and DPI of a window.
type Dimensions struct {
	PixelWidth  int
	PixelHeight int
	DPI         int
}

// IsZero reports whether either pixel extent is zero, which some platforms
// report while a window is minimised.
func (d Dimensions) IsZero() bool {
	return d.PixelWidth == 0 || d.PixelHeight == 0
}

// CellSize is the pixel size of one terminal cell.
type CellSize struct {
	Width  int
	Height int
}

func (c CellSize) sanitized() CellSize {
	if c.Width < 1 {
		c.Width = 1
	}
	if c.Height < 1 {
		c.Height = 1
	}
	return c
}

// Padding is the window padding in pixels.
type Padding struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// RowsAndCols is a terminal size in cells.
type RowsAndCols struct {
	Rows int
	Cols int
}

// Snapshot is the full geometry of a window. It is replaced as a unit.
type Snapshot struct {
	Dimensions Dimensions
	Terminal   mux.Size
	Cell       CellSize
}

// Cells returns the terminal rows and cols of the snapshot.
func (s Snapshot) Cells() RowsAndCols {
	return RowsAndCols{Rows: s.Terminal.Rows, Cols: s.Terminal.Cols}
}

// Layout holds the inputs that decide how much of the window the terminal
// cells may use.
type Layout struct {
	Padding   Padding
	ScrollBar bool
	TabBar    bool
}

// EffectiveRightPadding returns the right padding to apply. The configured
// default is zero, but an enabled scroll bar needs room, so an unset right
// padding becomes one cell width in that case.
func EffectiveRightPadding(padding Padding, scrollBar bool, cell CellSize) int {
	if scrollBar && padding.Right == 0 {
		return cell.Width
	}
	return padding.Right
}

// RightPadding returns the effective right padding for this layout.
func (l Layout) RightPadding(cell CellSize) int {
	return EffectiveRightPadding(l.Padding, l.ScrollBar, cell)
}

func (l Layout) tabBarRows() int {
	if l.TabBar {
		return 1
	}
	return 0
}

// ScalePreserving keeps the terminal rows and cols fixed and derives the
// window pixel dimensions that fit them with the given cell size.
func (l Layout) ScalePreserving(cells RowsAndCols, cell CellSize, dpi int) (mux.Size, Dimensions) {
	cell = cell.sanitized()
	size := mux.Size{
		Rows:        cells.Rows,
		Cols:        cells.Cols,
		PixelWidth:  cells.Cols * cell.Width,
		PixelHeight: cells.Rows * cell.Height,
	}
	rows := cells.Rows + l.tabBarRows()
	dims := Dimensions{
		PixelWidth:  cells.Cols*cell.Width + l.Padding.Left + l.RightPadding(cell),
		PixelHeight: rows*cell.Height + l.Padding.Top + l.Padding.Bottom,
		DPI:         dpi,
	}
	return size, dims
}

// FromWindowSize derives the terminal size that fits in dims.
func (l Layout) FromWindowSize(dims Dimensions, cell CellSize) mux.Size {
	cell = cell.sanitized()
	availWidth := saturatingSub(dims.PixelWidth, l.Padding.Left+l.RightPadding(cell))
	availHeight := saturatingSub(dims.PixelHeight, l.Padding.Top+l.Padding.Bottom)
	return mux.Size{
		Rows:        saturatingSub(availHeight/cell.Height, l.tabBarRows()),
		Cols:        availWidth / cell.Width,
		PixelWidth:  availWidth,
		PixelHeight: availHeight,
	}
}

// TheoreticalFontHeight returns the font height in physical pixels for a
// point size at the given scale and DPI.
func TheoreticalFontHeight(fontSize, fontScale float64, dpi int) float64 {
	return fontSize * fontScale * float64(dpi) / 72.0
}

// ScaleIsReasonable reports whether a scale change keeps the font at least
// MinFontHeight pixels tall.
func ScaleIsReasonable(fontSize, fontScale float64, dpi int) bool {
	return TheoreticalFontHeight(fontSize, fontScale, dpi) >= MinFontHeight
}

// DPIScale returns dpi relative to DefaultDPI.
func DPIScale(dpi int) float64 {
	if dpi <= 0 {
		return 1.0
	}
	return float64(dpi) / DefaultDPI
}

// CursorRect returns the pixel rectangle of the text cursor. y is the
// cursor row relative to the top of the visible screen; showTabBar shifts
// it down one row.
func CursorRect(x, y int, cell CellSize, padding Padding, showTabBar bool) Rect {
	if x < 0 {
		x = 0
	}
	if showTabBar {
		y++
	}
	if y < 0 {
		y = 0
	}
	return Rect{
		X:      x*cell.Width + padding.Left,
		Y:      y*cell.Height + padding.Top,
		Width:  cell.Width,
		Height: cell.Height,
	}
}

// Rect is a pixel rectangle.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func saturatingSub(a, b int) int {
	if a < b {
		return 0
	}
	return a - b
}
