// Package mux defines the multiplexer-side abstractions consumed by the
// terminal window: panes, tabs, windows and the multiplexer itself.
//
// The window never owns pane or tab lifecycles. It queries content through
// these interfaces and asks the multiplexer to release panes it no longer
// displays.
package mux

// PaneID identifies a pane. Overlay panes draw their ids from the same space
// as real panes.
type PaneID uint64

// TabID identifies a tab.
type TabID uint64

// WindowID identifies a multiplexer window.
type WindowID uint64

// StableRowIndex identifies a row independently of scrollback growth and
// trimming. Viewport positions and selection bounds use it.
type StableRowIndex int64

// Size is the terminal size of a tab or pane, in cells and pixels.
type Size struct {
	Rows        int
	Cols        int
	PixelWidth  int
	PixelHeight int
}

// Dimensions describes the scrollback geometry of a pane.
type Dimensions struct {
	// Cols is the width of the pane in cells.
	Cols int
	// ViewportRows is the number of rows visible at once.
	ViewportRows int
	// ScrollbackRows is the total number of rows, including the viewport.
	ScrollbackRows int
	// PhysicalTop is the stable index of the top row of the live screen.
	PhysicalTop StableRowIndex
	// ScrollbackTop is the stable index of the oldest retained row.
	ScrollbackTop StableRowIndex
}

// PositionedPane is a pane placed within a tab's layout.
type PositionedPane struct {
	Index       int
	IsActive    bool
	IsZoomed    bool
	Left        int
	Top         int
	Width       int
	Height      int
	PixelWidth  int
	PixelHeight int
	Pane        Pane
}

// SplitDirection is the orientation of a split between panes.
type SplitDirection uint8

const (
	SplitHorizontal SplitDirection = iota
	SplitVertical
)

// PositionedSplit is a divider between two panes.
type PositionedSplit struct {
	Index     int
	Direction SplitDirection
	Left      int
	Top       int
	Size      int
}

// Direction is used for directional pane navigation and resizing.
type Direction uint8

const (
	DirectionLeft Direction = iota
	DirectionRight
	DirectionUp
	DirectionDown
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionLeft:
		return "Left"
	case DirectionRight:
		return "Right"
	case DirectionUp:
		return "Up"
	case DirectionDown:
		return "Down"
	default:
		return "Unknown"
	}
}

// ParseDirection parses a direction name. Unknown names yield false.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "Left", "left":
		return DirectionLeft, true
	case "Right", "right":
		return DirectionRight, true
	case "Up", "up":
		return DirectionUp, true
	case "Down", "down":
		return DirectionDown, true
	default:
		return DirectionLeft, false
	}
}

// EraseMode selects what ClearScrollback removes.
type EraseMode uint8

const (
	// EraseScrollbackOnly keeps the visible screen.
	EraseScrollbackOnly EraseMode = iota
	// EraseScrollbackAndViewport clears everything.
	EraseScrollbackAndViewport
)

// Pane is a single terminal content surface. Real sessions and overlays both
// implement it; the window never needs to know which one it holds.
type Pane interface {
	ID() PaneID
	Title() string
	Dimensions() Dimensions
	CursorPosition() CursorPosition

	// Lines returns the rows in [start, end) that exist, along with the
	// stable index of the first returned row.
	Lines(start, end StableRowIndex) (StableRowIndex, []Line)

	// DirtyLines returns the rows in [start, end) whose content changed
	// since they were last rendered.
	DirtyLines(start, end StableRowIndex) []StableRowIndex

	// SemanticZones returns the pane's tagged output regions ordered by
	// start row.
	SemanticZones() ([]SemanticZone, error)

	// KeyDown routes a key press to the pane.
	KeyDown(ev KeyEvent) error
	// SendString writes text to the pane as if typed or pasted.
	SendString(s string) error

	FocusChanged(focused bool)
	CanCloseWithoutPrompting() bool
	EraseScrollback(mode EraseMode)
}

// ViewportAware is implemented by overlays that track the viewport of the
// pane they cover, such as search and copy mode.
type ViewportAware interface {
	ViewportChanged(viewport *StableRowIndex)
}

// Tab is a layout of one or more panes.
type Tab interface {
	ID() TabID
	Size() Size
	Resize(size Size)
	ActivePane() Pane
	Panes() []PositionedPane
	Splits() []PositionedSplit
	CountPanes() int
	KillPane(id PaneID)
	CanCloseWithoutPrompting() bool
	AdjustPaneSize(dir Direction, amount int)
	ActivatePaneDirection(dir Direction)
	ToggleZoom()
}

// Window is an ordered collection of tabs with one active tab.
type Window interface {
	ID() WindowID
	Len() int
	ActiveIndex() int
	SetActive(idx int)
	Tabs() []Tab
	Insert(idx int, tab Tab)
	RemoveByIndex(idx int) Tab
	CanCloseWithoutPrompting() bool

	// CheckAndResetInvalidated reports whether something invalidated the
	// window since the last call, clearing the flag.
	CheckAndResetInvalidated() bool
}

// Mux owns windows, tabs and panes.
type Mux interface {
	Window(id WindowID) (Window, bool)
	ActiveTab(id WindowID) (Tab, bool)
	AllocPaneID() PaneID
	RemovePane(id PaneID)
	RemoveTab(id TabID)
	KillWindow(id WindowID)
}
