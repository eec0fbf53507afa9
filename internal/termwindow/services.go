package termwindow

import (
	"github.com/tbung/wezterm/internal/config"
	"github.com/tbung/wezterm/internal/geometry"
	"github.com/tbung/wezterm/internal/mux"
)

// WindowOps is the window-system side of a window.
type WindowOps interface {
	// Invalidate requests a repaint.
	Invalidate()
	SetTitle(title string)
	// SetInnerSize asks the window system to resize the window. The
	// resize arrives later through TermWindow.Resize.
	SetInnerSize(width, height int)
	SetTextCursorPosition(rect geometry.Rect)
	Show()
	Hide()
	ToggleFullscreen()
	ConfigDidChange(cfg *config.Config)
	Close()
}

// RenderState is the render surface of a window.
type RenderState interface {
	AdviseOfWindowSizeChange(cell geometry.CellSize, pixelWidth, pixelHeight int) error
	// ClearShapeCache drops glyph shaping results after a font change.
	ClearShapeCache()
}

// RenderStateFactory builds the render surface for a freshly created
// window.
type RenderStateFactory func(ops WindowOps) (RenderState, error)

// Connection is the window system connection.
type Connection interface {
	NewWindow(class string, width, height int, tw *TermWindow) (WindowOps, error)
	HideApplication()
	TerminateMessageLoop()
}

// FontConfig computes cell metrics for the window's fonts.
type FontConfig interface {
	FontScale() float64
	// ChangeScaling applies a new scale and DPI and returns the previous
	// pair.
	ChangeScaling(fontScale float64, dpi int) (float64, int)
	Metrics() (geometry.CellSize, error)
	ConfigChanged(cfg *config.Config)
}

// Spawner starts new tabs in a multiplexer window.
type Spawner interface {
	SpawnTab(window mux.WindowID, args []string) error
}

type dirtyClearer interface {
	ClearDirty()
}
