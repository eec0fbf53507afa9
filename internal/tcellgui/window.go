package tcellgui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/tbung/wezterm/internal/config"
	"github.com/tbung/wezterm/internal/geometry"
	"github.com/tbung/wezterm/internal/mux"
	"github.com/tbung/wezterm/internal/termwindow"
)

var (
	// ErrCellSize is returned when asked to render cells larger than one
	// screen cell.
	ErrCellSize = errors.New("tcell surfaces draw one screen cell per terminal cell")
	// ErrForeignWindow is returned when a render state is requested for a
	// window this package did not create.
	ErrForeignWindow = errors.New("window was not created by tcellgui")
)

// Window is a terminal window drawn onto the whole host screen. It is both
// the window system window and its render surface.
type Window struct {
	conn   *Connection
	screen tcell.Screen
	tw     *termwindow.TermWindow
	logger *log.Logger
	class  string

	painter painter
	dirty   bool
	hidden  bool
	closed  bool
	cursor  geometry.Rect
	mouse   mouseTracker
	paste   *strings.Builder
}

func (w *Window) Invalidate() { w.dirty = true }

func (w *Window) SetTitle(title string) { w.screen.SetTitle(title) }

func (w *Window) SetInnerSize(width, height int) {
	w.logger.Debug("host terminal cannot be resized", "width", width, "height", height)
}

func (w *Window) SetTextCursorPosition(rect geometry.Rect) { w.cursor = rect }

func (w *Window) Show() {
	w.hidden = false
	w.dirty = true
}

func (w *Window) Hide() {
	w.hidden = true
	w.screen.HideCursor()
	w.screen.Clear()
	w.screen.Show()
}

func (w *Window) ToggleFullscreen() {
	w.logger.Debug("fullscreen is not supported in a terminal")
}

func (w *Window) ConfigDidChange(cfg *config.Config) {
	w.logger.Debug("config changed", "class", cfg.WindowClass)
	w.dirty = true
}

func (w *Window) Close() {
	if w.closed {
		return
	}
	w.closed = true
	w.conn.windowClosed(w)
}

// AdviseOfWindowSizeChange accepts any size: the screen always covers the
// host terminal.
func (w *Window) AdviseOfWindowSizeChange(cell geometry.CellSize, _, _ int) error {
	if cell.Width != 1 || cell.Height != 1 {
		return fmt.Errorf("%w: %dx%d", ErrCellSize, cell.Width, cell.Height)
	}
	w.dirty = true
	return nil
}

// ClearShapeCache forces the next frame to be redrawn from scratch.
func (w *Window) ClearShapeCache() { w.screen.Sync() }

// RenderState returns the render surface of a window created by a
// Connection. Use it as the window's termwindow.RenderStateFactory.
func RenderState(ops termwindow.WindowOps) (termwindow.RenderState, error) {
	w, ok := ops.(*Window)
	if !ok {
		return nil, ErrForeignWindow
	}
	return w, nil
}

// paint redraws the window if it was invalidated.
func (w *Window) paint() {
	if !w.dirty || w.hidden || w.closed {
		return
	}
	w.dirty = false
	w.painter.paint(w.tw)
	w.tw.FramePainted()
	if w.tw.Focused() && w.tw.CursorVisible() {
		w.screen.ShowCursor(w.cursor.X, w.cursor.Y)
	} else {
		w.screen.HideCursor()
	}
	w.screen.Show()
}

// dimensions returns the screen size as window dimensions, keeping the
// window's DPI.
func (w *Window) dimensions() geometry.Dimensions {
	width, height := w.screen.Size()
	return geometry.Dimensions{
		PixelWidth:  width,
		PixelHeight: height,
		DPI:         w.tw.Geometry().Dimensions.DPI,
	}
}

// handle routes one host terminal event to the window.
func (w *Window) handle(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventResize:
		w.screen.Sync()
		w.tw.Resize(w.dimensions())
		w.dirty = true
	case *tcell.EventFocus:
		w.tw.FocusChanged(e.Focused)
	case *tcell.EventPaste:
		w.pasteMarker(e.Start())
	case *tcell.EventKey:
		w.key(e)
	case *tcell.EventMouse:
		for _, me := range w.mouse.events(e) {
			w.tw.MouseEvent(me)
		}
	}
}

func (w *Window) key(e *tcell.EventKey) {
	if w.paste != nil {
		if e.Key() == tcell.KeyRune {
			w.paste.WriteRune(e.Rune())
		} else if e.Key() == tcell.KeyEnter {
			w.paste.WriteByte('\n')
		}
		return
	}
	if w.hidden {
		w.Show()
	}
	ev, ok := keyEvent(e)
	if !ok {
		w.logger.Debug("unmapped key", "key", e.Name())
		return
	}
	w.tw.KeyEvent(ev)
}

// pasteMarker collects a bracketed paste and sends it to the active pane
// as one string once it ends.
func (w *Window) pasteMarker(start bool) {
	if start {
		w.paste = &strings.Builder{}
		return
	}
	if w.paste == nil {
		return
	}
	text := w.paste.String()
	w.paste = nil
	if text == "" {
		return
	}
	err := w.tw.PerformKeyAssignment(termwindow.KeyAssignment{Action: termwindow.ActionSendString, Arg: text})
	if err != nil {
		w.logger.Error("paste failed", "err", err)
	}
}

// activeMuxWindow reports the multiplexer window shown, for logging.
func (w *Window) activeMuxWindow() mux.WindowID { return w.tw.MuxWindowID() }
