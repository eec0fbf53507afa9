package termwindow

import (
	"bytes"
	"os"

	"github.com/tbung/wezterm/internal/config"
	"github.com/tbung/wezterm/internal/scripting"
)

// BackgroundImage is the window background as loaded from disk.
type BackgroundImage struct {
	Path string
	Data []byte
}

// BackgroundImage returns the loaded background image, if any.
func (tw *TermWindow) BackgroundImage() (*BackgroundImage, bool) {
	return tw.background, tw.background != nil
}

// ConfigOverrides returns the window's override document.
func (tw *TermWindow) ConfigOverrides() string {
	return tw.overrides
}

// SetConfigOverrides replaces the window's override document and
// reconfigures the window. An invalid document is rejected and the current
// overrides stay in effect.
func (tw *TermWindow) SetConfigOverrides(doc string) error {
	if doc == tw.overrides {
		return nil
	}
	if _, err := config.ApplyOverrides(tw.store.Current().Config, doc); err != nil {
		return opError("set config overrides", err)
	}
	tw.overrides = doc
	tw.ConfigWasReloaded()
	return nil
}

// ConfigWasReloaded reconfigures the window from the store's current
// configuration: overrides, palette, background image, bars, key bindings
// and fonts, then refits the geometry at the current window size.
func (tw *TermWindow) ConfigWasReloaded() {
	tw.applyConfig(tw.store.Current())
	if w, ok := tw.muxWindowState(); ok {
		tw.showTabBar = tw.cfg.ShowTabBar(w.Len())
	}

	tw.fonts.ConfigChanged(tw.cfg)
	dims := tw.geom.Dimensions
	cells := tw.geom.Cells()
	if undo, ok := tw.applyScaleChange(dims, tw.fonts.FontScale()); ok {
		if !tw.applyDimensions(dims, &cells) {
			undo()
		}
	}

	if tw.window != nil {
		tw.window.ConfigDidChange(tw.cfg)
	}
	tw.UpdateTitle()
	tw.invalidate()
	tw.emit(scripting.EventWindowConfigReloaded)
}

// applyConfig derives the effective configuration from handle and the
// window's overrides along with everything that depends on it alone.
func (tw *TermWindow) applyConfig(handle config.Handle) {
	cfg, err := config.ApplyOverrides(handle.Config, tw.overrides)
	if err != nil {
		tw.logger.Error("ignoring config overrides", "err", err)
		cfg = handle.Config
	}
	tw.configHandle = handle
	tw.cfg = cfg
	tw.palette = cfg.Palette()
	tw.showScrollBar = cfg.EnableScrollBar
	tw.inputMap = buildInputMap(cfg, tw.logger)
	tw.loadBackgroundImage()
	for _, st := range tw.panes {
		st.selection.WordBoundary = cfg.SelectionWordBoundary
	}
	tw.scrollbarSeen = false
}

func (tw *TermWindow) loadBackgroundImage() {
	path := tw.cfg.WindowBackgroundImage
	if path == "" {
		tw.background = nil
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		tw.logger.Error("cannot load background image", "path", path, "err", err)
		tw.background = nil
		return
	}
	if prev := tw.background; prev != nil && prev.Path == path && bytes.Equal(prev.Data, data) {
		return
	}
	tw.background = &BackgroundImage{Path: path, Data: data}
}

// emit runs the script handlers for event and reports whether the default
// action should proceed. Handler errors are logged and the default
// proceeds.
func (tw *TermWindow) emit(event string, args ...any) bool {
	if tw.scripts == nil {
		return true
	}
	proceed, err := tw.scripts.Emit(event, tw.luaWindow(), args...)
	if err != nil {
		tw.logger.Error("event handler failed", "event", event, "err", err)
	}
	return proceed
}

func (tw *TermWindow) luaWindow() scripting.Window {
	return scriptWindow{tw: tw}
}

// scriptWindow is the window as seen by event handlers. Handlers run on
// the window goroutine, so reads go straight to the window; writes are
// posted so that a handler never reconfigures the window underneath the
// caller that emitted the event.
type scriptWindow struct {
	tw *TermWindow
}

func (w scriptWindow) WindowID() uint64 {
	return uint64(w.tw.muxWindow)
}

func (w scriptWindow) ActivePaneTitle() string {
	pane, ok := w.tw.ActivePaneOrOverlay()
	if !ok {
		return ""
	}
	return pane.Title()
}

func (w scriptWindow) Dimensions() (int, int, int) {
	d := w.tw.geom.Dimensions
	return d.PixelWidth, d.PixelHeight, d.DPI
}

func (w scriptWindow) ConfigOverrides() string {
	return w.tw.overrides
}

func (w scriptWindow) SetConfigOverrides(doc string) error {
	tw := w.tw
	if _, err := config.ApplyOverrides(tw.store.Current().Config, doc); err != nil {
		return err
	}
	return tw.post(func(tw *TermWindow) {
		if err := tw.SetConfigOverrides(doc); err != nil {
			tw.logger.Error("set config overrides", "err", err)
		}
	})
}
