package termwindow

import (
	"github.com/tbung/wezterm/internal/mux"
	"github.com/tbung/wezterm/internal/viewport"
)

// GetViewport returns the viewport anchor of pane id, or nil when the
// pane follows live output.
func (tw *TermWindow) GetViewport(id mux.PaneID) *mux.StableRowIndex {
	st, ok := tw.panes[id]
	if !ok {
		return nil
	}
	return st.viewport.Ptr()
}

// SetViewport moves the viewport of pane id to requested, clamped into the
// pane's scrollback. A row at or past the live screen makes the pane
// follow live output. It reports whether the viewport changed; an
// unchanged viewport neither repaints nor notifies the pane's overlay.
func (tw *TermWindow) SetViewport(id mux.PaneID, requested *mux.StableRowIndex, dims mux.Dimensions) bool {
	return tw.setViewport(id, viewport.FromPtr(requested), dims)
}

func (tw *TermWindow) setViewport(id mux.PaneID, requested viewport.Position, dims mux.Dimensions) bool {
	pos := viewport.Resolve(requested, dims)
	st := tw.paneState(id)
	if st.viewport == pos {
		return false
	}
	st.viewport = pos
	if aware, ok := st.overlay.(mux.ViewportAware); ok {
		aware.ViewportChanged(pos.Ptr())
	}
	tw.invalidate()
	return true
}

// ScrollToBottom makes the active pane follow live output.
func (tw *TermWindow) ScrollToBottom() {
	view, key, ok := tw.activeView()
	if !ok {
		return
	}
	tw.setViewport(key, viewport.Live(), view.Dimensions())
}

// ScrollByLine scrolls the active pane by n rows; negative n scrolls back.
func (tw *TermWindow) ScrollByLine(n int) {
	view, key, ok := tw.activeView()
	if !ok {
		return
	}
	dims := view.Dimensions()
	tw.setViewport(key, viewport.ByLines(tw.paneState(key).viewport, dims, n), dims)
}

// ScrollByPage scrolls the active pane by n screens.
func (tw *TermWindow) ScrollByPage(n int) {
	view, key, ok := tw.activeView()
	if !ok {
		return
	}
	dims := view.Dimensions()
	tw.setViewport(key, viewport.ByPages(tw.paneState(key).viewport, dims, n), dims)
}

// ScrollToPrompt jumps n prompts away from the top of the active pane's
// viewport. Nothing happens when there is no prompt there.
func (tw *TermWindow) ScrollToPrompt(n int) {
	view, key, ok := tw.activeView()
	if !ok {
		return
	}
	zones, err := view.SemanticZones()
	if err != nil {
		tw.logger.Debug("semantic zones unavailable", "pane", uint64(key), "err", err)
		return
	}
	dims := view.Dimensions()
	top := tw.paneState(key).viewport.Top(dims)
	if row, ok := viewport.PromptTarget(zones, top, n); ok {
		tw.setViewport(key, viewport.At(row), dims)
	}
}
