package termwindow

import (
	"github.com/tbung/wezterm/internal/clipboard"
	"github.com/tbung/wezterm/internal/mux"
	"github.com/tbung/wezterm/internal/selection"
	"github.com/tbung/wezterm/internal/viewport"
)

// Selection returns the selected range of pane id.
func (tw *TermWindow) Selection(id mux.PaneID) (selection.Range, bool) {
	st, ok := tw.panes[id]
	if !ok {
		return selection.Range{}, false
	}
	return st.selection.Range()
}

// SelectTextAt starts a selection in the active pane at coord.
func (tw *TermWindow) SelectTextAt(mode selection.Mode, coord selection.Coord) {
	view, key, ok := tw.activeView()
	if !ok {
		return
	}
	tw.paneState(key).selection.Begin(mode, coord, view)
	tw.invalidate()
}

// ExtendSelectionAt extends the active pane's selection to coord and
// scrolls so that coord stays clear of the viewport edges.
func (tw *TermWindow) ExtendSelectionAt(mode selection.Mode, coord selection.Coord) {
	view, key, ok := tw.activeView()
	if !ok {
		return
	}
	st := tw.paneState(key)
	st.selection.Extend(mode, coord, view)

	dims := view.Dimensions()
	if next, ok := viewport.AutoScroll(st.viewport, dims, coord.Y); ok {
		tw.setViewport(key, next, dims)
	}
	tw.invalidate()
}

// ClearSelection drops the active pane's selection.
func (tw *TermWindow) ClearSelection() {
	_, key, ok := tw.activeView()
	if !ok {
		return
	}
	st := tw.paneState(key)
	if st.selection.IsEmpty() {
		return
	}
	st.selection.Clear()
	tw.invalidate()
}

// SelectionText returns the text selected in the active pane.
func (tw *TermWindow) SelectionText() string {
	view, key, ok := tw.activeView()
	if !ok {
		return ""
	}
	st, ok := tw.panes[key]
	if !ok {
		return ""
	}
	return st.selection.Text(view)
}

// CompleteSelection copies the selection to dest, typically the primary
// selection once a mouse drag ends.
func (tw *TermWindow) CompleteSelection(dest clipboard.Destination) {
	if text := tw.SelectionText(); text != "" {
		tw.copyText(dest, text)
	}
}
