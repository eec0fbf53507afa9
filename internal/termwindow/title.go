package termwindow

import (
	"fmt"
	"slices"

	"github.com/mattn/go-runewidth"

	"github.com/tbung/wezterm/internal/geometry"
	"github.com/tbung/wezterm/internal/mux"
	"github.com/tbung/wezterm/internal/scripting"
	"github.com/tbung/wezterm/internal/viewport"
)

// tabTitleWidth is the most cells a tab title takes in the tab bar.
const tabTitleWidth = 20

// TabBarItem is one tab as shown in the tab bar.
type TabBarItem struct {
	Title  string
	Active bool
}

// TabBar returns the tab bar contents.
func (tw *TermWindow) TabBar() []TabBarItem {
	return tw.tabBar
}

// UpdateTitle recomputes the window title and the tab bar. When the tab
// count makes the tab bar appear or disappear, the geometry is refitted.
func (tw *TermWindow) UpdateTitle() {
	if !tw.refreshTitle() {
		return
	}
	cells := tw.geom.Cells()
	tw.applyDimensions(tw.geom.Dimensions, &cells)
}

// refreshTitle pushes the title and tab bar and reports whether tab bar
// visibility flipped.
func (tw *TermWindow) refreshTitle() bool {
	w, ok := tw.muxWindowState()
	if !ok {
		return false
	}
	view, ok := tw.ActivePaneOrOverlay()
	if !ok {
		return false
	}
	tabs := w.Tabs()

	items := tw.tabBarItems(tabs, w.ActiveIndex())
	if !slices.Equal(items, tw.tabBar) {
		tw.tabBar = items
		tw.invalidate()
	}

	title := view.Title()
	if tab, ok := tw.activeTab(); ok && isZoomed(tab) {
		title = "[Z] " + title
	}
	if len(tabs) > 1 {
		title = fmt.Sprintf("[%d/%d] %s", w.ActiveIndex()+1, len(tabs), title)
	}
	if tw.scripts != nil && tw.scripts.HasHandlers(scripting.EventFormatWindowTitle) {
		formatted, ok, err := tw.scripts.EmitString(scripting.EventFormatWindowTitle, tw.luaWindow(), title)
		switch {
		case err != nil:
			tw.logger.Error("format-window-title failed", "err", err)
		case ok:
			title = formatted
		}
	}
	tw.title = title
	if tw.window != nil {
		tw.window.SetTitle(title)
	}

	show := tw.cfg.ShowTabBar(len(tabs))
	if show == tw.showTabBar {
		return false
	}
	tw.showTabBar = show
	return true
}

func (tw *TermWindow) tabBarItems(tabs []mux.Tab, active int) []TabBarItem {
	items := make([]TabBarItem, len(tabs))
	for i, tab := range tabs {
		var title string
		if ov, ok := tw.TabOverlay(tab.ID()); ok {
			title = ov.Title()
		} else if pane := tab.ActivePane(); pane != nil {
			if ov, ok := tw.PaneOverlay(pane.ID()); ok {
				title = ov.Title()
			} else {
				title = pane.Title()
			}
		}
		items[i] = TabBarItem{
			Title:  runewidth.Truncate(fmt.Sprintf(" %d: %s ", i+1, title), tabTitleWidth, "… "),
			Active: i == active,
		}
	}
	return items
}

// TabAtColumn returns the index of the tab bar item covering column x.
func (tw *TermWindow) TabAtColumn(x int) (int, bool) {
	left := 0
	for i, item := range tw.tabBar {
		width := runewidth.StringWidth(item.Title)
		if x >= left && x < left+width {
			return i, true
		}
		left += width
	}
	return 0, false
}

func isZoomed(tab mux.Tab) bool {
	for _, pos := range tab.Panes() {
		if pos.IsZoomed {
			return true
		}
	}
	return false
}

// refreshScrollbar reports whether the active pane's scrollback changed
// since the scroll bar was last drawn.
func (tw *TermWindow) refreshScrollbar() bool {
	if !tw.showScrollBar {
		return false
	}
	view, ok := tw.ActivePaneOrOverlay()
	if !ok {
		return false
	}
	dims := view.Dimensions()
	if tw.scrollbarSeen && dims == tw.scrollbarDims {
		return false
	}
	tw.scrollbarSeen = true
	tw.scrollbarDims = dims
	return true
}

// UpdateTextCursor tells the window system where the active pane's text
// cursor is, for input method placement.
func (tw *TermWindow) UpdateTextCursor() {
	if tw.window == nil {
		return
	}
	view, key, ok := tw.activeView()
	if !ok {
		return
	}
	dims := view.Dimensions()
	top := tw.viewportTop(key, dims)
	cur := view.CursorPosition()
	rect := geometry.CursorRect(cur.X, int(cur.Y-top), tw.geom.Cell, tw.cfg.Padding(), tw.showTabBar)
	tw.window.SetTextCursorPosition(rect)
}

// viewportTop returns the top visible row of the pane kept under key.
func (tw *TermWindow) viewportTop(key mux.PaneID, dims mux.Dimensions) mux.StableRowIndex {
	st, ok := tw.panes[key]
	if !ok {
		return viewport.Live().Top(dims)
	}
	return st.viewport.Top(dims)
}
