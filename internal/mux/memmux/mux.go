package memmux

import (
	"sync"
	"sync/atomic"

	"github.com/tbung/wezterm/internal/mux"
)

// Tab lays its panes out side by side, left to right, with equal widths.
type Tab struct {
	mu sync.Mutex

	id       mux.TabID
	size     mux.Size
	panes    []mux.Pane
	active   int
	zoomed   bool
	closable bool

	resizes []mux.Size
	adjusts []mux.Direction
}

// NewTab creates a tab holding the given panes.
func NewTab(id mux.TabID, size mux.Size, panes ...mux.Pane) *Tab {
	return &Tab{id: id, size: size, panes: panes, closable: true}
}

// ID implements mux.Tab.
func (t *Tab) ID() mux.TabID { return t.id }

// Size implements mux.Tab.
func (t *Tab) Size() mux.Size {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.size
}

// Resize implements mux.Tab.
func (t *Tab) Resize(size mux.Size) {
	t.mu.Lock()
	t.size = size
	t.resizes = append(t.resizes, size)
	panes := append([]mux.Pane(nil), t.panes...)
	t.mu.Unlock()

	if len(panes) == 0 {
		return
	}
	width := size.Cols / len(panes)
	for _, p := range panes {
		if bp, ok := p.(*BufferPane); ok {
			bp.Resize(width, size.Rows)
		}
	}
}

// Resizes returns every size pushed to the tab.
func (t *Tab) Resizes() []mux.Size {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]mux.Size(nil), t.resizes...)
}

// ActivePane implements mux.Tab.
func (t *Tab) ActivePane() mux.Pane {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.panes) == 0 {
		return nil
	}
	return t.panes[t.active]
}

// SetActivePane activates the pane at idx.
func (t *Tab) SetActivePane(idx int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx >= 0 && idx < len(t.panes) {
		t.active = idx
	}
}

// AddPane appends a pane to the layout.
func (t *Tab) AddPane(p mux.Pane) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.panes = append(t.panes, p)
}

// Panes implements mux.Tab.
func (t *Tab) Panes() []mux.PositionedPane {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.panes) == 0 {
		return nil
	}
	if t.zoomed {
		p := t.panes[t.active]
		return []mux.PositionedPane{{
			Index: t.active, IsActive: true, IsZoomed: true,
			Width: t.size.Cols, Height: t.size.Rows,
			PixelWidth: t.size.PixelWidth, PixelHeight: t.size.PixelHeight,
			Pane: p,
		}}
	}
	width := t.size.Cols / len(t.panes)
	out := make([]mux.PositionedPane, 0, len(t.panes))
	for i, p := range t.panes {
		out = append(out, mux.PositionedPane{
			Index:    i,
			IsActive: i == t.active,
			Left:     i * width,
			Width:    width,
			Height:   t.size.Rows,
			Pane:     p,
		})
	}
	return out
}

// Splits implements mux.Tab.
func (t *Tab) Splits() []mux.PositionedSplit {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.zoomed || len(t.panes) < 2 {
		return nil
	}
	width := t.size.Cols / len(t.panes)
	out := make([]mux.PositionedSplit, 0, len(t.panes)-1)
	for i := 1; i < len(t.panes); i++ {
		out = append(out, mux.PositionedSplit{
			Index: i - 1, Direction: mux.SplitHorizontal,
			Left: i*width - 1, Size: t.size.Rows,
		})
	}
	return out
}

// CountPanes implements mux.Tab.
func (t *Tab) CountPanes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.panes)
}

// KillPane implements mux.Tab.
func (t *Tab) KillPane(id mux.PaneID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, p := range t.panes {
		if p.ID() == id {
			t.panes = append(t.panes[:i], t.panes[i+1:]...)
			if t.active >= len(t.panes) && t.active > 0 {
				t.active--
			}
			return
		}
	}
}

// SetClosable controls CanCloseWithoutPrompting.
func (t *Tab) SetClosable(v bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closable = v
}

// CanCloseWithoutPrompting implements mux.Tab.
func (t *Tab) CanCloseWithoutPrompting() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closable
}

// AdjustPaneSize implements mux.Tab. The even layout ignores the request
// beyond recording it.
func (t *Tab) AdjustPaneSize(dir mux.Direction, _ int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.adjusts = append(t.adjusts, dir)
}

// ActivatePaneDirection implements mux.Tab.
func (t *Tab) ActivatePaneDirection(dir mux.Direction) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch dir {
	case mux.DirectionLeft:
		if t.active > 0 {
			t.active--
		}
	case mux.DirectionRight:
		if t.active < len(t.panes)-1 {
			t.active++
		}
	}
}

// ToggleZoom implements mux.Tab.
func (t *Tab) ToggleZoom() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.zoomed = !t.zoomed
}

// Window is an ordered list of tabs.
type Window struct {
	mu sync.Mutex

	id          mux.WindowID
	tabs        []mux.Tab
	active      int
	closable    bool
	invalidated atomic.Bool
}

// ID implements mux.Window.
func (w *Window) ID() mux.WindowID { return w.id }

// Len implements mux.Window.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.tabs)
}

// ActiveIndex implements mux.Window.
func (w *Window) ActiveIndex() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// SetActive implements mux.Window.
func (w *Window) SetActive(idx int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if idx >= 0 && idx < len(w.tabs) {
		w.active = idx
		w.invalidated.Store(true)
	}
}

// Tabs implements mux.Window.
func (w *Window) Tabs() []mux.Tab {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]mux.Tab(nil), w.tabs...)
}

// Push appends a tab and makes it active.
func (w *Window) Push(tab mux.Tab) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tabs = append(w.tabs, tab)
	w.active = len(w.tabs) - 1
	w.invalidated.Store(true)
}

// Insert implements mux.Window.
func (w *Window) Insert(idx int, tab mux.Tab) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if idx < 0 {
		idx = 0
	}
	if idx > len(w.tabs) {
		idx = len(w.tabs)
	}
	w.tabs = append(w.tabs, nil)
	copy(w.tabs[idx+1:], w.tabs[idx:])
	w.tabs[idx] = tab
	w.invalidated.Store(true)
}

// RemoveByIndex implements mux.Window.
func (w *Window) RemoveByIndex(idx int) mux.Tab {
	w.mu.Lock()
	defer w.mu.Unlock()
	if idx < 0 || idx >= len(w.tabs) {
		return nil
	}
	tab := w.tabs[idx]
	w.tabs = append(w.tabs[:idx], w.tabs[idx+1:]...)
	if w.active >= len(w.tabs) && w.active > 0 {
		w.active = len(w.tabs) - 1
	}
	w.invalidated.Store(true)
	return tab
}

func (w *Window) removeTab(id mux.TabID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, t := range w.tabs {
		if t.ID() == id {
			w.tabs = append(w.tabs[:i], w.tabs[i+1:]...)
			if w.active >= len(w.tabs) && w.active > 0 {
				w.active = len(w.tabs) - 1
			}
			w.invalidated.Store(true)
			return true
		}
	}
	return false
}

// SetClosable controls CanCloseWithoutPrompting.
func (w *Window) SetClosable(v bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closable = v
}

// CanCloseWithoutPrompting implements mux.Window.
func (w *Window) CanCloseWithoutPrompting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closable
}

// Invalidate sets the invalidated flag.
func (w *Window) Invalidate() { w.invalidated.Store(true) }

// CheckAndResetInvalidated implements mux.Window.
func (w *Window) CheckAndResetInvalidated() bool {
	return w.invalidated.Swap(false)
}

// Mux is the in-memory multiplexer.
type Mux struct {
	mu sync.Mutex

	windows    map[mux.WindowID]*Window
	nextWindow mux.WindowID
	nextTab    mux.TabID
	nextPane   atomic.Uint64

	removedPanes []mux.PaneID
	removedTabs  []mux.TabID
	killed       []mux.WindowID
}

// New creates an empty multiplexer.
func New() *Mux {
	return &Mux{windows: make(map[mux.WindowID]*Window)}
}

// NewWindow creates an empty window.
func (m *Mux) NewWindow() *Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextWindow++
	w := &Window{id: m.nextWindow, closable: true}
	m.windows[w.id] = w
	return w
}

// NewTab creates a tab with a single buffer pane and pushes it onto the
// window.
func (m *Mux) NewTab(w *Window, size mux.Size) (*Tab, *BufferPane) {
	pane := NewBufferPane(m.AllocPaneID(), size.Cols, size.Rows)
	m.mu.Lock()
	m.nextTab++
	id := m.nextTab
	m.mu.Unlock()
	tab := NewTab(id, size, pane)
	w.Push(tab)
	return tab, pane
}

// Window implements mux.Mux.
func (m *Mux) Window(id mux.WindowID) (mux.Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.windows[id]
	if !ok {
		return nil, false
	}
	return w, true
}

// ActiveTab implements mux.Mux.
func (m *Mux) ActiveTab(id mux.WindowID) (mux.Tab, bool) {
	m.mu.Lock()
	w, ok := m.windows[id]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	tabs := w.Tabs()
	idx := w.ActiveIndex()
	if idx < 0 || idx >= len(tabs) {
		return nil, false
	}
	return tabs[idx], true
}

// AllocPaneID implements mux.Mux.
func (m *Mux) AllocPaneID() mux.PaneID {
	return mux.PaneID(m.nextPane.Add(1))
}

// RemovePane implements mux.Mux.
func (m *Mux) RemovePane(id mux.PaneID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removedPanes = append(m.removedPanes, id)
}

// RemovedPanes returns every pane id passed to RemovePane, in order.
func (m *Mux) RemovedPanes() []mux.PaneID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mux.PaneID(nil), m.removedPanes...)
}

// RemoveTab implements mux.Mux.
func (m *Mux) RemoveTab(id mux.TabID) {
	m.mu.Lock()
	windows := make([]*Window, 0, len(m.windows))
	for _, w := range m.windows {
		windows = append(windows, w)
	}
	m.removedTabs = append(m.removedTabs, id)
	m.mu.Unlock()
	for _, w := range windows {
		if w.removeTab(id) {
			return
		}
	}
}

// KillWindow implements mux.Mux.
func (m *Mux) KillWindow(id mux.WindowID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.windows[id]; ok {
		w.mu.Lock()
		w.tabs = nil
		w.active = 0
		w.mu.Unlock()
	}
	m.killed = append(m.killed, id)
}

// Killed returns the windows passed to KillWindow.
func (m *Mux) Killed() []mux.WindowID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mux.WindowID(nil), m.killed...)
}
