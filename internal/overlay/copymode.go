package overlay

import (
	"sync"

	"github.com/tbung/wezterm/internal/mux"
	"github.com/tbung/wezterm/internal/selection"
)

// CopyMode covers a pane with a keyboard-driven cursor for selecting and
// copying text. Content and dimensions come from the covered pane.
type CopyMode struct {
	mux.Pane
	id     mux.PaneID
	onYank func(text string)

	mu        sync.Mutex
	cursor    selection.Coord
	viewport  *mux.StableRowIndex
	sel       selection.Selection
	selecting bool
	dirty     map[mux.StableRowIndex]struct{}

	done     chan struct{}
	doneOnce sync.Once
}

// NewCopyMode creates a copy mode overlay for delegate with the cursor
// starting at the covered pane's cursor. onYank receives the copied text.
func NewCopyMode(id mux.PaneID, delegate mux.Pane, onYank func(text string)) *CopyMode {
	cur := delegate.CursorPosition()
	return &CopyMode{
		Pane:   delegate,
		id:     id,
		onYank: onYank,
		cursor: selection.Coord{X: cur.X, Y: cur.Y},
		dirty:  make(map[mux.StableRowIndex]struct{}),
		done:   make(chan struct{}),
	}
}

// ID implements mux.Pane.
func (c *CopyMode) ID() mux.PaneID { return c.id }

// Title implements mux.Pane.
func (c *CopyMode) Title() string { return "Copy mode: " + c.Pane.Title() }

// Done is closed when copy mode ends.
func (c *CopyMode) Done() <-chan struct{} { return c.done }

// CursorPosition implements mux.Pane with the copy cursor.
func (c *CopyMode) CursorPosition() mux.CursorPosition {
	c.mu.Lock()
	defer c.mu.Unlock()
	return mux.CursorPosition{X: c.cursor.X, Y: c.cursor.Y, Shape: mux.CursorSteadyBlock}
}

// Selection returns the range being selected.
func (c *CopyMode) Selection() (selection.Range, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.Range()
}

// ViewportChanged implements mux.ViewportAware. The cursor is pulled back
// into the visible region.
func (c *CopyMode) ViewportChanged(viewport *mux.StableRowIndex) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = viewport
	top, bottom := c.visibleRows()
	switch {
	case c.cursor.Y < top:
		c.moveTo(selection.Coord{X: c.cursor.X, Y: top})
	case c.cursor.Y > bottom:
		c.moveTo(selection.Coord{X: c.cursor.X, Y: bottom})
	}
}

// KeyDown implements mux.Pane.
func (c *CopyMode) KeyDown(ev mux.KeyEvent) error {
	c.mu.Lock()
	var yanked *string
	finished := false

	cur := c.cursor
	switch ev.Key {
	case "h", mux.KeyLeft:
		cur.X--
	case "l", mux.KeyRight:
		cur.X++
	case "k", mux.KeyUp:
		cur.Y--
	case "j", mux.KeyDown:
		cur.Y++
	case "0", mux.KeyHome:
		cur.X = 0
	case "$", mux.KeyEnd:
		cur.X = c.Pane.Dimensions().Cols - 1
	case "v":
		c.selecting = !c.selecting
		if c.selecting {
			c.sel.Begin(selection.ModeCell, c.cursor, c.Pane)
			c.sel.Extend(selection.ModeCell, c.cursor, c.Pane)
		} else {
			c.markRange()
			c.sel.Clear()
		}
	case "V":
		c.selecting = true
		c.sel.Begin(selection.ModeLine, c.cursor, c.Pane)
		c.markRange()
	case "y":
		text := c.sel.Text(c.Pane)
		yanked = &text
		finished = true
	case "q", mux.KeyEscape:
		finished = true
	}
	if cur != c.cursor {
		c.moveTo(cur)
	}
	c.mu.Unlock()

	if yanked != nil && c.onYank != nil {
		c.onYank(*yanked)
	}
	if finished {
		c.doneOnce.Do(func() { close(c.done) })
	}
	return nil
}

// SendString implements mux.Pane. Copy mode ignores pasted text.
func (c *CopyMode) SendString(string) error { return nil }

// DirtyLines implements mux.Pane.
func (c *CopyMode) DirtyLines(start, end mux.StableRowIndex) []mux.StableRowIndex {
	own := func() []mux.StableRowIndex {
		c.mu.Lock()
		defer c.mu.Unlock()
		return dirtyIn(c.dirty, start, end)
	}()
	return mergeRows(c.Pane.DirtyLines(start, end), own)
}

// ClearDirty forgets the cursor and selection changes once painted, along
// with the covered pane's dirty rows.
func (c *CopyMode) ClearDirty() {
	c.mu.Lock()
	clear(c.dirty)
	c.mu.Unlock()
	clearDelegate(c.Pane)
}

// CanCloseWithoutPrompting implements mux.Pane.
func (c *CopyMode) CanCloseWithoutPrompting() bool { return true }

// visibleRows returns the first and last visible rows. Callers hold c.mu.
func (c *CopyMode) visibleRows() (mux.StableRowIndex, mux.StableRowIndex) {
	dims := c.Pane.Dimensions()
	top := dims.PhysicalTop
	if c.viewport != nil {
		top = *c.viewport
	}
	return top, top + mux.StableRowIndex(dims.ViewportRows) - 1
}

// moveTo clamps cur to the scrollback and moves the cursor there. Callers
// hold c.mu.
func (c *CopyMode) moveTo(cur selection.Coord) {
	dims := c.Pane.Dimensions()
	cur.X = max(0, min(cur.X, dims.Cols-1))
	last := dims.PhysicalTop + mux.StableRowIndex(dims.ViewportRows) - 1
	cur.Y = max(dims.ScrollbackTop, min(cur.Y, last))

	c.dirty[c.cursor.Y] = struct{}{}
	c.dirty[cur.Y] = struct{}{}
	if c.selecting {
		c.markRange()
		c.sel.Extend(c.sel.Mode(), cur, c.Pane)
		c.markRange()
	}
	c.cursor = cur
}

func (c *CopyMode) markRange() {
	r, ok := c.sel.Range()
	if !ok {
		return
	}
	for row := r.Start.Y; row <= r.End.Y; row++ {
		c.dirty[row] = struct{}{}
	}
}
