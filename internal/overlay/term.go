// Package overlay provides the transient panes a window substitutes for a
// tab or a single pane: confirmations, pickers, search and copy mode.
//
// Every overlay is a mux.Pane, so the window stores and renders them the
// same way it does real panes. Interactive overlays run as tasks that read
// keys from their pane and return a result; the window cancels the overlay
// once the task has finished.
package overlay

import (
	"context"
	"sort"
	"sync"

	"github.com/tbung/wezterm/internal/mux"
)

const keyQueueSize = 64

// Term is an overlay pane with its own screen contents. Keys routed to it
// are queued for the task driving the overlay.
type Term struct {
	id    mux.PaneID
	title string

	mu     sync.Mutex
	cols   int
	rows   int
	lines  []mux.Line
	cursor mux.CursorPosition
	dirty  map[mux.StableRowIndex]struct{}

	keys chan mux.KeyEvent
}

// NewTerm creates an overlay pane of the given size.
func NewTerm(id mux.PaneID, title string, cols, rows int) *Term {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &Term{
		id:     id,
		title:  title,
		cols:   cols,
		rows:   rows,
		cursor: mux.CursorPosition{Shape: mux.CursorSteadyBlock},
		dirty:  make(map[mux.StableRowIndex]struct{}),
		keys:   make(chan mux.KeyEvent, keyQueueSize),
	}
}

// ID implements mux.Pane.
func (t *Term) ID() mux.PaneID { return t.id }

// Title implements mux.Pane.
func (t *Term) Title() string { return t.title }

// Size returns the screen size in cells.
func (t *Term) Size() (cols, rows int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cols, t.rows
}

// Render replaces the screen with lines and marks every row dirty.
func (t *Term) Render(lines []mux.Line, cursor mux.CursorPosition) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(lines) > t.rows {
		lines = lines[:t.rows]
	}
	t.lines = lines
	t.cursor = cursor
	for row := 0; row < t.rows; row++ {
		t.dirty[mux.StableRowIndex(row)] = struct{}{}
	}
}

// Dimensions implements mux.Pane. An overlay has no scrollback.
func (t *Term) Dimensions() mux.Dimensions {
	t.mu.Lock()
	defer t.mu.Unlock()
	return mux.Dimensions{
		Cols:           t.cols,
		ViewportRows:   t.rows,
		ScrollbackRows: t.rows,
	}
}

// CursorPosition implements mux.Pane.
func (t *Term) CursorPosition() mux.CursorPosition {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor
}

// Lines implements mux.Pane.
func (t *Term) Lines(start, end mux.StableRowIndex) (mux.StableRowIndex, []mux.Line) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if start < 0 {
		start = 0
	}
	if end > mux.StableRowIndex(len(t.lines)) {
		end = mux.StableRowIndex(len(t.lines))
	}
	if start >= end {
		return start, nil
	}
	return start, append([]mux.Line(nil), t.lines[start:end]...)
}

// DirtyLines implements mux.Pane.
func (t *Term) DirtyLines(start, end mux.StableRowIndex) []mux.StableRowIndex {
	t.mu.Lock()
	defer t.mu.Unlock()
	return dirtyIn(t.dirty, start, end)
}

// ClearDirty forgets the dirty rows once they have been painted.
func (t *Term) ClearDirty() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.dirty)
}

// SemanticZones implements mux.Pane.
func (t *Term) SemanticZones() ([]mux.SemanticZone, error) { return nil, nil }

// KeyDown implements mux.Pane. Keys arriving faster than the task consumes
// them are dropped once the queue is full.
func (t *Term) KeyDown(ev mux.KeyEvent) error {
	select {
	case t.keys <- ev:
	default:
	}
	return nil
}

// SendString implements mux.Pane by queueing one key per rune.
func (t *Term) SendString(s string) error {
	for _, r := range s {
		_ = t.KeyDown(mux.KeyEvent{Key: string(r)})
	}
	return nil
}

// NextKey waits for the next key routed to the overlay.
func (t *Term) NextKey(ctx context.Context) (mux.KeyEvent, error) {
	select {
	case <-ctx.Done():
		return mux.KeyEvent{}, ctx.Err()
	case ev := <-t.keys:
		return ev, nil
	}
}

// FocusChanged implements mux.Pane.
func (t *Term) FocusChanged(bool) {}

// CanCloseWithoutPrompting implements mux.Pane.
func (t *Term) CanCloseWithoutPrompting() bool { return true }

// EraseScrollback implements mux.Pane.
func (t *Term) EraseScrollback(mux.EraseMode) {}

func dirtyIn(set map[mux.StableRowIndex]struct{}, start, end mux.StableRowIndex) []mux.StableRowIndex {
	var rows []mux.StableRowIndex
	for r := range set {
		if r >= start && r < end {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i] < rows[j] })
	return rows
}
