// Package memmux is an in-memory multiplexer. It backs the demo binary and
// serves as the shared fake for tests of the window layer.
package memmux

import (
	"sort"
	"sync"

	"github.com/tbung/wezterm/internal/mux"
)

// BufferPane is a pane whose content is a plain slice of lines.
type BufferPane struct {
	mu sync.Mutex

	id           mux.PaneID
	title        string
	lines        []mux.Line
	trimmed      mux.StableRowIndex
	cols         int
	viewportRows int
	cursor       mux.CursorPosition
	zones        []mux.SemanticZone
	zonesErr     error
	dirty        map[mux.StableRowIndex]struct{}

	focused   bool
	closable  bool
	keys      []mux.KeyEvent
	input     []string
	erasures  []mux.EraseMode
	focusHist []bool
}

// NewBufferPane creates an empty pane with the given screen size.
func NewBufferPane(id mux.PaneID, cols, rows int) *BufferPane {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &BufferPane{
		id:           id,
		title:        "pane",
		cols:         cols,
		viewportRows: rows,
		closable:     true,
		dirty:        make(map[mux.StableRowIndex]struct{}),
	}
}

// ID implements mux.Pane.
func (p *BufferPane) ID() mux.PaneID { return p.id }

// Title implements mux.Pane.
func (p *BufferPane) Title() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title
}

// SetTitle changes the pane title.
func (p *BufferPane) SetTitle(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.title = title
}

// AppendLines adds rows at the bottom and marks them dirty.
func (p *BufferPane) AppendLines(lines ...mux.Line) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, l := range lines {
		row := p.trimmed + mux.StableRowIndex(len(p.lines))
		p.lines = append(p.lines, l)
		p.dirty[row] = struct{}{}
	}
	last := p.trimmed + mux.StableRowIndex(len(p.lines)) - 1
	if last < 0 {
		last = 0
	}
	p.cursor.Y = last
}

// AppendText adds one row per string.
func (p *BufferPane) AppendText(rows ...string) {
	lines := make([]mux.Line, len(rows))
	for i, r := range rows {
		lines[i] = mux.NewLine(r)
	}
	p.AppendLines(lines...)
}

// SetLine replaces the row at the stable index and marks it dirty.
func (p *BufferPane) SetLine(row mux.StableRowIndex, line mux.Line) {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := int(row - p.trimmed)
	if idx < 0 || idx >= len(p.lines) {
		return
	}
	p.lines[idx] = line
	p.dirty[row] = struct{}{}
}

// TrimScrollback drops the oldest n rows. Stable indices of the remaining
// rows do not change.
func (p *BufferPane) TrimScrollback(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n > len(p.lines) {
		n = len(p.lines)
	}
	p.lines = p.lines[n:]
	p.trimmed += mux.StableRowIndex(n)
}

// MarkDirty flags rows as changed.
func (p *BufferPane) MarkDirty(rows ...mux.StableRowIndex) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range rows {
		p.dirty[r] = struct{}{}
	}
}

// ClearDirty forgets all dirty rows. Painters call this after drawing.
func (p *BufferPane) ClearDirty() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty = make(map[mux.StableRowIndex]struct{})
}

// SetCursor moves the cursor.
func (p *BufferPane) SetCursor(c mux.CursorPosition) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cursor = c
}

// SetSemanticZones replaces the zone list. A non-nil err is returned from
// SemanticZones instead.
func (p *BufferPane) SetSemanticZones(zones []mux.SemanticZone, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.zones = append([]mux.SemanticZone(nil), zones...)
	sort.SliceStable(p.zones, func(i, j int) bool { return p.zones[i].StartY < p.zones[j].StartY })
	p.zonesErr = err
}

// SetClosable controls CanCloseWithoutPrompting.
func (p *BufferPane) SetClosable(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closable = v
}

// Resize changes the screen size.
func (p *BufferPane) Resize(cols, rows int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cols > 0 {
		p.cols = cols
	}
	if rows > 0 {
		p.viewportRows = rows
	}
}

// Dimensions implements mux.Pane.
func (p *BufferPane) Dimensions() mux.Dimensions {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := len(p.lines)
	if total < p.viewportRows {
		total = p.viewportRows
	}
	return mux.Dimensions{
		Cols:           p.cols,
		ViewportRows:   p.viewportRows,
		ScrollbackRows: total,
		PhysicalTop:    p.trimmed + mux.StableRowIndex(total-p.viewportRows),
		ScrollbackTop:  p.trimmed,
	}
}

// CursorPosition implements mux.Pane.
func (p *BufferPane) CursorPosition() mux.CursorPosition {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// Lines implements mux.Pane.
func (p *BufferPane) Lines(start, end mux.StableRowIndex) (mux.StableRowIndex, []mux.Line) {
	p.mu.Lock()
	defer p.mu.Unlock()
	first := start
	if first < p.trimmed {
		first = p.trimmed
	}
	lo := int(first - p.trimmed)
	hi := int(end - p.trimmed)
	if hi > len(p.lines) {
		hi = len(p.lines)
	}
	if lo >= hi {
		return first, nil
	}
	out := make([]mux.Line, hi-lo)
	copy(out, p.lines[lo:hi])
	return first, out
}

// DirtyLines implements mux.Pane.
func (p *BufferPane) DirtyLines(start, end mux.StableRowIndex) []mux.StableRowIndex {
	p.mu.Lock()
	defer p.mu.Unlock()
	var rows []mux.StableRowIndex
	for r := range p.dirty {
		if r >= start && r < end {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i] < rows[j] })
	return rows
}

// SemanticZones implements mux.Pane.
func (p *BufferPane) SemanticZones() ([]mux.SemanticZone, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.zonesErr != nil {
		return nil, p.zonesErr
	}
	return append([]mux.SemanticZone(nil), p.zones...), nil
}

// KeyDown implements mux.Pane.
func (p *BufferPane) KeyDown(ev mux.KeyEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, ev)
	return nil
}

// SendString implements mux.Pane.
func (p *BufferPane) SendString(s string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.input = append(p.input, s)
	return nil
}

// FocusChanged implements mux.Pane.
func (p *BufferPane) FocusChanged(focused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.focused = focused
	p.focusHist = append(p.focusHist, focused)
}

// CanCloseWithoutPrompting implements mux.Pane.
func (p *BufferPane) CanCloseWithoutPrompting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closable
}

// EraseScrollback implements mux.Pane.
func (p *BufferPane) EraseScrollback(mode mux.EraseMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.erasures = append(p.erasures, mode)
	keep := p.viewportRows
	if mode == mux.EraseScrollbackAndViewport {
		keep = 0
	}
	if drop := len(p.lines) - keep; drop > 0 {
		p.lines = p.lines[drop:]
		p.trimmed += mux.StableRowIndex(drop)
	}
}

// Keys returns the key presses the pane received.
func (p *BufferPane) Keys() []mux.KeyEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]mux.KeyEvent(nil), p.keys...)
}

// Input returns the strings written with SendString.
func (p *BufferPane) Input() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.input...)
}

// Focused reports the last focus state delivered to the pane.
func (p *BufferPane) Focused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.focused
}

// Erasures returns the EraseScrollback calls received.
func (p *BufferPane) Erasures() []mux.EraseMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]mux.EraseMode(nil), p.erasures...)
}
