// Package viewport positions the visible window over a pane's scrollback.
//
// A position is either live, pinned to the newest content, or anchored at a
// stable row. The functions here are pure; the window owns the per-pane
// positions and decides when to repaint.
package viewport

import (
	"sort"

	"github.com/tbung/wezterm/internal/mux"
)

// Position is a pane's viewport. The zero value is live.
type Position struct {
	row mux.StableRowIndex
	set bool
}

// Live returns the position pinned to the bottom of the scrollback.
func Live() Position {
	return Position{}
}

// At returns the position anchored at row.
func At(row mux.StableRowIndex) Position {
	return Position{row: row, set: true}
}

// FromPtr converts an optional row.
func FromPtr(row *mux.StableRowIndex) Position {
	if row == nil {
		return Live()
	}
	return At(*row)
}

// IsLive reports whether the position follows new output.
func (p Position) IsLive() bool {
	return !p.set
}

// Row returns the anchor row. The second result is false when live.
func (p Position) Row() (mux.StableRowIndex, bool) {
	return p.row, p.set
}

// Ptr returns the anchor row as an optional value, nil when live.
func (p Position) Ptr() *mux.StableRowIndex {
	if !p.set {
		return nil
	}
	row := p.row
	return &row
}

// Top returns the row at the top of the visible region.
func (p Position) Top(dims mux.Dimensions) mux.StableRowIndex {
	if p.set {
		return p.row
	}
	return dims.PhysicalTop
}

// Resolve clamps a requested position into the scrollback. Any row at or
// past the live screen becomes live rather than the boundary row.
func Resolve(requested Position, dims mux.Dimensions) Position {
	row, ok := requested.Row()
	if !ok {
		return Live()
	}
	row = max(row, dims.ScrollbackTop)
	if row >= dims.PhysicalTop {
		return Live()
	}
	return At(row)
}

// ByLines returns the position n rows below current; negative n scrolls up.
func ByLines(current Position, dims mux.Dimensions, n int) Position {
	return At(current.Top(dims) + mux.StableRowIndex(n))
}

// ByPages returns the position n screens below current.
func ByPages(current Position, dims mux.Dimensions, n int) Position {
	return ByLines(current, dims, n*dims.ViewportRows)
}

// PromptTarget returns the start row of the prompt n prompts away from the
// viewport top. Zones that are not prompts are ignored. The second result
// is false when there is no prompt at the stepped index.
func PromptTarget(zones []mux.SemanticZone, top mux.StableRowIndex, n int) (mux.StableRowIndex, bool) {
	prompts := make([]mux.SemanticZone, 0, len(zones))
	for _, z := range zones {
		if z.Type == mux.SemanticPrompt {
			prompts = append(prompts, z)
		}
	}
	sort.SliceStable(prompts, func(i, j int) bool { return prompts[i].StartY < prompts[j].StartY })

	idx := sort.Search(len(prompts), func(i int) bool { return prompts[i].StartY >= top })
	idx += n
	if idx < 0 {
		idx = 0
	}
	if idx >= len(prompts) {
		return 0, false
	}
	return prompts[idx].StartY, true
}

// VerticalGap is the number of rows kept between a dragged selection end and
// the edge of the viewport.
const VerticalGap = 2

// AutoScroll returns the position that keeps row at least the vertical gap
// away from the top and bottom edges of the visible region. The second
// result is false when no adjustment is needed.
func AutoScroll(current Position, dims mux.Dimensions, row mux.StableRowIndex) (Position, bool) {
	gap := mux.StableRowIndex(VerticalGap)
	if dims.PhysicalTop <= gap {
		gap = 1
	}
	top := current.Top(dims)

	topGap := row - top
	if topGap < gap {
		return At(row - gap), true
	}
	bottomGap := mux.StableRowIndex(dims.ViewportRows) - topGap
	if bottomGap < gap {
		return At(top + gap - bottomGap), true
	}
	return current, false
}
