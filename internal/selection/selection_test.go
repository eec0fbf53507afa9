package selection

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbung/wezterm/internal/mux"
	"github.com/tbung/wezterm/internal/mux/memmux"
)

func wrapped(s string) mux.Line {
	l := mux.NewLine(s)
	l.Cells[len(l.Cells)-1].Wrapped = true
	return l
}

func newPane(t *testing.T, lines ...mux.Line) *memmux.BufferPane {
	t.Helper()
	p := memmux.NewBufferPane(1, 20, 5)
	p.AppendLines(lines...)
	return p
}

func at(x int, y int64) Coord {
	return Coord{X: x, Y: mux.StableRowIndex(y)}
}

func TestRange_ColsForRow(t *testing.T) {
	r := Range{Start: at(5, 2), End: at(3, 0)}

	assert.Equal(t, Columns{Start: 3, End: math.MaxInt}, r.ColsForRow(0))
	assert.Equal(t, Columns{Start: 0, End: math.MaxInt}, r.ColsForRow(1))
	assert.Equal(t, Columns{Start: 0, End: 6}, r.ColsForRow(2))
	assert.True(t, r.ColsForRow(3).Empty())

	single := Range{Start: at(7, 4), End: at(2, 4)}
	assert.Equal(t, Columns{Start: 2, End: 8}, single.ColsForRow(4))
}

func TestRange_ExtendWithIsSymmetric(t *testing.T) {
	a := Range{Start: at(4, 1), End: at(0, 1)}
	b := Range{Start: at(2, 3), End: at(9, 3)}

	want := Range{Start: at(0, 1), End: at(9, 3)}
	assert.Equal(t, want, a.ExtendWith(b))
	assert.Equal(t, want, b.ExtendWith(a))
}

func TestSelection_CellExtendIsOrderIndependent(t *testing.T) {
	pane := newPane(t)

	var down, up Selection
	down.Begin(ModeCell, at(5, 10), pane)
	down.Extend(ModeCell, at(2, 10), pane)
	up.Begin(ModeCell, at(2, 10), pane)
	up.Extend(ModeCell, at(5, 10), pane)

	r1, ok := down.Range()
	require.True(t, ok)
	r2, ok := up.Range()
	require.True(t, ok)
	assert.Equal(t, r1, r2)
	assert.Equal(t, Range{Start: at(2, 10), End: at(5, 10)}, r1)
}

func TestSelection_CellKeepsAnchorAcrossDirections(t *testing.T) {
	pane := newPane(t)
	var s Selection
	s.Begin(ModeCell, at(4, 5), pane)
	assert.True(t, s.IsEmpty())

	s.Extend(ModeCell, at(1, 2), pane)
	s.Extend(ModeCell, at(9, 8), pane)

	r, _ := s.Range()
	assert.Equal(t, Range{Start: at(4, 5), End: at(9, 8)}, r)
	anchor, ok := s.Anchor()
	require.True(t, ok)
	assert.Equal(t, at(4, 5), anchor)
}

func TestSelection_ExtendWithoutBegin(t *testing.T) {
	pane := newPane(t)
	var s Selection
	s.Extend(ModeCell, at(3, 1), pane)

	r, ok := s.Range()
	require.True(t, ok)
	assert.Equal(t, Cell(at(3, 1)), r)
}

func TestSelection_WordSnapsToBoundaries(t *testing.T) {
	pane := newPane(t,
		mux.NewLine("alpha beta gamma"),
		mux.NewLine("delta epsilon"),
	)

	var s Selection
	s.Begin(ModeWord, at(8, 0), pane)
	r, ok := s.Range()
	require.True(t, ok)
	assert.Equal(t, Range{Start: at(6, 0), End: at(9, 0)}, r)

	anchor, _ := s.Anchor()
	assert.Equal(t, at(6, 0), anchor)

	// dragging backwards still covers the anchor word
	s.Extend(ModeWord, at(1, 0), pane)
	r, _ = s.Range()
	assert.Equal(t, Range{Start: at(0, 0), End: at(9, 0)}, r)

	s.Extend(ModeWord, at(8, 1), pane)
	r, _ = s.Range()
	assert.Equal(t, Range{Start: at(6, 0), End: at(12, 1)}, r)
	assert.Equal(t, "beta gamma\ndelta epsilon", s.Text(pane))
}

func TestWordAround_FollowsSoftWrap(t *testing.T) {
	pane := newPane(t,
		wrapped("see hel"),
		mux.NewLine("lo world"),
	)

	r := WordAround(at(5, 0), pane, "")
	assert.Equal(t, Range{Start: at(4, 0), End: at(1, 1)}, r)
}

func TestWordAround_FollowsSoftWrapBackwards(t *testing.T) {
	pane := newPane(t,
		wrapped("x "),
		wrapped("see hel"),
		mux.NewLine("lo world"),
	)

	r := WordAround(at(0, 2), pane, "")
	assert.Equal(t, Range{Start: at(4, 1), End: at(1, 2)}, r)

	// a boundary before the wrap stops the walk
	r = WordAround(at(1, 1), pane, "")
	assert.Equal(t, Range{Start: at(0, 1), End: at(2, 1)}, r)
}

func TestWordAround_OnBoundary(t *testing.T) {
	pane := newPane(t, mux.NewLine("a b"))
	assert.Equal(t, Cell(at(1, 0)), WordAround(at(1, 0), pane, ""))
	assert.Equal(t, Cell(at(10, 0)), WordAround(at(10, 0), pane, ""))
}

func TestSelection_LineJoinsWrappedRows(t *testing.T) {
	pane := newPane(t,
		mux.NewLine("first"),
		wrapped("second part"),
		mux.NewLine("continues"),
		mux.NewLine("third"),
	)

	var s Selection
	s.Begin(ModeLine, at(3, 2), pane)
	r, ok := s.Range()
	require.True(t, ok)
	assert.Equal(t, Range{Start: at(0, 1), End: at(8, 2)}, r)

	anchor, _ := s.Anchor()
	assert.Equal(t, at(0, 1), anchor)

	assert.Equal(t, "second partcontinues", s.Text(pane))
}

func TestSelection_ZoneSnapsToZone(t *testing.T) {
	pane := newPane(t,
		mux.NewLine("$ ls"),
		mux.NewLine("a.txt b.txt"),
		mux.NewLine("$ "),
	)
	pane.SetSemanticZones([]mux.SemanticZone{
		{StartY: 0, StartX: 0, EndY: 0, EndX: 1, Type: mux.SemanticPrompt},
		{StartY: 0, StartX: 2, EndY: 0, EndX: 3, Type: mux.SemanticInput},
		{StartY: 1, StartX: 0, EndY: 1, EndX: 10, Type: mux.SemanticOutput},
	}, nil)

	var s Selection
	s.Begin(ModeSemanticZone, at(4, 1), pane)
	r, _ := s.Range()
	assert.Equal(t, Range{Start: at(0, 1), End: at(10, 1)}, r)
	assert.Equal(t, "a.txt b.txt", s.Text(pane))

	// outside any zone falls back to the cell
	assert.Equal(t, Cell(at(15, 3)), ZoneAround(at(15, 3), pane))
}

func TestZoneAround_Error(t *testing.T) {
	pane := newPane(t, mux.NewLine("x"))
	pane.SetSemanticZones(nil, errors.New("no zones"))
	assert.Equal(t, Cell(at(0, 0)), ZoneAround(at(0, 0), pane))
}

func TestUnitSelectionsAreAligned(t *testing.T) {
	pane := newPane(t,
		mux.NewLine("one two three"),
		mux.NewLine("four five six"),
	)
	for _, mode := range []Mode{ModeWord, ModeLine} {
		for x := 0; x < 13; x++ {
			r := Unit(mode, at(x, 1), pane, "")
			again := Unit(mode, r.Start, pane, "")
			assert.Equal(t, r.Start, again.Start, "%s start at x=%d", mode, x)
			assert.Equal(t, Unit(mode, r.End, pane, "").End, r.End, "%s end at x=%d", mode, x)
		}
	}
}

func TestText_TrimsAndSeparates(t *testing.T) {
	pane := newPane(t,
		mux.NewLine("hello   "),
		mux.NewLine("world  "),
	)
	r := Range{Start: at(0, 0), End: at(19, 1)}
	assert.Equal(t, "hello\nworld", Text(r, pane))
}

func TestText_WrappedSpaceIsHardBreak(t *testing.T) {
	pane := newPane(t,
		wrapped("abc "),
		mux.NewLine("def"),
	)
	r := Range{Start: at(0, 0), End: at(2, 1)}
	assert.Equal(t, "abc\ndef", Text(r, pane))
}

func TestSelection_IntersectsRows(t *testing.T) {
	pane := newPane(t)
	var s Selection
	assert.False(t, s.IntersectsRows([]mux.StableRowIndex{0}))

	s.Begin(ModeCell, at(0, 3), pane)
	s.Extend(ModeCell, at(0, 5), pane)
	assert.True(t, s.IntersectsRows([]mux.StableRowIndex{1, 4}))
	assert.False(t, s.IntersectsRows([]mux.StableRowIndex{2, 6}))

	s.Clear()
	assert.True(t, s.IsEmpty())
	_, ok := s.Anchor()
	assert.False(t, ok)
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeCell, ModeWord, ModeLine, ModeSemanticZone} {
		got, ok := ParseMode(m.String())
		require.True(t, ok)
		assert.Equal(t, m, got)
	}
	_, ok := ParseMode("block")
	assert.False(t, ok)
}
