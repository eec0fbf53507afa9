package overlay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbung/wezterm/internal/mux"
	"github.com/tbung/wezterm/internal/mux/memmux"
)

func keys(t *testing.T, p mux.Pane, names ...string) {
	t.Helper()
	for _, k := range names {
		require.NoError(t, p.KeyDown(mux.KeyEvent{Key: k}))
	}
}

func TestTerm_RenderMarksDirty(t *testing.T) {
	term := NewTerm(100, "overlay", 10, 3)
	term.Render([]mux.Line{mux.NewLine("a"), mux.NewLine("b")}, mux.CursorPosition{X: 1})

	assert.Equal(t, []mux.StableRowIndex{0, 1, 2}, term.DirtyLines(0, 3))
	first, lines := term.Lines(0, 10)
	assert.Equal(t, mux.StableRowIndex(0), first)
	require.Len(t, lines, 2)
	assert.Equal(t, "b", lines[1].String())

	term.ClearDirty()
	assert.Empty(t, term.DirtyLines(0, 3))
	assert.Equal(t, mux.Dimensions{Cols: 10, ViewportRows: 3, ScrollbackRows: 3}, term.Dimensions())
}

func TestTerm_NextKeyHonorsContext(t *testing.T) {
	term := NewTerm(1, "t", 5, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := term.NextKey(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"y", true},
		{"Y", true},
		{"n", false},
		{mux.KeyEscape, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			term := NewTerm(1, "confirm", 40, 5)
			// unrelated keys are ignored
			keys(t, term, "x", tt.key)

			ok, err := Confirm(context.Background(), term, "Really close?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)

			_, lines := term.Lines(0, 5)
			assert.Equal(t, "Really close?", lines[0].String())
		})
	}
}

func TestSelector_FuzzyFilter(t *testing.T) {
	s := NewSelector("Launch", []string{"bash", "htop", "python3", "zsh"}, 0)
	assert.Equal(t, []int{0, 1, 2, 3}, s.Matches())

	assert.Equal(t, Pending, s.HandleKey(mux.KeyEvent{Key: "h"}))
	assert.Equal(t, Pending, s.HandleKey(mux.KeyEvent{Key: "t"}))
	assert.Equal(t, "ht", s.Query())
	idx, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	s.HandleKey(mux.KeyEvent{Key: mux.KeyBackspace})
	s.HandleKey(mux.KeyEvent{Key: mux.KeyBackspace})
	assert.Len(t, s.Matches(), 4)

	s.HandleKey(mux.KeyEvent{Key: "q"})
	s.HandleKey(mux.KeyEvent{Key: "q"})
	assert.Empty(t, s.Matches())
	assert.Equal(t, Pending, s.HandleKey(mux.KeyEvent{Key: mux.KeyEnter}))
}

func TestSelector_Navigation(t *testing.T) {
	s := NewSelector("Tabs", []string{"one", "two", "three"}, 1)
	s.HandleKey(mux.KeyEvent{Key: mux.KeyDown})
	s.HandleKey(mux.KeyEvent{Key: mux.KeyDown})
	idx, _ := s.Selected()
	assert.Equal(t, 2, idx)

	s.HandleKey(mux.KeyEvent{Key: mux.KeyUp})
	assert.Equal(t, Chosen, s.HandleKey(mux.KeyEvent{Key: mux.KeyEnter}))
	idx, _ = s.Selected()
	assert.Equal(t, 1, idx)

	assert.Equal(t, Cancelled, s.HandleKey(mux.KeyEvent{Key: mux.KeyEscape}))
}

func TestSelector_DigitJump(t *testing.T) {
	s := NewSelector("Tabs", []string{"one", "two", "three"}, 0)
	assert.Equal(t, Chosen, s.HandleKey(mux.KeyEvent{Key: "3"}))
	idx, _ := s.Selected()
	assert.Equal(t, 2, idx)
}

func TestSelector_LinesTruncate(t *testing.T) {
	s := NewSelector("A rather long title", []string{"first entry", "second"}, 0)
	lines, cursor := s.Lines(8, 3)
	require.Len(t, lines, 3)
	assert.Equal(t, "A rathe…", lines[0].String())
	assert.Equal(t, "> first…", lines[2].String())
	assert.Equal(t, mux.StableRowIndex(1), cursor.Y)
}

func TestChoose(t *testing.T) {
	term := NewTerm(1, "launcher", 30, 10)
	s := NewSelector("Launch", []string{"bash", "htop"}, 0)
	keys(t, term, mux.KeyDown, mux.KeyEnter)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	idx, ok, err := Choose(ctx, term, s)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func searchPane() *memmux.BufferPane {
	p := memmux.NewBufferPane(1, 20, 3)
	p.AppendText("foo bar", "nothing", "bar foo bar", "tail")
	p.ClearDirty()
	return p
}

func TestSearch_MatchesVisibleRegion(t *testing.T) {
	pane := searchPane()
	s := NewSearch(50, pane, "")
	assert.Equal(t, mux.PaneID(50), s.ID())

	keys(t, s, "b", "A", "r")
	assert.Equal(t, "bAr", s.Pattern())

	// live viewport shows rows 1..3
	assert.Equal(t, []Match{{Row: 2, Start: 0, End: 3}, {Row: 2, Start: 8, End: 11}}, s.Matches())
	assert.Equal(t, []mux.StableRowIndex{2}, s.DirtyLines(0, 4))

	top := mux.StableRowIndex(0)
	s.ClearDirty()
	s.ViewportChanged(&top)
	assert.Equal(t, []Match{{Row: 0, Start: 4, End: 7}, {Row: 2, Start: 0, End: 3}, {Row: 2, Start: 8, End: 11}}, s.Matches())
	assert.Equal(t, []mux.StableRowIndex{0, 2}, s.DirtyLines(0, 4))
}

func TestSearch_StepAndFinish(t *testing.T) {
	s := NewSearch(50, searchPane(), "bar")
	m, ok := s.ActiveMatch()
	require.True(t, ok)
	assert.Equal(t, 0, m.Start)

	keys(t, s, mux.KeyEnter)
	m, _ = s.ActiveMatch()
	assert.Equal(t, 8, m.Start)
	keys(t, s, mux.KeyEnter)
	m, _ = s.ActiveMatch()
	assert.Equal(t, 0, m.Start)

	select {
	case <-s.Done():
		t.Fatal("done before escape")
	default:
	}
	keys(t, s, mux.KeyEscape, mux.KeyEscape)
	<-s.Done()
}

func TestSearch_IncludesDelegateDirtyRows(t *testing.T) {
	pane := searchPane()
	s := NewSearch(50, pane, "")
	pane.MarkDirty(3)
	assert.Equal(t, []mux.StableRowIndex{3}, s.DirtyLines(0, 4))

	s.ClearDirty()
	assert.Empty(t, s.DirtyLines(0, 4))
	assert.Empty(t, pane.DirtyLines(0, 4))
}

func TestCopyMode_ClearDirtyClearsDelegate(t *testing.T) {
	pane := memmux.NewBufferPane(1, 10, 3)
	pane.AppendText("a", "b")
	cm := NewCopyMode(60, pane, nil)
	require.NotEmpty(t, cm.DirtyLines(0, 3))

	cm.ClearDirty()
	assert.Empty(t, cm.DirtyLines(0, 3))
	assert.Empty(t, pane.DirtyLines(0, 3))
}

func TestCopyMode_SelectAndYank(t *testing.T) {
	pane := memmux.NewBufferPane(1, 10, 3)
	pane.AppendText("hello", "world")
	pane.SetCursor(mux.CursorPosition{X: 0, Y: 0})

	var yanked string
	cm := NewCopyMode(60, pane, func(text string) { yanked = text })

	keys(t, cm, "v", "l", "l", "l", "l", "j")
	r, ok := cm.Selection()
	require.True(t, ok)
	assert.Equal(t, mux.StableRowIndex(1), r.End.Y)

	keys(t, cm, "y")
	assert.Equal(t, "hello\nworld", yanked)
	<-cm.Done()
}

func TestCopyMode_CursorClamps(t *testing.T) {
	pane := memmux.NewBufferPane(1, 4, 2)
	pane.AppendText("ab", "cd")
	pane.SetCursor(mux.CursorPosition{X: 0, Y: 0})

	cm := NewCopyMode(60, pane, nil)
	keys(t, cm, "h", "k", "$", "l", "j", "j", "j")
	assert.Equal(t, mux.CursorPosition{X: 3, Y: 1, Shape: mux.CursorSteadyBlock}, cm.CursorPosition())
}

func TestCopyMode_ViewportPullsCursor(t *testing.T) {
	pane := memmux.NewBufferPane(1, 10, 2)
	pane.AppendText("a", "b", "c", "d", "e")

	cm := NewCopyMode(60, pane, nil)
	assert.Equal(t, mux.StableRowIndex(4), cm.CursorPosition().Y)

	top := mux.StableRowIndex(1)
	cm.ViewportChanged(&top)
	assert.Equal(t, mux.StableRowIndex(2), cm.CursorPosition().Y)
}
