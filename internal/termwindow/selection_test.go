package termwindow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbung/wezterm/internal/clipboard"
	"github.com/tbung/wezterm/internal/mux"
	"github.com/tbung/wezterm/internal/overlay"
	"github.com/tbung/wezterm/internal/selection"
)

func at(x, y int) selection.Coord {
	return selection.Coord{X: x, Y: mux.StableRowIndex(y)}
}

func TestSelectTextAt_WordThenExtend(t *testing.T) {
	h := newHarness(t, nil)
	h.pane.AppendText("hello world", "second line")

	h.tw.SelectTextAt(selection.ModeWord, at(1, 0))
	assert.Equal(t, "hello", h.tw.SelectionText())

	h.tw.ExtendSelectionAt(selection.ModeWord, at(2, 1))
	assert.Equal(t, "hello world\nsecond", h.tw.SelectionText())

	r, ok := h.tw.Selection(h.pane.ID())
	require.True(t, ok)
	assert.Equal(t, at(0, 0), r.Start)
	assert.Equal(t, at(5, 1), r.End)

	h.tw.ClearSelection()
	_, ok = h.tw.Selection(h.pane.ID())
	assert.False(t, ok)
	assert.Empty(t, h.tw.SelectionText())
}

func TestExtendSelectionAt_AutoScrolls(t *testing.T) {
	h := newHarness(t, nil)
	h.fill(100)

	h.tw.SelectTextAt(selection.ModeCell, at(0, 80))
	h.tw.ExtendSelectionAt(selection.ModeCell, at(0, 77))

	got := h.tw.GetViewport(h.pane.ID())
	require.NotNil(t, got)
	assert.Equal(t, mux.StableRowIndex(75), *got)
}

func TestSelection_PaneOverlaySharesPaneState(t *testing.T) {
	h := newHarness(t, nil)
	h.pane.AppendText("hello world")
	require.NoError(t, h.tw.ShowSearch("o"))
	search, _ := h.tw.PaneOverlay(h.pane.ID())

	h.tw.SelectTextAt(selection.ModeLine, at(3, 0))
	_, ok := h.tw.Selection(h.pane.ID())
	assert.True(t, ok)
	_, ok = h.tw.Selection(search.ID())
	assert.False(t, ok)
	assert.Equal(t, "hello world", h.tw.SelectionText())
}

func TestSelection_TabOverlayHasOwnState(t *testing.T) {
	h := newHarness(t, nil)
	h.pane.AppendText("hello world")
	term := newTerm(h, "picker")
	term.Render([]mux.Line{mux.NewLine("pick me")}, mux.CursorPosition{})
	h.tw.AssignTabOverlay(h.tab.ID(), term)

	h.tw.SelectTextAt(selection.ModeCell, at(0, 0))
	h.tw.ExtendSelectionAt(selection.ModeCell, at(3, 0))
	assert.Equal(t, "pick", h.tw.SelectionText())

	_, ok := h.tw.Selection(term.ID())
	assert.True(t, ok)
	_, ok = h.tw.Selection(h.pane.ID())
	assert.False(t, ok)
}

func TestCopyTo(t *testing.T) {
	h := newHarness(t, nil)
	h.pane.AppendText("copy this")
	h.tw.SelectTextAt(selection.ModeLine, at(0, 0))

	h.tw.CopyTo(clipboard.Clipboard)
	assert.Equal(t, "copy this", readClipboard(t, h.clip, clipboard.SourceClipboard))
	assert.Empty(t, readClipboard(t, h.clip, clipboard.SourcePrimarySelection))

	h.tw.CopyTo(clipboard.PrimarySelection)
	assert.Equal(t, "copy this", readClipboard(t, h.clip, clipboard.SourcePrimarySelection))
}

func TestPasteFrom_DeliversOnWindowGoroutine(t *testing.T) {
	h := newHarness(t, nil)
	h.fill(100)
	h.tw.ScrollByLine(-5)
	require.NoError(t, h.clip.SetContents(clipboard.Clipboard, "echo hi"))

	h.tw.PasteFrom(clipboard.SourceClipboard)
	h.runUntil(func() bool { return len(h.pane.Input()) == 1 })
	assert.Equal(t, []string{"echo hi"}, h.pane.Input())
	assert.Nil(t, h.tw.GetViewport(h.pane.ID()))
}

func TestPasteFrom_GoesToOverlay(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.tw.ShowSearch(""))
	ov, _ := h.tw.PaneOverlay(h.pane.ID())
	search := ov.(*overlay.Search)
	require.NoError(t, h.clip.SetContents(clipboard.PrimarySelection, "needle"))

	h.tw.PasteFrom(clipboard.SourcePrimarySelection)
	h.runUntil(func() bool { return search.Pattern() == "needle" })
	assert.Empty(t, h.pane.Input())
}

func TestPasteFrom_DroppedAfterClose(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.clip.SetContents(clipboard.Clipboard, "late"))
	h.tw.Close()

	h.tw.PasteFrom(clipboard.SourceClipboard)
	h.settle(1)
	assert.Empty(t, h.pane.Input())
}
