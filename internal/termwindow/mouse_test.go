package termwindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbung/wezterm/internal/clipboard"
	"github.com/tbung/wezterm/internal/mux"
)

// cellEvent builds a mouse event over terminal cell (x, row). Cells are
// 8x16 pixels and row 0 sits below the tab bar.
func cellEvent(kind MouseEventKind, button MouseButton, x, row int) MouseEvent {
	return MouseEvent{Kind: kind, Button: button, X: x*8 + 1, Y: (row+1)*16 + 1}
}

func (h *harness) click(x, row int) {
	h.tw.MouseEvent(cellEvent(MousePress, ButtonLeft, x, row))
	h.tw.MouseEvent(cellEvent(MouseRelease, ButtonLeft, x, row))
}

func TestMouse_DragCopiesToPrimarySelection(t *testing.T) {
	h := newHarness(t, nil)
	h.pane.AppendText("hello world")

	h.tw.MouseEvent(cellEvent(MousePress, ButtonLeft, 0, 0))
	h.tw.MouseEvent(cellEvent(MouseMove, ButtonNone, 2, 0))
	h.tw.MouseEvent(cellEvent(MouseMove, ButtonNone, 4, 0))
	assert.Equal(t, "hello", h.tw.SelectionText())

	h.tw.MouseEvent(cellEvent(MouseRelease, ButtonLeft, 4, 0))
	assert.Equal(t, "hello", readClipboard(t, h.clip, clipboard.SourcePrimarySelection))
	assert.Empty(t, readClipboard(t, h.clip, clipboard.SourceClipboard))

	// moving after the release no longer extends
	h.tw.MouseEvent(cellEvent(MouseMove, ButtonNone, 8, 0))
	assert.Equal(t, "hello", h.tw.SelectionText())
}

func TestMouse_MultiClickSelectsWordThenLine(t *testing.T) {
	h := newHarness(t, nil)
	h.pane.AppendText("hello world")

	h.click(7, 0)
	assert.Empty(t, h.tw.SelectionText())

	h.click(7, 0)
	assert.Equal(t, "world", h.tw.SelectionText())
	assert.Equal(t, "world", readClipboard(t, h.clip, clipboard.SourcePrimarySelection))

	h.click(7, 0)
	assert.Equal(t, "hello world", h.tw.SelectionText())
}

func TestMouse_SlowClicksDoNotCombine(t *testing.T) {
	h := newHarness(t, nil)
	h.pane.AppendText("hello world")

	h.click(7, 0)
	h.clock.Advance(600 * time.Millisecond)
	h.click(7, 0)
	assert.Empty(t, h.tw.SelectionText())
}

func TestMouse_TabBarClick(t *testing.T) {
	h := newHarness(t, nil)
	h.addTab()
	h.tw.UpdateTitle()
	require.Equal(t, 1, h.win.ActiveIndex())

	h.tw.MouseEvent(MouseEvent{Kind: MousePress, Button: ButtonLeft, X: 1, Y: 1})
	assert.Equal(t, 0, h.win.ActiveIndex())
	assert.Empty(t, h.spawner.calls)

	// past the last tab is the new tab button
	h.tw.MouseEvent(MouseEvent{Kind: MousePress, Button: ButtonLeft, X: 30 * 8, Y: 1})
	assert.Len(t, h.spawner.calls, 1)
	assert.Equal(t, 3, h.win.Len())
}

func TestMouse_NewTabButtonVetoed(t *testing.T) {
	e := newScripts(t, `wezterm.on("new-tab-button-click", function(win) return false end)`)
	h := newHarness(t, nil, withScripts(e))

	h.tw.MouseEvent(MouseEvent{Kind: MousePress, Button: ButtonLeft, X: 30 * 8, Y: 1})
	assert.Empty(t, h.spawner.calls)
	assert.Equal(t, 1, h.win.Len())
}

func TestMouse_WheelScrolls(t *testing.T) {
	h := newHarness(t, nil)
	h.fill(100)

	h.tw.MouseEvent(cellEvent(MouseWheelUp, ButtonNone, 0, 0))
	h.tw.MouseEvent(cellEvent(MouseWheelUp, ButtonNone, 0, 0))
	assert.Equal(t, mux.StableRowIndex(74), *h.tw.GetViewport(h.pane.ID()))

	h.tw.MouseEvent(cellEvent(MouseWheelDown, ButtonNone, 0, 0))
	h.tw.MouseEvent(cellEvent(MouseWheelDown, ButtonNone, 0, 0))
	assert.Nil(t, h.tw.GetViewport(h.pane.ID()))
}

func TestMouse_MiddleClickPastesPrimary(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.clip.SetContents(clipboard.PrimarySelection, "pasted"))

	h.tw.MouseEvent(cellEvent(MousePress, ButtonMiddle, 0, 0))
	h.runUntil(func() bool { return len(h.pane.Input()) == 1 })
	assert.Equal(t, []string{"pasted"}, h.pane.Input())
}

func TestMouse_ClickOpensLink(t *testing.T) {
	e := newScripts(t, `
wezterm.on("open-uri", function(win, uri)
  win:set_config_overrides({ window_class = uri })
  return false
end)
`)
	h := newHarness(t, nil, withScripts(e))
	h.pane.AppendText("see https://example.com/x now")

	h.tw.MouseEvent(cellEvent(MouseMove, ButtonNone, 10, 0))
	uri, ok := h.tw.LinkAtMouse()
	require.True(t, ok)
	assert.Equal(t, "https://example.com/x", uri)

	h.click(10, 0)
	h.runUntil(func() bool { return h.tw.Config().WindowClass == uri })
}

func TestMouse_NoLinkUnderPlainWord(t *testing.T) {
	h := newHarness(t, nil)
	h.pane.AppendText("see https://example.com/x now")

	h.tw.MouseEvent(cellEvent(MouseMove, ButtonNone, 1, 0))
	_, ok := h.tw.LinkAtMouse()
	assert.False(t, ok)
}
