package termwindow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbung/wezterm/internal/config"
	"github.com/tbung/wezterm/internal/mux"
	"github.com/tbung/wezterm/internal/mux/memmux"
)

// threeTabs returns a harness whose window holds three tabs, the first
// one active.
func threeTabs(t *testing.T) (*harness, []*memmux.Tab) {
	h := newHarness(t, nil)
	second, _ := h.addTab()
	third, _ := h.addTab()
	require.NoError(t, h.tw.ActivateTab(0))
	return h, []*memmux.Tab{h.tab, second, third}
}

func tabIDs(w *memmux.Window) []mux.TabID {
	var ids []mux.TabID
	for _, tab := range w.Tabs() {
		ids = append(ids, tab.ID())
	}
	return ids
}

func TestActivateTab(t *testing.T) {
	h, _ := threeTabs(t)

	require.NoError(t, h.tw.ActivateTab(-1))
	assert.Equal(t, 2, h.win.ActiveIndex())
	assert.Equal(t, "[3/3] pane", h.tw.Title())

	require.NoError(t, h.tw.ActivateTab(-10))
	assert.Equal(t, 0, h.win.ActiveIndex())

	assert.ErrorIs(t, h.tw.ActivateTab(3), ErrTabOutOfRange)
	assert.Equal(t, 0, h.win.ActiveIndex())
}

func TestActivateTabRelative_Wraps(t *testing.T) {
	h, _ := threeTabs(t)

	require.NoError(t, h.tw.ActivateTabRelative(-1))
	assert.Equal(t, 2, h.win.ActiveIndex())
	require.NoError(t, h.tw.ActivateTabRelative(1))
	assert.Equal(t, 0, h.win.ActiveIndex())
	require.NoError(t, h.tw.ActivateTabRelative(4))
	assert.Equal(t, 1, h.win.ActiveIndex())
}

func TestMoveTab(t *testing.T) {
	h, tabs := threeTabs(t)

	require.NoError(t, h.tw.MoveTab(2))
	assert.Equal(t, []mux.TabID{tabs[1].ID(), tabs[2].ID(), tabs[0].ID()}, tabIDs(h.win))
	assert.Equal(t, 2, h.win.ActiveIndex())

	assert.ErrorIs(t, h.tw.MoveTab(3), ErrTabOutOfRange)
	assert.ErrorIs(t, h.tw.MoveTab(-1), ErrTabOutOfRange)
}

func TestMoveTabRelative_Clamps(t *testing.T) {
	h, tabs := threeTabs(t)

	require.NoError(t, h.tw.MoveTabRelative(-1))
	assert.Equal(t, []mux.TabID{tabs[0].ID(), tabs[1].ID(), tabs[2].ID()}, tabIDs(h.win))

	require.NoError(t, h.tw.MoveTabRelative(10))
	assert.Equal(t, []mux.TabID{tabs[1].ID(), tabs[2].ID(), tabs[0].ID()}, tabIDs(h.win))
	assert.Equal(t, 2, h.win.ActiveIndex())
}

func TestCloseTabIdx(t *testing.T) {
	h, tabs := threeTabs(t)

	require.NoError(t, h.tw.CloseTabIdx(0))
	assert.Equal(t, []mux.TabID{tabs[1].ID(), tabs[2].ID()}, tabIDs(h.win))
	assert.Equal(t, "[1/2] pane", h.tw.Title())

	assert.ErrorIs(t, h.tw.CloseTabIdx(2), ErrTabOutOfRange)

	require.NoError(t, h.tw.CloseTabIdx(1))
	require.NoError(t, h.tw.CloseTabIdx(0))
	assert.Zero(t, h.win.Len())
	assert.False(t, h.tw.PeriodicMaintenance())
	assert.True(t, h.tw.Closed())
}

func TestCloseCurrentPane(t *testing.T) {
	h := newHarness(t, nil)
	second := memmux.NewBufferPane(h.mux.AllocPaneID(), 40, 24)
	h.tab.AddPane(second)
	h.tab.SetActivePane(1)

	require.NoError(t, h.tw.CloseCurrentPane(false))
	assert.Equal(t, 1, h.tab.CountPanes())

	h.pane.SetClosable(false)
	require.NoError(t, h.tw.CloseCurrentPane(true))
	assert.Equal(t, "Close pane", h.tw.Title())
	h.press("y", mux.ModNone)
	h.runUntil(func() bool { return h.tab.CountPanes() == 0 })
}

func TestCanClose(t *testing.T) {
	t.Run("never prompt", func(t *testing.T) {
		h := newHarness(t, func(c *config.Config) {
			c.WindowCloseConfirmation = string(config.NeverPrompt)
		})
		h.win.SetClosable(false)
		assert.True(t, h.tw.CanClose())
		assert.Equal(t, []mux.WindowID{h.win.ID()}, h.mux.Killed())
	})

	t.Run("closable window", func(t *testing.T) {
		h := newHarness(t, nil)
		assert.True(t, h.tw.CanClose())
		assert.Equal(t, []mux.WindowID{h.win.ID()}, h.mux.Killed())
	})

	t.Run("confirmed", func(t *testing.T) {
		h := newHarness(t, nil)
		h.win.SetClosable(false)
		assert.False(t, h.tw.CanClose())
		assert.Empty(t, h.mux.Killed())
		assert.Equal(t, "Close window", h.tw.Title())

		h.press("y", mux.ModNone)
		h.runUntil(func() bool { return len(h.mux.Killed()) == 1 })
	})

	t.Run("declined", func(t *testing.T) {
		h := newHarness(t, nil)
		h.win.SetClosable(false)
		assert.False(t, h.tw.CanClose())

		h.press(mux.KeyEscape, mux.ModNone)
		h.runUntil(func() bool {
			_, shown := h.tw.TabOverlay(h.tab.ID())
			return !shown
		})
		assert.Empty(t, h.mux.Killed())
	})
}

func TestTabBar(t *testing.T) {
	h := newHarness(t, nil)
	h.addTab()
	h.tw.UpdateTitle()

	items := h.tw.TabBar()
	require.Len(t, items, 2)
	assert.Equal(t, TabBarItem{Title: " 1: pane ", Active: false}, items[0])
	assert.Equal(t, TabBarItem{Title: " 2: pane ", Active: true}, items[1])

	idx, ok := h.tw.TabAtColumn(0)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
	idx, ok = h.tw.TabAtColumn(9)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	_, ok = h.tw.TabAtColumn(18)
	assert.False(t, ok)
}

func TestTabBar_TruncatesLongTitles(t *testing.T) {
	h := newHarness(t, nil)
	h.pane.SetTitle("a very long title that does not fit")
	h.tw.UpdateTitle()

	items := h.tw.TabBar()
	require.Len(t, items, 1)
	assert.LessOrEqual(t, len([]rune(items[0].Title)), tabTitleWidth)
}
