package termwindow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbung/wezterm/internal/config"
	"github.com/tbung/wezterm/internal/logging"
	"github.com/tbung/wezterm/internal/scripting"
)

const scrollBarOn = `{"enable_scroll_bar": true}`

func TestSetConfigOverrides(t *testing.T) {
	h := newHarness(t, nil)

	require.NoError(t, h.tw.SetConfigOverrides(scrollBarOn))
	assert.True(t, h.tw.ShowScrollBar())
	assert.True(t, h.tw.Config().EnableScrollBar)
	assert.False(t, h.store.Current().Config.EnableScrollBar)
	assert.Equal(t, 1, h.ops.configChanges)

	// the same document again is a no-op
	require.NoError(t, h.tw.SetConfigOverrides(scrollBarOn))
	assert.Equal(t, 1, h.ops.configChanges)

	require.NoError(t, h.tw.SetConfigOverrides(""))
	assert.False(t, h.tw.ShowScrollBar())
	assert.Empty(t, h.tw.ConfigOverrides())
}

func TestSetConfigOverrides_RejectsInvalidDocument(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.tw.SetConfigOverrides(scrollBarOn))

	for _, doc := range []string{`{"enable_scroll_bar": `, `[1, 2]`, `{"no_such_option": 1}`} {
		err := h.tw.SetConfigOverrides(doc)
		assert.ErrorIs(t, err, config.ErrInvalidOverrides, doc)
		var opErr *OperationError
		assert.ErrorAs(t, err, &opErr)
	}
	assert.Equal(t, scrollBarOn, h.tw.ConfigOverrides())
	assert.True(t, h.tw.ShowScrollBar())
}

func TestSetConfigOverrides_SurvivesReload(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.tw.SetConfigOverrides(scrollBarOn))

	next := h.store.Current().Config.Clone()
	next.InitialRows = 30
	h.store.Set(next)
	h.tick()

	assert.Equal(t, 30, h.tw.Config().InitialRows)
	assert.True(t, h.tw.ShowScrollBar())
}

func TestBackgroundImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bg.png")
	require.NoError(t, os.WriteFile(path, []byte("image bytes"), 0o600))

	h := newHarness(t, func(c *config.Config) { c.WindowBackgroundImage = path })
	img, ok := h.tw.BackgroundImage()
	require.True(t, ok)
	assert.Equal(t, []byte("image bytes"), img.Data)

	// unchanged content keeps the loaded image
	h.tw.ConfigWasReloaded()
	again, ok := h.tw.BackgroundImage()
	require.True(t, ok)
	assert.Same(t, img, again)

	require.NoError(t, os.WriteFile(path, []byte("new bytes"), 0o600))
	h.tw.ConfigWasReloaded()
	again, _ = h.tw.BackgroundImage()
	assert.Equal(t, []byte("new bytes"), again.Data)
}

func TestBackgroundImage_MissingFile(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.WindowBackgroundImage = filepath.Join(t.TempDir(), "missing.png")
	})
	_, ok := h.tw.BackgroundImage()
	assert.False(t, ok)
}

func newScripts(t *testing.T, code string) *scripting.Engine {
	t.Helper()
	e := scripting.New(logging.Discard())
	t.Cleanup(func() { _ = e.Close() })
	require.NoError(t, e.DoString(code))
	return e
}

func TestConfigReloadedHandlerSetsOverrides(t *testing.T) {
	e := newScripts(t, `
wezterm.on("window-config-reloaded", function(win)
  win:set_config_overrides({ enable_scroll_bar = true })
end)
`)
	h := newHarness(t, nil, withScripts(e))

	h.store.Set(h.store.Current().Config.Clone())
	h.tick()
	h.runUntil(h.tw.ShowScrollBar)
	assert.JSONEq(t, scrollBarOn, h.tw.ConfigOverrides())
}

func TestFormatWindowTitleHandler(t *testing.T) {
	e := newScripts(t, `
wezterm.on("format-window-title", function(win, title)
  return "<" .. title .. ">"
end)
`)
	h := newHarness(t, nil, withScripts(e))
	assert.Equal(t, "<pane>", h.tw.Title())

	h.addTab()
	h.tw.UpdateTitle()
	assert.Equal(t, "<[2/2] pane>", h.tw.Title())
	assert.Equal(t, "<[2/2] pane>", h.ops.titles[len(h.ops.titles)-1])
}

func TestReloadConfiguration(t *testing.T) {
	t.Run("no path", func(t *testing.T) {
		h := newHarness(t, nil)
		assert.ErrorIs(t, h.tw.ReloadConfiguration(), config.ErrNoConfigPath)
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "wezterm.toml")
		require.NoError(t, os.WriteFile(path, []byte("enable_scroll_bar = true\n"), 0o600))
		store := config.NewStore(path, config.Default(), logging.Discard())
		h := newHarness(t, nil, withStore(store))
		require.False(t, h.tw.ShowScrollBar())

		require.NoError(t, h.tw.ReloadConfiguration())
		assert.True(t, h.tw.ShowScrollBar())
		gen := h.store.Generation()

		require.NoError(t, os.WriteFile(path, []byte("font_size = [\n"), 0o600))
		assert.Error(t, h.tw.ReloadConfiguration())
		assert.Equal(t, gen, h.store.Generation())
		assert.True(t, h.tw.ShowScrollBar())
	})
}
