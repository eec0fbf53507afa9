package termwindow

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tbung/wezterm/internal/clipboard"
	"github.com/tbung/wezterm/internal/config"
	"github.com/tbung/wezterm/internal/geometry"
	"github.com/tbung/wezterm/internal/logging"
	"github.com/tbung/wezterm/internal/mux"
	"github.com/tbung/wezterm/internal/mux/memmux"
	"github.com/tbung/wezterm/internal/scripting"
	"github.com/tbung/wezterm/internal/spawn"
)

var errSurface = errors.New("surface lost")

type fakeWindow struct {
	invalidations int
	titles        []string
	innerSizes    [][2]int
	cursorRects   []geometry.Rect
	shown         int
	hidden        int
	fullscreen    int
	configChanges int
	closed        int
}

func (w *fakeWindow) Invalidate() { w.invalidations++ }

func (w *fakeWindow) SetTitle(title string) { w.titles = append(w.titles, title) }

func (w *fakeWindow) SetInnerSize(width, height int) {
	w.innerSizes = append(w.innerSizes, [2]int{width, height})
}

func (w *fakeWindow) SetTextCursorPosition(rect geometry.Rect) {
	w.cursorRects = append(w.cursorRects, rect)
}

func (w *fakeWindow) Show() { w.shown++ }

func (w *fakeWindow) Hide() { w.hidden++ }

func (w *fakeWindow) ToggleFullscreen() { w.fullscreen++ }

func (w *fakeWindow) ConfigDidChange(*config.Config) { w.configChanges++ }

func (w *fakeWindow) Close() { w.closed++ }

func (w *fakeWindow) lastInnerSize() [2]int {
	if len(w.innerSizes) == 0 {
		return [2]int{}
	}
	return w.innerSizes[len(w.innerSizes)-1]
}

type fakeRenderState struct {
	fail        bool
	advised     [][2]int
	cacheClears int
}

func (r *fakeRenderState) AdviseOfWindowSizeChange(_ geometry.CellSize, width, height int) error {
	if r.fail {
		return errSurface
	}
	r.advised = append(r.advised, [2]int{width, height})
	return nil
}

func (r *fakeRenderState) ClearShapeCache() { r.cacheClears++ }

type fakeConn struct {
	windows    []*fakeWindow
	hidden     int
	terminated int
}

func (c *fakeConn) NewWindow(string, int, int, *TermWindow) (WindowOps, error) {
	w := &fakeWindow{}
	c.windows = append(c.windows, w)
	return w, nil
}

func (c *fakeConn) HideApplication() { c.hidden++ }

func (c *fakeConn) TerminateMessageLoop() { c.terminated++ }

// scaledFonts reports an 8x16 cell at scale 1.0 and 96 DPI, scaled
// linearly with both.
type scaledFonts struct {
	scale float64
	dpi   int
}

func (f *scaledFonts) FontScale() float64 { return f.scale }

func (f *scaledFonts) ChangeScaling(scale float64, dpi int) (float64, int) {
	prevScale, prevDPI := f.scale, f.dpi
	f.scale, f.dpi = scale, dpi
	return prevScale, prevDPI
}

func (f *scaledFonts) Metrics() (geometry.CellSize, error) {
	factor := f.scale * geometry.DPIScale(f.dpi)
	cell := geometry.CellSize{
		Width:  int(math.Round(8 * factor)),
		Height: int(math.Round(16 * factor)),
	}
	if cell.Width < 1 || cell.Height < 1 {
		return geometry.CellSize{}, errors.New("degenerate")
	}
	return cell, nil
}

func (f *scaledFonts) ConfigChanged(*config.Config) {}

// tabSpawner opens a new buffer tab in the memmux window.
type tabSpawner struct {
	mux   *memmux.Mux
	win   *memmux.Window
	calls [][]string
}

func (s *tabSpawner) SpawnTab(_ mux.WindowID, args []string) error {
	s.calls = append(s.calls, args)
	size := mux.Size{Rows: 24, Cols: 80}
	if tabs := s.win.Tabs(); len(tabs) > 0 {
		size = tabs[0].Size()
	}
	s.mux.NewTab(s.win, size)
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type harness struct {
	t       *testing.T
	mux     *memmux.Mux
	win     *memmux.Window
	tab     *memmux.Tab
	pane    *memmux.BufferPane
	store   *config.Store
	exec    *spawn.Executor
	sched   *spawn.Scheduler
	fonts   *scaledFonts
	conn    *fakeConn
	spawner *tabSpawner
	clip    *clipboard.Memory
	clock   *fakeClock
	rs      *fakeRenderState
	ops     *fakeWindow
	tw      *TermWindow
}

type harnessOption func(*Options)

func withScripts(e *scripting.Engine) harnessOption {
	return func(o *Options) { o.Scripts = e }
}

func withStore(s *config.Store) harnessOption {
	return func(o *Options) { o.Store = s }
}

// newHarness builds a created window over a single-tab memmux window. The
// optional mutate edits the default configuration first.
func newHarness(t *testing.T, mutate func(*config.Config), opts ...harnessOption) *harness {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())

	logger := logging.Discard()
	h := &harness{
		t:     t,
		mux:   memmux.New(),
		store: config.NewStore("", cfg, logger),
		exec:  spawn.NewExecutor(logger),
		sched: spawn.NewScheduler(context.Background(), logger),
		fonts: &scaledFonts{scale: 1.0, dpi: geometry.DefaultDPI},
		conn:  &fakeConn{},
		clip:  &clipboard.Memory{},
		clock: &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		rs:    &fakeRenderState{},
		ops:   &fakeWindow{},
	}
	t.Cleanup(h.sched.Shutdown)

	h.win = h.mux.NewWindow()
	h.tab, h.pane = h.mux.NewTab(h.win, mux.Size{Rows: 24, Cols: 80})
	h.spawner = &tabSpawner{mux: h.mux, win: h.win}

	o := Options{
		Mux:            h.mux,
		WindowID:       h.win.ID(),
		Store:          h.store,
		Executor:       h.exec,
		Scheduler:      h.sched,
		Fonts:          h.fonts,
		Conn:           h.conn,
		NewRenderState: func(WindowOps) (RenderState, error) { return h.rs, nil },
		Clipboard:      h.clip,
		Spawner:        h.spawner,
		Logger:         logger,
		Now:            h.clock.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	h.store = o.Store
	tw, err := New(o)
	require.NoError(t, err)
	tw.Created(h.ops)
	h.tw = tw
	return h
}

// addTab appends a tab holding a single buffer pane and makes it active.
func (h *harness) addTab() (*memmux.Tab, *memmux.BufferPane) {
	return h.mux.NewTab(h.win, h.tab.Size())
}

// fill appends n rows to the pane and clears its dirty state.
func (h *harness) fill(n int) {
	rows := make([]string, n)
	for i := range rows {
		rows[i] = "row"
	}
	h.pane.AppendText(rows...)
	h.pane.ClearDirty()
}

// runUntil drives the executor on the test goroutine until cond holds.
func (h *harness) runUntil(cond func() bool) {
	h.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			h.t.Fatal("condition not reached")
		}
		select {
		case <-h.exec.Ready():
			h.exec.RunPending()
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// settle runs closures until at least n more have executed.
func (h *harness) settle(n uint64) {
	h.t.Helper()
	target := h.exec.Executed() + n
	h.runUntil(func() bool { return h.exec.Executed() >= target })
}

// tick returns the invalidations caused by one maintenance tick.
func (h *harness) tick() int {
	before := h.ops.invalidations
	h.tw.PeriodicMaintenance()
	return h.ops.invalidations - before
}

// quiesce drops every pending invalidation source.
func (h *harness) quiesce() {
	h.pane.ClearDirty()
	h.win.CheckAndResetInvalidated()
	h.tw.PeriodicMaintenance()
}

func (h *harness) press(key string, mods mux.Modifiers) bool {
	return h.tw.KeyEvent(mux.KeyEvent{Key: key, Mods: mods})
}

func readClipboard(t *testing.T, c clipboard.Provider, src clipboard.Source) string {
	t.Helper()
	ch := make(chan string, 1)
	c.GetContents(src, func(text string, _ error) { ch <- text })
	select {
	case text := <-ch:
		return text
	case <-time.After(time.Second):
		t.Fatal("clipboard read timed out")
		return ""
	}
}
