// Package termwindow holds the state of one on-screen terminal window: the
// overlays covering its tabs and panes, per-pane viewports and selections,
// its geometry and the periodic maintenance that decides when to repaint.
//
// A TermWindow is not safe for concurrent use. Every method must be called
// from the goroutine driving the window's spawn.Executor; background tasks
// reach the window by posting closures to that executor.
package termwindow

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tbung/wezterm/internal/clipboard"
	"github.com/tbung/wezterm/internal/config"
	"github.com/tbung/wezterm/internal/cursor"
	"github.com/tbung/wezterm/internal/font"
	"github.com/tbung/wezterm/internal/geometry"
	"github.com/tbung/wezterm/internal/mux"
	"github.com/tbung/wezterm/internal/scripting"
	"github.com/tbung/wezterm/internal/selection"
	"github.com/tbung/wezterm/internal/spawn"
	"github.com/tbung/wezterm/internal/viewport"
)

// Options configures a TermWindow. Mux, Store, Executor and Scheduler are
// required.
type Options struct {
	Mux       mux.Mux
	WindowID  mux.WindowID
	Store     *config.Store
	Executor  *spawn.Executor
	Scheduler *spawn.Scheduler

	// Fonts defaults to a font.Scaler for the current configuration.
	Fonts          FontConfig
	Conn           Connection
	NewRenderState RenderStateFactory
	// Clipboard defaults to an in-process clipboard.
	Clipboard clipboard.Provider
	Scripts   *scripting.Engine
	Spawner   Spawner
	Logger    *log.Logger

	// AutoMaintenance starts the maintenance tick when the window is
	// created.
	AutoMaintenance bool

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

type tabState struct {
	overlay mux.Pane
}

type paneState struct {
	viewport  viewport.Position
	selection selection.Selection
	overlay   mux.Pane
}

// TermWindow is the state of one terminal window.
type TermWindow struct {
	mux             mux.Mux
	muxWindow       mux.WindowID
	store           *config.Store
	executor        *spawn.Executor
	scheduler       *spawn.Scheduler
	fonts           FontConfig
	conn            Connection
	newRenderState  RenderStateFactory
	clip            clipboard.Provider
	clipCell        *clipboard.Cell
	scripts         *scripting.Engine
	spawner         Spawner
	logger          *log.Logger
	now             func() time.Time
	autoMaintenance bool

	window      WindowOps
	renderState RenderState
	closed      bool
	// replacedBy is the window that took over after a context loss.
	replacedBy *TermWindow

	configHandle config.Handle
	cfg          *config.Config
	overrides    string
	palette      config.Palette
	background   *BackgroundImage
	inputMap     map[chord]KeyAssignment

	geom          geometry.Snapshot
	showTabBar    bool
	showScrollBar bool
	tabBar        []TabBarItem
	title         string
	scrollbarSeen bool
	scrollbarDims mux.Dimensions

	tabs  map[mux.TabID]*tabState
	panes map[mux.PaneID]*paneState

	focused   bool
	focusedAt time.Time
	blinker   *cursor.Blinker
	mouse     mouseState
}

// New creates the window state for the multiplexer window opts.WindowID,
// sized from the configured initial rows and cols. The window is not shown
// until Open or Created.
func New(opts Options) (*TermWindow, error) {
	if opts.Mux == nil || opts.Store == nil || opts.Executor == nil || opts.Scheduler == nil {
		return nil, opError("new", errors.New("mux, store, executor and scheduler are required"))
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = &clipboard.Memory{}
	}

	tw := &TermWindow{
		mux:             opts.Mux,
		muxWindow:       opts.WindowID,
		store:           opts.Store,
		executor:        opts.Executor,
		scheduler:       opts.Scheduler,
		fonts:           opts.Fonts,
		conn:            opts.Conn,
		newRenderState:  opts.NewRenderState,
		clip:            clip,
		clipCell:        &clipboard.Cell{},
		scripts:         opts.Scripts,
		spawner:         opts.Spawner,
		logger:          logger.With("window", uint64(opts.WindowID)),
		now:             now,
		autoMaintenance: opts.AutoMaintenance,
		tabs:            make(map[mux.TabID]*tabState),
		panes:           make(map[mux.PaneID]*paneState),
		blinker:         cursor.NewBlinker(now()),
	}
	tw.applyConfig(tw.store.Current())
	if tw.fonts == nil {
		tw.fonts = font.NewScaler(tw.cfg)
	}

	w, ok := tw.mux.Window(tw.muxWindow)
	if !ok {
		return nil, opError("new", ErrNoSuchWindow)
	}
	tw.showTabBar = tw.cfg.ShowTabBar(w.Len())

	cell, err := tw.fonts.Metrics()
	if err != nil {
		return nil, opError("new", err)
	}
	initial := geometry.RowsAndCols{Rows: tw.cfg.InitialRows, Cols: tw.cfg.InitialCols}
	size, dims := tw.layout().ScalePreserving(initial, cell, tw.cfg.EffectiveDPI())
	tw.geom = geometry.Snapshot{Dimensions: dims, Terminal: size, Cell: cell}
	for _, tab := range w.Tabs() {
		tab.Resize(size)
	}
	return tw, nil
}

// Open asks the connection for a window system window and completes
// creation.
func (tw *TermWindow) Open() error {
	if tw.conn == nil {
		return opError("open", ErrNoConnection)
	}
	dims := tw.geom.Dimensions
	ops, err := tw.conn.NewWindow(tw.cfg.WindowClass, dims.PixelWidth, dims.PixelHeight, tw)
	if err != nil {
		return opError("open", err)
	}
	tw.Created(ops)
	return nil
}

// Created attaches the window system window and builds its render state.
// It panics when no render state can be built: a window cannot run
// without one.
func (tw *TermWindow) Created(ops WindowOps) {
	tw.window = ops
	if tw.newRenderState == nil {
		panic(&OperationError{Op: "created", Err: ErrNoRenderState})
	}
	rs, err := tw.newRenderState(ops)
	if err != nil {
		panic(&OperationError{Op: "created", Err: fmt.Errorf("%w: %w", ErrNoRenderState, err)})
	}
	tw.renderState = rs
	tw.closed = false
	tw.blinker.Reset(tw.now())

	tw.UpdateTitle()
	ops.Show()
	if tw.autoMaintenance {
		tw.StartPeriodicMaintenance()
	}
}

// MuxWindowID returns the multiplexer window shown by this window.
func (tw *TermWindow) MuxWindowID() mux.WindowID { return tw.muxWindow }

// Config returns the effective configuration, overrides applied.
func (tw *TermWindow) Config() *config.Config { return tw.cfg }

// Palette returns the colors to paint with.
func (tw *TermWindow) Palette() config.Palette { return tw.palette }

// Geometry returns the current geometry snapshot.
func (tw *TermWindow) Geometry() geometry.Snapshot { return tw.geom }

// ShowTabBar reports whether the tab bar is shown.
func (tw *TermWindow) ShowTabBar() bool { return tw.showTabBar }

// ShowScrollBar reports whether the scroll bar is shown.
func (tw *TermWindow) ShowScrollBar() bool { return tw.showScrollBar }

// Title returns the last title pushed to the window system.
func (tw *TermWindow) Title() string { return tw.title }

// Focused reports whether the window has input focus.
func (tw *TermWindow) Focused() bool { return tw.focused }

// CursorVisible reports whether the text cursor is in its shown blink
// phase.
func (tw *TermWindow) CursorVisible() bool { return tw.blinker.Visible() }

// Closed reports whether the window has been closed.
func (tw *TermWindow) Closed() bool { return tw.closed }

func (tw *TermWindow) tabState(id mux.TabID) *tabState {
	st, ok := tw.tabs[id]
	if !ok {
		st = &tabState{}
		tw.tabs[id] = st
	}
	return st
}

func (tw *TermWindow) paneState(id mux.PaneID) *paneState {
	st, ok := tw.panes[id]
	if !ok {
		st = &paneState{}
		st.selection.WordBoundary = tw.cfg.SelectionWordBoundary
		tw.panes[id] = st
	}
	return st
}

func (tw *TermWindow) muxWindowState() (mux.Window, bool) {
	return tw.mux.Window(tw.muxWindow)
}

func (tw *TermWindow) activeTab() (mux.Tab, bool) {
	return tw.mux.ActiveTab(tw.muxWindow)
}

func (tw *TermWindow) invalidate() {
	if tw.window != nil {
		tw.window.Invalidate()
	}
}

func (tw *TermWindow) layout() geometry.Layout {
	return geometry.Layout{
		Padding:   tw.cfg.Padding(),
		ScrollBar: tw.showScrollBar,
		TabBar:    tw.showTabBar,
	}
}

// post runs fn on the window goroutine, passing the window that holds
// tw's state by then. The closure is dropped once that window has closed.
func (tw *TermWindow) post(fn func(w *TermWindow)) error {
	return tw.executor.Post(func() {
		if w := tw.live(); w != nil {
			fn(w)
		}
	})
}

// live follows context-loss replacements to the current window. It
// returns nil when that window is closed.
func (tw *TermWindow) live() *TermWindow {
	w := tw
	for w.replacedBy != nil {
		w = w.replacedBy
	}
	if w.closed {
		return nil
	}
	return w
}
