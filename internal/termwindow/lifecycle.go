package termwindow

import (
	"context"
	"time"

	"github.com/tbung/wezterm/internal/cursor"
	"github.com/tbung/wezterm/internal/mux"
	"github.com/tbung/wezterm/internal/scripting"
)

// recreateDelay is how long a window that lost its rendering context
// waits before a replacement is requested.
const recreateDelay = 300 * time.Millisecond

// FocusChanged records a change of input focus.
func (tw *TermWindow) FocusChanged(focused bool) {
	now := tw.now()
	tw.focused = focused
	tw.focusedAt = now
	tw.mouse = mouseState{}
	tw.blinker.Reset(now)
	tw.invalidate()

	if pane, ok := tw.ActivePaneOrOverlay(); ok {
		pane.FocusChanged(focused)
	}
	tw.emit(scripting.EventWindowFocusChanged, focused)
}

// FocusedAt returns when focus last changed.
func (tw *TermWindow) FocusedAt() time.Time {
	return tw.focusedAt
}

// Close closes the window system window. Pending closures posted by the
// window's tasks are dropped.
func (tw *TermWindow) Close() {
	if tw.closed {
		return
	}
	tw.closed = true
	tw.renderState = nil
	if tw.window != nil {
		tw.window.Close()
	}
}

// ContextLost replaces the window after its rendering context went away.
// The state moves to a successor that is opened after a short delay; this
// window is closed. It returns the successor.
func (tw *TermWindow) ContextLost() *TermWindow {
	next := tw.successor()
	tw.replacedBy = next
	tw.Close()

	_, err := tw.scheduler.Spawn("recreate window", func(ctx context.Context) error {
		timer := time.NewTimer(recreateDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
		return tw.executor.Post(func() {
			if err := next.Open(); err != nil {
				next.logger.Error("cannot recreate window", "err", err)
			}
		})
	})
	if err != nil {
		tw.logger.Error("cannot schedule window recreation", "err", err)
	}
	return next
}

// successor copies the window state into a fresh, unattached window.
func (tw *TermWindow) successor() *TermWindow {
	next := &TermWindow{
		mux:             tw.mux,
		muxWindow:       tw.muxWindow,
		store:           tw.store,
		executor:        tw.executor,
		scheduler:       tw.scheduler,
		fonts:           tw.fonts,
		conn:            tw.conn,
		newRenderState:  tw.newRenderState,
		clip:            tw.clip,
		clipCell:        tw.clipCell,
		scripts:         tw.scripts,
		spawner:         tw.spawner,
		logger:          tw.logger,
		now:             tw.now,
		autoMaintenance: tw.autoMaintenance,

		configHandle:  tw.configHandle,
		cfg:           tw.cfg,
		overrides:     tw.overrides,
		palette:       tw.palette,
		background:    tw.background,
		inputMap:      tw.inputMap,
		geom:          tw.geom,
		showTabBar:    tw.showTabBar,
		showScrollBar: tw.showScrollBar,
		tabBar:        tw.tabBar,
		title:         tw.title,
		focused:       tw.focused,
		focusedAt:     tw.focusedAt,

		tabs:    make(map[mux.TabID]*tabState, len(tw.tabs)),
		panes:   make(map[mux.PaneID]*paneState, len(tw.panes)),
		blinker: cursor.NewBlinker(tw.now()),
	}
	for id, st := range tw.tabs {
		cp := *st
		next.tabs[id] = &cp
	}
	for id, st := range tw.panes {
		cp := *st
		next.panes[id] = &cp
	}
	return next
}
