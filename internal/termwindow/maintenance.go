package termwindow

import (
	"context"
	"time"

	"github.com/tbung/wezterm/internal/cursor"
	"github.com/tbung/wezterm/internal/mux"
)

// PeriodicMaintenance runs one maintenance tick and reports whether the
// window is still open. A tick reloads a stale configuration, closes the
// window once its multiplexer window has no panes left, and otherwise
// repaints at most once if the cursor is due to blink, a visible row
// changed, or the multiplexer invalidated the window.
func (tw *TermWindow) PeriodicMaintenance() bool {
	if tw.closed {
		return false
	}
	if tw.store.Generation() != tw.configHandle.Generation() {
		tw.ConfigWasReloaded()
	}

	panes := tw.renderedPanes()
	if len(panes) == 0 {
		tw.Close()
		return false
	}

	needsInvalidate := tw.blinkDue()

	for _, rp := range panes {
		pane := rp.Pane
		dims := pane.Dimensions()
		top := tw.viewportTop(rp.key, dims)
		dirty := pane.DirtyLines(top, top+mux.StableRowIndex(dims.ViewportRows))
		if len(dirty) == 0 {
			continue
		}
		needsInvalidate = true
		// viewport-aware overlays leave the covered selection alone
		if _, aware := pane.(mux.ViewportAware); aware {
			continue
		}
		if st, ok := tw.panes[rp.key]; ok && st.selection.IntersectsRows(dirty) {
			st.selection.Clear()
		}
	}

	if w, ok := tw.muxWindowState(); ok && w.CheckAndResetInvalidated() {
		needsInvalidate = true
	}
	if tw.refreshScrollbar() {
		needsInvalidate = true
	}

	if needsInvalidate {
		tw.invalidate()
	}
	return true
}

// blinkDue reports whether the active pane's cursor needs a blink repaint.
func (tw *TermWindow) blinkDue() bool {
	view, ok := tw.ActivePaneOrOverlay()
	if !ok {
		return false
	}
	interval := tw.cfg.CursorBlinkInterval()
	shape := view.CursorPosition().Shape
	if !cursor.ShouldBlink(interval, shape, tw.cfg.DefaultCursorShape(), tw.focused) {
		return false
	}
	return tw.blinker.Due(tw.now(), interval)
}

// StartPeriodicMaintenance runs PeriodicMaintenance on the window goroutine
// at the configured interval until the window closes or the scheduler
// shuts down.
func (tw *TermWindow) StartPeriodicMaintenance() {
	interval := tw.cfg.MaintenanceInterval()
	stopped := make(chan struct{})
	_, err := tw.scheduler.Spawn("maintenance", func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-stopped:
				return nil
			case <-ticker.C:
			}
			err := tw.executor.Post(func() {
				if !tw.PeriodicMaintenance() {
					select {
					case <-stopped:
					default:
						close(stopped)
					}
				}
			})
			if err != nil {
				return nil
			}
		}
	})
	if err != nil {
		tw.logger.Error("cannot start maintenance", "err", err)
	}
}

// FramePainted is called by the render surface after a repaint. Rows
// painted are no longer dirty and the text cursor may have moved.
func (tw *TermWindow) FramePainted() {
	for _, rp := range tw.renderedPanes() {
		if dc, ok := rp.Pane.(dirtyClearer); ok {
			dc.ClearDirty()
		}
	}
	tw.UpdateTextCursor()
}
