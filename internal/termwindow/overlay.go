package termwindow

import (
	"context"
	"errors"
	"fmt"

	"github.com/tbung/wezterm/internal/clipboard"
	"github.com/tbung/wezterm/internal/config"
	"github.com/tbung/wezterm/internal/mux"
	"github.com/tbung/wezterm/internal/overlay"
	"github.com/tbung/wezterm/internal/selection"
)

// AssignTabOverlay installs pane as the overlay of tab tabID. An overlay it
// replaces is released to the multiplexer.
func (tw *TermWindow) AssignTabOverlay(tabID mux.TabID, pane mux.Pane) {
	st := tw.tabState(tabID)
	prior := st.overlay
	st.overlay = pane
	tw.release(prior, pane)
	tw.UpdateTitle()
}

// AssignPaneOverlay installs pane as the overlay of pane paneID. An overlay
// it replaces is released to the multiplexer.
func (tw *TermWindow) AssignPaneOverlay(paneID mux.PaneID, pane mux.Pane) {
	st := tw.paneState(paneID)
	prior := st.overlay
	st.overlay = pane
	tw.release(prior, pane)
	tw.UpdateTitle()
}

// CancelTabOverlay removes the overlay of tab tabID. When expected is set
// and names a different pane than the installed overlay, the overlay was
// replaced after the cancellation was requested and nothing happens. It
// reports whether an overlay was removed.
func (tw *TermWindow) CancelTabOverlay(tabID mux.TabID, expected *mux.PaneID) bool {
	st, ok := tw.tabs[tabID]
	if !ok || st.overlay == nil {
		return false
	}
	if expected != nil && st.overlay.ID() != *expected {
		return false
	}
	prior := st.overlay
	st.overlay = nil
	tw.release(prior, nil)
	tw.UpdateTitle()
	tw.invalidate()
	return true
}

// CancelPaneOverlay removes the overlay of pane paneID and reports whether
// there was one.
func (tw *TermWindow) CancelPaneOverlay(paneID mux.PaneID) bool {
	st, ok := tw.panes[paneID]
	if !ok || st.overlay == nil {
		return false
	}
	prior := st.overlay
	st.overlay = nil
	tw.release(prior, nil)
	tw.UpdateTitle()
	tw.invalidate()
	return true
}

// TabOverlay returns the overlay of tab tabID.
func (tw *TermWindow) TabOverlay(tabID mux.TabID) (mux.Pane, bool) {
	st, ok := tw.tabs[tabID]
	if !ok || st.overlay == nil {
		return nil, false
	}
	return st.overlay, true
}

// PaneOverlay returns the overlay of pane paneID.
func (tw *TermWindow) PaneOverlay(paneID mux.PaneID) (mux.Pane, bool) {
	st, ok := tw.panes[paneID]
	if !ok || st.overlay == nil {
		return nil, false
	}
	return st.overlay, true
}

// release hands prior back to the multiplexer unless it is being
// reinstalled. Viewport and selection kept under its id go with it.
func (tw *TermWindow) release(prior, replacement mux.Pane) {
	if prior == nil {
		return
	}
	if replacement != nil && prior.ID() == replacement.ID() {
		return
	}
	delete(tw.panes, prior.ID())
	tw.mux.RemovePane(prior.ID())
}

// ActivePaneOrOverlay returns the pane that receives input: the tab's
// overlay, else the overlay of the tab's active pane, else that pane.
func (tw *TermWindow) ActivePaneOrOverlay() (mux.Pane, bool) {
	view, _, ok := tw.activeView()
	return view, ok
}

// ActivePaneNoOverlay returns the active pane of the active tab, ignoring
// overlays.
func (tw *TermWindow) ActivePaneNoOverlay() (mux.Pane, bool) {
	tab, ok := tw.activeTab()
	if !ok {
		return nil, false
	}
	pane := tab.ActivePane()
	return pane, pane != nil
}

// activeView returns the pane shown for the active pane along with the id
// its viewport and selection are kept under. A pane overlay shares the
// state of the pane it covers; a tab overlay has its own.
func (tw *TermWindow) activeView() (mux.Pane, mux.PaneID, bool) {
	tab, ok := tw.activeTab()
	if !ok {
		return nil, 0, false
	}
	if ov, ok := tw.TabOverlay(tab.ID()); ok {
		return ov, ov.ID(), true
	}
	pane := tab.ActivePane()
	if pane == nil {
		return nil, 0, false
	}
	if ov, ok := tw.PaneOverlay(pane.ID()); ok {
		return ov, pane.ID(), true
	}
	return pane, pane.ID(), true
}

type renderedPane struct {
	mux.PositionedPane
	key mux.PaneID
}

func (tw *TermWindow) renderedPanes() []renderedPane {
	tab, ok := tw.activeTab()
	if !ok {
		return nil
	}
	if ov, ok := tw.TabOverlay(tab.ID()); ok {
		size := tab.Size()
		return []renderedPane{{
			PositionedPane: mux.PositionedPane{
				IsActive:    true,
				Width:       size.Cols,
				Height:      size.Rows,
				PixelWidth:  size.PixelWidth,
				PixelHeight: size.PixelHeight,
				Pane:        ov,
			},
			key: ov.ID(),
		}}
	}

	positioned := tab.Panes()
	out := make([]renderedPane, 0, len(positioned))
	for _, pos := range positioned {
		key := pos.Pane.ID()
		if ov, ok := tw.PaneOverlay(key); ok {
			pos.Pane = ov
		}
		out = append(out, renderedPane{PositionedPane: pos, key: key})
	}
	return out
}

// PanesToRender returns the panes to paint. A tab overlay covers the whole
// tab; pane overlays replace the pane they cover.
func (tw *TermWindow) PanesToRender() []mux.PositionedPane {
	rendered := tw.renderedPanes()
	out := make([]mux.PositionedPane, len(rendered))
	for i, rp := range rendered {
		out[i] = rp.PositionedPane
	}
	return out
}

// PaneView is a pane ready to paint.
type PaneView struct {
	mux.PositionedPane
	// ViewportTop is the stable index of the top visible row.
	ViewportTop mux.StableRowIndex
	Selection   selection.Range
	Selected    bool
}

// PaneViews returns PanesToRender along with each pane's viewport and
// selection.
func (tw *TermWindow) PaneViews() []PaneView {
	rendered := tw.renderedPanes()
	out := make([]PaneView, 0, len(rendered))
	for _, rp := range rendered {
		v := PaneView{
			PositionedPane: rp.PositionedPane,
			ViewportTop:    tw.viewportTop(rp.key, rp.Pane.Dimensions()),
		}
		v.Selection, v.Selected = tw.Selection(rp.key)
		out = append(out, v)
	}
	return out
}

// Splits returns the dividers to paint. A tab overlay hides them.
func (tw *TermWindow) Splits() []mux.PositionedSplit {
	tab, ok := tw.activeTab()
	if !ok {
		return nil
	}
	if _, ok := tw.TabOverlay(tab.ID()); ok {
		return nil
	}
	return tab.Splits()
}

// overlayTask runs against an overlay. The returned continuation runs on
// the window goroutine with the window holding the state at that time.
type overlayTask func(ctx context.Context, term *overlay.Term) (then func(w *TermWindow), err error)

// startTabOverlay covers tab with a fresh overlay and runs task against it
// on the scheduler. When the task ends the overlay is cancelled on the
// window goroutine, followed by the task's continuation.
func (tw *TermWindow) startTabOverlay(tab mux.Tab, title string, task overlayTask) (*overlay.Term, error) {
	size := tab.Size()
	term := overlay.NewTerm(tw.mux.AllocPaneID(), title, size.Cols, size.Rows)
	tabID, termID := tab.ID(), term.ID()
	tw.AssignTabOverlay(tabID, term)

	_, err := tw.scheduler.Spawn(title, func(ctx context.Context) error {
		then, err := task(ctx, term)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		postErr := tw.post(func(w *TermWindow) {
			w.CancelTabOverlay(tabID, &termID)
			if then != nil {
				then(w)
			}
		})
		return errors.Join(err, postErr)
	})
	if err != nil {
		tw.CancelTabOverlay(tabID, &termID)
		return nil, opError(title, err)
	}
	return term, nil
}

// watchPaneOverlay cancels ov once done is closed, unless it has been
// replaced in the meantime.
func (tw *TermWindow) watchPaneOverlay(name string, paneID mux.PaneID, ov mux.Pane, done <-chan struct{}) error {
	_, err := tw.scheduler.Spawn(name, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return nil
		case <-done:
		}
		return tw.post(func(w *TermWindow) {
			if cur, ok := w.PaneOverlay(paneID); ok && cur == ov {
				w.CancelPaneOverlay(paneID)
			}
		})
	})
	if err != nil {
		tw.CancelPaneOverlay(paneID)
		return opError(name, err)
	}
	return nil
}

// confirm asks message on an overlay covering tab and runs onYes on the
// window goroutine when the answer is yes.
func (tw *TermWindow) confirm(tab mux.Tab, title, message string, onYes func(w *TermWindow)) error {
	_, err := tw.startTabOverlay(tab, title, func(ctx context.Context, term *overlay.Term) (func(*TermWindow), error) {
		ok, err := overlay.Confirm(ctx, term, message)
		if err != nil || !ok {
			return nil, err
		}
		return onYes, nil
	})
	return err
}

// ShowTabNavigator lets the user pick a tab to activate.
func (tw *TermWindow) ShowTabNavigator() error {
	w, ok := tw.muxWindowState()
	if !ok {
		return opError("tab navigator", ErrNoSuchWindow)
	}
	tab, ok := tw.activeTab()
	if !ok {
		return nil
	}
	items := tabTitles(w.Tabs())
	sel := overlay.NewSelector("Tab Navigator", items, w.ActiveIndex())
	_, err := tw.startTabOverlay(tab, "Tab Navigator", func(ctx context.Context, term *overlay.Term) (func(*TermWindow), error) {
		idx, ok, err := overlay.Choose(ctx, term, sel)
		if err != nil || !ok {
			return nil, err
		}
		return func(w *TermWindow) {
			if err := w.ActivateTab(idx); err != nil {
				w.logger.Debug("tab navigator", "err", err)
			}
		}, nil
	})
	return err
}

// ShowLauncher lets the user pick a tab to activate or a configured launch
// menu entry to spawn.
func (tw *TermWindow) ShowLauncher() error {
	w, ok := tw.muxWindowState()
	if !ok {
		return opError("launcher", ErrNoSuchWindow)
	}
	tab, ok := tw.activeTab()
	if !ok {
		return nil
	}

	tabs := tabTitles(w.Tabs())
	menu := append([]config.LaunchItem(nil), tw.cfg.LaunchMenu...)
	items := make([]string, 0, len(tabs)+len(menu))
	for _, t := range tabs {
		items = append(items, "Tab: "+t)
	}
	for _, item := range menu {
		items = append(items, item.Label)
	}

	sel := overlay.NewSelector("Launcher", items, 0)
	_, err := tw.startTabOverlay(tab, "Launcher", func(ctx context.Context, term *overlay.Term) (func(*TermWindow), error) {
		idx, ok, err := overlay.Choose(ctx, term, sel)
		if err != nil || !ok {
			return nil, err
		}
		return func(w *TermWindow) {
			var err error
			if idx < len(tabs) {
				err = w.ActivateTab(idx)
			} else {
				err = w.SpawnTab(menu[idx-len(tabs)].Args)
			}
			if err != nil {
				w.logger.Error("launcher", "err", err)
			}
		}, nil
	})
	return err
}

// ShowSearch covers the active pane with a search for pattern.
func (tw *TermWindow) ShowSearch(pattern string) error {
	pane, ok := tw.ActivePaneNoOverlay()
	if !ok {
		return nil
	}
	paneID := pane.ID()
	search := overlay.NewSearch(tw.mux.AllocPaneID(), pane, pattern)
	search.ViewportChanged(tw.GetViewport(paneID))
	tw.AssignPaneOverlay(paneID, search)
	return tw.watchPaneOverlay("search", paneID, search, search.Done())
}

// ActivateCopyMode covers the active pane with copy mode. Yanked text goes
// to the clipboard and the primary selection.
func (tw *TermWindow) ActivateCopyMode() error {
	pane, ok := tw.ActivePaneNoOverlay()
	if !ok {
		return nil
	}
	paneID := pane.ID()
	cm := overlay.NewCopyMode(tw.mux.AllocPaneID(), pane, func(text string) {
		tw.copyText(clipboard.ClipboardAndPrimarySelection, text)
	})
	cm.ViewportChanged(tw.GetViewport(paneID))
	tw.AssignPaneOverlay(paneID, cm)
	return tw.watchPaneOverlay("copy mode", paneID, cm, cm.Done())
}

// QuitApplication terminates the message loop, asking first unless the
// configuration says never to.
func (tw *TermWindow) QuitApplication() error {
	tab, ok := tw.activeTab()
	if !ok || tw.cfg.CloseConfirmation() == config.NeverPrompt {
		tw.terminate()
		return nil
	}
	return tw.confirm(tab, "Quit", "Really quit?", (*TermWindow).terminate)
}

func (tw *TermWindow) terminate() {
	if tw.conn != nil {
		tw.conn.TerminateMessageLoop()
	}
}

func tabTitles(tabs []mux.Tab) []string {
	out := make([]string, len(tabs))
	for i, tab := range tabs {
		title := ""
		if pane := tab.ActivePane(); pane != nil {
			title = pane.Title()
		}
		out[i] = fmt.Sprintf("%d. %s", i+1, title)
	}
	return out
}
