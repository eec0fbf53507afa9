package termwindow

import (
	"github.com/tbung/wezterm/internal/config"
)

// ActivateTab activates the tab at idx. A negative idx counts from the
// last tab.
func (tw *TermWindow) ActivateTab(idx int) error {
	w, ok := tw.muxWindowState()
	if !ok {
		return opError("activate tab", ErrNoSuchWindow)
	}
	n := w.Len()
	if idx < 0 {
		idx = max(n+idx, 0)
	}
	if idx >= n {
		return opError("activate tab", ErrTabOutOfRange)
	}
	w.SetActive(idx)
	tw.UpdateTitle()
	tw.invalidate()
	return nil
}

// ActivateTabRelative activates the tab delta positions away from the
// active one, wrapping around at either end.
func (tw *TermWindow) ActivateTabRelative(delta int) error {
	w, ok := tw.muxWindowState()
	if !ok {
		return opError("activate tab", ErrNoSuchWindow)
	}
	n := w.Len()
	if n == 0 {
		return opError("activate tab", ErrNoMoreTabs)
	}
	idx := ((w.ActiveIndex()+delta)%n + n) % n
	return tw.ActivateTab(idx)
}

// MoveTab moves the active tab to idx.
func (tw *TermWindow) MoveTab(idx int) error {
	w, ok := tw.muxWindowState()
	if !ok {
		return opError("move tab", ErrNoSuchWindow)
	}
	n := w.Len()
	if n == 0 {
		return opError("move tab", ErrNoMoreTabs)
	}
	if idx < 0 || idx >= n {
		return opError("move tab", ErrTabOutOfRange)
	}
	tab := w.RemoveByIndex(w.ActiveIndex())
	w.Insert(idx, tab)
	w.SetActive(idx)
	tw.UpdateTitle()
	tw.invalidate()
	return nil
}

// MoveTabRelative moves the active tab delta positions, stopping at
// either end.
func (tw *TermWindow) MoveTabRelative(delta int) error {
	w, ok := tw.muxWindowState()
	if !ok {
		return opError("move tab", ErrNoSuchWindow)
	}
	n := w.Len()
	if n == 0 {
		return opError("move tab", ErrNoMoreTabs)
	}
	idx := min(max(w.ActiveIndex()+delta, 0), n-1)
	return tw.MoveTab(idx)
}

// CloseCurrentTab closes the active tab. With confirm set, a tab that
// cannot close without prompting asks first.
func (tw *TermWindow) CloseCurrentTab(confirm bool) error {
	tab, ok := tw.activeTab()
	if !ok {
		return nil
	}
	tabID := tab.ID()
	closeTab := func(w *TermWindow) {
		w.mux.RemoveTab(tabID)
		w.UpdateTitle()
	}
	if !confirm || tab.CanCloseWithoutPrompting() {
		closeTab(tw)
		return nil
	}
	return tw.confirm(tab, "Close tab", "Really kill this tab and all its panes?", closeTab)
}

// CloseCurrentPane closes the active pane. With confirm set, a pane that
// cannot close without prompting asks first.
func (tw *TermWindow) CloseCurrentPane(confirm bool) error {
	tab, ok := tw.activeTab()
	if !ok {
		return nil
	}
	pane := tab.ActivePane()
	if pane == nil {
		return nil
	}
	paneID := pane.ID()
	closePane := func(w *TermWindow) {
		tab.KillPane(paneID)
		w.UpdateTitle()
		w.invalidate()
	}
	if !confirm || pane.CanCloseWithoutPrompting() {
		closePane(tw)
		return nil
	}
	return tw.confirm(tab, "Close pane", "Really kill this pane?", closePane)
}

// CloseTabIdx closes the tab at idx.
func (tw *TermWindow) CloseTabIdx(idx int) error {
	w, ok := tw.muxWindowState()
	if !ok {
		return opError("close tab", ErrNoSuchWindow)
	}
	if idx < 0 || idx >= w.Len() {
		return opError("close tab", ErrTabOutOfRange)
	}
	tab := w.RemoveByIndex(idx)
	tw.mux.RemoveTab(tab.ID())
	if w.Len() == 0 {
		return nil
	}
	return tw.ActivateTabRelative(0)
}

// SpawnTab starts a new tab running args.
func (tw *TermWindow) SpawnTab(args []string) error {
	if tw.spawner == nil {
		tw.logger.Warn("no spawner configured", "args", args)
		return nil
	}
	if err := tw.spawner.SpawnTab(tw.muxWindow, args); err != nil {
		return opError("spawn tab", err)
	}
	tw.UpdateTitle()
	tw.invalidate()
	return nil
}

// CanClose is asked by the window system before closing the window. It
// reports whether the window may close now; when it may not, a
// confirmation is shown that kills the window once accepted.
func (tw *TermWindow) CanClose() bool {
	kill := func(w *TermWindow) { w.mux.KillWindow(w.muxWindow) }
	if tw.cfg.CloseConfirmation() == config.NeverPrompt {
		kill(tw)
		return true
	}
	w, ok := tw.muxWindowState()
	if !ok || w.CanCloseWithoutPrompting() {
		kill(tw)
		return true
	}
	tab, ok := tw.activeTab()
	if !ok {
		kill(tw)
		return true
	}
	if err := tw.confirm(tab, "Close window", "Really kill this window and all its tabs?", kill); err != nil {
		tw.logger.Error("close confirmation", "err", err)
	}
	return false
}
