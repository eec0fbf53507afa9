package termwindow

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/tbung/wezterm/internal/clipboard"
	"github.com/tbung/wezterm/internal/config"
	"github.com/tbung/wezterm/internal/mux"
	"github.com/tbung/wezterm/internal/selection"
)

// Action names a key assignment.
type Action string

// Key assignment actions.
const (
	ActionNop                    Action = "Nop"
	ActionCopy                   Action = "Copy"
	ActionCopyTo                 Action = "CopyTo"
	ActionPaste                  Action = "Paste"
	ActionPastePrimarySelection  Action = "PastePrimarySelection"
	ActionPasteFrom              Action = "PasteFrom"
	ActionActivateTab            Action = "ActivateTab"
	ActionActivateTabRelative    Action = "ActivateTabRelative"
	ActionMoveTab                Action = "MoveTab"
	ActionMoveTabRelative        Action = "MoveTabRelative"
	ActionIncreaseFontSize       Action = "IncreaseFontSize"
	ActionDecreaseFontSize       Action = "DecreaseFontSize"
	ActionResetFontSize          Action = "ResetFontSize"
	ActionResetFontAndWindowSize Action = "ResetFontAndWindowSize"
	ActionSendString             Action = "SendString"
	ActionHide                   Action = "Hide"
	ActionShow                   Action = "Show"
	ActionToggleFullScreen       Action = "ToggleFullScreen"
	ActionSpawnTab               Action = "SpawnTab"
	ActionCloseCurrentTab        Action = "CloseCurrentTab"
	ActionCloseCurrentPane       Action = "CloseCurrentPane"
	ActionReloadConfiguration    Action = "ReloadConfiguration"
	ActionScrollByPage           Action = "ScrollByPage"
	ActionScrollByLine           Action = "ScrollByLine"
	ActionScrollToPrompt         Action = "ScrollToPrompt"
	ActionScrollToBottom         Action = "ScrollToBottom"
	ActionShowTabNavigator       Action = "ShowTabNavigator"
	ActionShowLauncher           Action = "ShowLauncher"
	ActionHideApplication        Action = "HideApplication"
	ActionQuitApplication        Action = "QuitApplication"
	ActionSelectTextAtMouse      Action = "SelectTextAtMouseCursor"
	ActionExtendSelectionToMouse Action = "ExtendSelectionToMouseCursor"
	ActionCompleteSelection      Action = "CompleteSelection"
	ActionCompleteSelectionOrURL Action = "CompleteSelectionOrOpenLinkAtMouseCursor"
	ActionOpenLinkAtMouse        Action = "OpenLinkAtMouseCursor"
	ActionEmitEvent              Action = "EmitEvent"
	ActionClearScrollback        Action = "ClearScrollback"
	ActionSearch                 Action = "Search"
	ActionActivateCopyMode       Action = "ActivateCopyMode"
	ActionAdjustPaneSize         Action = "AdjustPaneSize"
	ActionActivatePaneDirection  Action = "ActivatePaneDirection"
	ActionTogglePaneZoomState    Action = "TogglePaneZoomState"
)

var knownActions = map[Action]bool{}

func init() {
	for _, a := range []Action{
		ActionNop, ActionCopy, ActionCopyTo, ActionPaste, ActionPastePrimarySelection,
		ActionPasteFrom, ActionActivateTab, ActionActivateTabRelative, ActionMoveTab,
		ActionMoveTabRelative, ActionIncreaseFontSize, ActionDecreaseFontSize,
		ActionResetFontSize, ActionResetFontAndWindowSize, ActionSendString, ActionHide,
		ActionShow, ActionToggleFullScreen, ActionSpawnTab, ActionCloseCurrentTab,
		ActionCloseCurrentPane, ActionReloadConfiguration, ActionScrollByPage,
		ActionScrollByLine, ActionScrollToPrompt, ActionScrollToBottom,
		ActionShowTabNavigator, ActionShowLauncher, ActionHideApplication,
		ActionQuitApplication, ActionSelectTextAtMouse, ActionExtendSelectionToMouse,
		ActionCompleteSelection, ActionCompleteSelectionOrURL, ActionOpenLinkAtMouse,
		ActionEmitEvent, ActionClearScrollback, ActionSearch, ActionActivateCopyMode,
		ActionAdjustPaneSize, ActionActivatePaneDirection, ActionTogglePaneZoomState,
	} {
		knownActions[a] = true
	}
}

// KeyAssignment is an action with its argument. The argument's meaning
// depends on the action: a tab index, a scroll amount, a string to send,
// a clipboard name, a selection mode or an event name.
type KeyAssignment struct {
	Action Action
	Arg    string
}

// String renders the assignment as Action(arg).
func (a KeyAssignment) String() string {
	if a.Arg == "" {
		return string(a.Action)
	}
	return fmt.Sprintf("%s(%s)", a.Action, a.Arg)
}

type chord struct {
	key  string
	mods mux.Modifiers
}

func chordOf(ev mux.KeyEvent) chord {
	ev = ev.Normalize()
	return chord{key: ev.Key, mods: ev.Mods}
}

// Binding is one entry of the input map.
type Binding struct {
	Key        string
	Mods       mux.Modifiers
	Assignment KeyAssignment
}

func defaultBindings() map[chord]KeyAssignment {
	cs := mux.ModCtrl | mux.ModShift
	bindings := []Binding{
		{"c", cs, KeyAssignment{ActionCopy, ""}},
		{"v", cs, KeyAssignment{ActionPaste, ""}},
		{"c", mux.ModSuper, KeyAssignment{ActionCopy, ""}},
		{"v", mux.ModSuper, KeyAssignment{ActionPaste, ""}},
		{mux.KeyInsert, mux.ModShift, KeyAssignment{ActionPastePrimarySelection, ""}},
		{"t", cs, KeyAssignment{ActionSpawnTab, ""}},
		{"t", mux.ModSuper, KeyAssignment{ActionSpawnTab, ""}},
		{"w", cs, KeyAssignment{ActionCloseCurrentTab, ""}},
		{"w", mux.ModSuper, KeyAssignment{ActionCloseCurrentTab, ""}},
		{mux.KeyTab, mux.ModCtrl, KeyAssignment{ActionActivateTabRelative, "1"}},
		{mux.KeyTab, cs, KeyAssignment{ActionActivateTabRelative, "-1"}},
		{mux.KeyPageUp, mux.ModCtrl, KeyAssignment{ActionActivateTabRelative, "-1"}},
		{mux.KeyPageDown, mux.ModCtrl, KeyAssignment{ActionActivateTabRelative, "1"}},
		{mux.KeyPageUp, cs, KeyAssignment{ActionMoveTabRelative, "-1"}},
		{mux.KeyPageDown, cs, KeyAssignment{ActionMoveTabRelative, "1"}},
		{mux.KeyPageUp, mux.ModShift, KeyAssignment{ActionScrollByPage, "-1"}},
		{mux.KeyPageDown, mux.ModShift, KeyAssignment{ActionScrollByPage, "1"}},
		{mux.KeyUp, mux.ModShift | mux.ModAlt, KeyAssignment{ActionScrollToPrompt, "-1"}},
		{mux.KeyDown, mux.ModShift | mux.ModAlt, KeyAssignment{ActionScrollToPrompt, "1"}},
		{"-", mux.ModCtrl, KeyAssignment{ActionDecreaseFontSize, ""}},
		{"=", mux.ModCtrl, KeyAssignment{ActionIncreaseFontSize, ""}},
		{"0", mux.ModCtrl, KeyAssignment{ActionResetFontSize, ""}},
		{"r", cs, KeyAssignment{ActionReloadConfiguration, ""}},
		{"f", cs, KeyAssignment{ActionSearch, ""}},
		{"x", cs, KeyAssignment{ActionActivateCopyMode, ""}},
		{"k", cs, KeyAssignment{ActionClearScrollback, "ScrollbackOnly"}},
		{"z", cs, KeyAssignment{ActionTogglePaneZoomState, ""}},
		{"l", cs, KeyAssignment{ActionShowLauncher, ""}},
		{"n", cs, KeyAssignment{ActionShowTabNavigator, ""}},
		{mux.KeyEnter, mux.ModAlt, KeyAssignment{ActionToggleFullScreen, ""}},
		{"m", mux.ModSuper, KeyAssignment{ActionHide, ""}},
		{"h", mux.ModSuper, KeyAssignment{ActionHideApplication, ""}},
		{"q", mux.ModSuper, KeyAssignment{ActionQuitApplication, ""}},
		{mux.KeyLeft, cs, KeyAssignment{ActionActivatePaneDirection, "Left"}},
		{mux.KeyRight, cs, KeyAssignment{ActionActivatePaneDirection, "Right"}},
		{mux.KeyUp, cs, KeyAssignment{ActionActivatePaneDirection, "Up"}},
		{mux.KeyDown, cs, KeyAssignment{ActionActivatePaneDirection, "Down"}},
		{mux.KeyLeft, cs | mux.ModAlt, KeyAssignment{ActionAdjustPaneSize, "Left 1"}},
		{mux.KeyRight, cs | mux.ModAlt, KeyAssignment{ActionAdjustPaneSize, "Right 1"}},
		{mux.KeyUp, cs | mux.ModAlt, KeyAssignment{ActionAdjustPaneSize, "Up 1"}},
		{mux.KeyDown, cs | mux.ModAlt, KeyAssignment{ActionAdjustPaneSize, "Down 1"}},
	}
	for i := 1; i <= 8; i++ {
		arg := strconv.Itoa(i - 1)
		bindings = append(bindings,
			Binding{strconv.Itoa(i), mux.ModSuper, KeyAssignment{ActionActivateTab, arg}},
			Binding{strconv.Itoa(i), mux.ModAlt, KeyAssignment{ActionActivateTab, arg}},
		)
	}
	bindings = append(bindings,
		Binding{"9", mux.ModSuper, KeyAssignment{ActionActivateTab, "-1"}},
		Binding{"9", mux.ModAlt, KeyAssignment{ActionActivateTab, "-1"}},
	)

	m := make(map[chord]KeyAssignment, len(bindings))
	for _, b := range bindings {
		m[chordOf(mux.KeyEvent{Key: b.Key, Mods: b.Mods})] = b.Assignment
	}
	return m
}

// buildInputMap layers the configured key bindings over the defaults.
// Bindings naming unknown actions are logged and skipped.
func buildInputMap(cfg *config.Config, logger *log.Logger) map[chord]KeyAssignment {
	m := defaultBindings()
	for _, kb := range cfg.Keys {
		action := Action(kb.Action)
		if !knownActions[action] {
			logger.Warn("ignoring key binding", "key", kb.Key, "mods", kb.Mods, "err", ErrUnknownAction, "action", kb.Action)
			continue
		}
		c := chordOf(mux.KeyEvent{Key: kb.Key, Mods: mux.ParseModifiers(kb.Mods)})
		m[c] = KeyAssignment{Action: action, Arg: kb.Arg}
	}
	return m
}

// KeyAssignments returns the input map ordered by key and modifiers.
func (tw *TermWindow) KeyAssignments() []Binding {
	out := make([]Binding, 0, len(tw.inputMap))
	for c, a := range tw.inputMap {
		out = append(out, Binding{Key: c.key, Mods: c.mods, Assignment: a})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].Mods < out[j].Mods
	})
	return out
}

// LookupKey returns the assignment bound to ev.
func (tw *TermWindow) LookupKey(ev mux.KeyEvent) (KeyAssignment, bool) {
	a, ok := tw.inputMap[chordOf(ev)]
	return a, ok
}

// KeyEvent handles a key press: a bound key performs its assignment,
// anything else goes to the active pane or overlay. It reports whether the
// key was consumed.
func (tw *TermWindow) KeyEvent(ev mux.KeyEvent) bool {
	if a, ok := tw.LookupKey(ev); ok {
		if err := tw.PerformKeyAssignment(a); err != nil {
			tw.logger.Debug("key assignment", "assignment", a.String(), "err", err)
		}
		return true
	}
	pane, ok := tw.ActivePaneOrOverlay()
	if !ok {
		return false
	}
	if tw.cfg.ScrollToBottomOnInput {
		tw.ScrollToBottom()
	}
	if err := pane.KeyDown(ev); err != nil {
		tw.logger.Error("key delivery failed", "pane", uint64(pane.ID()), "err", err)
	}
	tw.blinker.Reset(tw.now())
	tw.UpdateTextCursor()
	return true
}

// PerformKeyAssignment runs a.
func (tw *TermWindow) PerformKeyAssignment(a KeyAssignment) error {
	switch a.Action {
	case ActionNop:
	case ActionCopy:
		tw.CopyTo(clipboard.ClipboardAndPrimarySelection)
	case ActionCopyTo:
		dest, err := parseDestination(a.Arg)
		if err != nil {
			return opError(string(a.Action), err)
		}
		tw.CopyTo(dest)
	case ActionPaste:
		tw.PasteFrom(clipboard.SourceClipboard)
	case ActionPastePrimarySelection:
		tw.PasteFrom(clipboard.SourcePrimarySelection)
	case ActionPasteFrom:
		src, err := parseSource(a.Arg)
		if err != nil {
			return opError(string(a.Action), err)
		}
		tw.PasteFrom(src)
	case ActionActivateTab:
		return withInt(a, tw.ActivateTab)
	case ActionActivateTabRelative:
		return withInt(a, tw.ActivateTabRelative)
	case ActionMoveTab:
		return withInt(a, tw.MoveTab)
	case ActionMoveTabRelative:
		return withInt(a, tw.MoveTabRelative)
	case ActionIncreaseFontSize:
		tw.IncreaseFontSize()
	case ActionDecreaseFontSize:
		tw.DecreaseFontSize()
	case ActionResetFontSize:
		tw.ResetFontSize()
	case ActionResetFontAndWindowSize:
		tw.ResetFontAndWindowSize()
	case ActionSendString:
		pane, ok := tw.ActivePaneOrOverlay()
		if !ok {
			return nil
		}
		return pane.SendString(a.Arg)
	case ActionHide:
		if tw.window != nil {
			tw.window.Hide()
		}
	case ActionShow:
		if tw.window != nil {
			tw.window.Show()
		}
	case ActionToggleFullScreen:
		if tw.window != nil {
			tw.window.ToggleFullscreen()
		}
	case ActionSpawnTab:
		return tw.SpawnTab(strings.Fields(a.Arg))
	case ActionCloseCurrentTab:
		return tw.CloseCurrentTab(a.Arg != "NoConfirm")
	case ActionCloseCurrentPane:
		return tw.CloseCurrentPane(a.Arg != "NoConfirm")
	case ActionReloadConfiguration:
		return tw.ReloadConfiguration()
	case ActionScrollByPage:
		return withInt(a, func(n int) error { tw.ScrollByPage(n); return nil })
	case ActionScrollByLine:
		return withInt(a, func(n int) error { tw.ScrollByLine(n); return nil })
	case ActionScrollToPrompt:
		return withInt(a, func(n int) error { tw.ScrollToPrompt(n); return nil })
	case ActionScrollToBottom:
		tw.ScrollToBottom()
	case ActionShowTabNavigator:
		return tw.ShowTabNavigator()
	case ActionShowLauncher:
		return tw.ShowLauncher()
	case ActionHideApplication:
		if tw.conn != nil {
			tw.conn.HideApplication()
		}
	case ActionQuitApplication:
		return tw.QuitApplication()
	case ActionSelectTextAtMouse:
		mode, err := parseMode(a.Arg)
		if err != nil {
			return opError(string(a.Action), err)
		}
		tw.selectAtMouse(mode)
	case ActionExtendSelectionToMouse:
		mode, err := parseMode(a.Arg)
		if err != nil {
			return opError(string(a.Action), err)
		}
		tw.extendToMouse(mode)
	case ActionCompleteSelection:
		dest, err := parseDestination(a.Arg)
		if err != nil {
			return opError(string(a.Action), err)
		}
		tw.CompleteSelection(dest)
	case ActionCompleteSelectionOrURL:
		dest, err := parseDestination(a.Arg)
		if err != nil {
			return opError(string(a.Action), err)
		}
		if tw.SelectionText() != "" {
			tw.CompleteSelection(dest)
			return nil
		}
		tw.OpenLinkAtMouse()
	case ActionOpenLinkAtMouse:
		tw.OpenLinkAtMouse()
	case ActionEmitEvent:
		tw.emit(a.Arg)
	case ActionClearScrollback:
		tw.ClearScrollback(a.Arg == "ScrollbackAndViewport")
	case ActionSearch:
		return tw.ShowSearch(a.Arg)
	case ActionActivateCopyMode:
		return tw.ActivateCopyMode()
	case ActionAdjustPaneSize:
		dir, amount, err := parseDirectionAmount(a.Arg)
		if err != nil {
			return opError(string(a.Action), err)
		}
		if tab, ok := tw.activeTab(); ok {
			tab.AdjustPaneSize(dir, amount)
			tw.invalidate()
		}
	case ActionActivatePaneDirection:
		dir, ok := mux.ParseDirection(a.Arg)
		if !ok {
			return opError(string(a.Action), fmt.Errorf("invalid direction %q", a.Arg))
		}
		if tab, ok := tw.activeTab(); ok {
			tab.ActivatePaneDirection(dir)
			tw.UpdateTitle()
			tw.invalidate()
		}
	case ActionTogglePaneZoomState:
		if tab, ok := tw.activeTab(); ok {
			tab.ToggleZoom()
			tw.UpdateTitle()
			tw.invalidate()
		}
	default:
		return opError(string(a.Action), ErrUnknownAction)
	}
	return nil
}

// ReloadConfiguration re-reads the configuration file. A failed reload
// keeps the current configuration.
func (tw *TermWindow) ReloadConfiguration() error {
	if err := tw.store.Reload(); err != nil {
		return opError("reload configuration", err)
	}
	if tw.store.Generation() != tw.configHandle.Generation() {
		tw.ConfigWasReloaded()
	}
	return nil
}

// ClearScrollback erases the active pane's scrollback, and its screen too
// when all is set.
func (tw *TermWindow) ClearScrollback(all bool) {
	pane, ok := tw.ActivePaneNoOverlay()
	if !ok {
		return
	}
	mode := mux.EraseScrollbackOnly
	if all {
		mode = mux.EraseScrollbackAndViewport
	}
	pane.EraseScrollback(mode)
	tw.ScrollToBottom()
	tw.invalidate()
}

func withInt(a KeyAssignment, fn func(int) error) error {
	n, err := strconv.Atoi(strings.TrimSpace(a.Arg))
	if err != nil {
		return opError(string(a.Action), err)
	}
	return fn(n)
}

func parseDestination(s string) (clipboard.Destination, error) {
	switch s {
	case "", "ClipboardAndPrimarySelection":
		return clipboard.ClipboardAndPrimarySelection, nil
	case "Clipboard":
		return clipboard.Clipboard, nil
	case "PrimarySelection":
		return clipboard.PrimarySelection, nil
	default:
		return 0, fmt.Errorf("invalid clipboard destination %q", s)
	}
}

func parseSource(s string) (clipboard.Source, error) {
	switch s {
	case "", "Clipboard":
		return clipboard.SourceClipboard, nil
	case "PrimarySelection":
		return clipboard.SourcePrimarySelection, nil
	default:
		return 0, fmt.Errorf("invalid clipboard source %q", s)
	}
}

func parseMode(s string) (selection.Mode, error) {
	if s == "" {
		return selection.ModeCell, nil
	}
	mode, ok := selection.ParseMode(s)
	if !ok {
		return 0, fmt.Errorf("invalid selection mode %q", s)
	}
	return mode, nil
}

func parseDirectionAmount(s string) (mux.Direction, int, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, 0, fmt.Errorf("missing direction")
	}
	dir, ok := mux.ParseDirection(fields[0])
	if !ok {
		return 0, 0, fmt.Errorf("invalid direction %q", fields[0])
	}
	amount := 1
	if len(fields) > 1 {
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, 0, err
		}
		amount = n
	}
	return dir, amount, nil
}
