package termwindow

import (
	"strings"
	"time"

	"github.com/tbung/wezterm/internal/clipboard"
	"github.com/tbung/wezterm/internal/mux"
	"github.com/tbung/wezterm/internal/scripting"
	"github.com/tbung/wezterm/internal/selection"
)

// multiClickInterval is the longest gap between presses that still counts
// as a double or triple click.
const multiClickInterval = 500 * time.Millisecond

// urlBoundary ends a link when looking for one under the mouse.
const urlBoundary = " \t\n\"'<>()[]{}`"

var urlSchemes = []string{"http://", "https://", "file://", "mailto:"}

// MouseButton is a mouse button.
type MouseButton uint8

const (
	ButtonNone MouseButton = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// MouseEventKind is what happened to the mouse.
type MouseEventKind uint8

const (
	MousePress MouseEventKind = iota
	MouseRelease
	MouseMove
	MouseWheelUp
	MouseWheelDown
)

// MouseEvent is a mouse event in window pixel coordinates.
type MouseEvent struct {
	Kind   MouseEventKind
	Button MouseButton
	X      int
	Y      int
	Mods   mux.Modifiers
}

type mouseState struct {
	coord      selection.Coord
	hasCoord   bool
	pressed    bool
	mode       selection.Mode
	clickAt    selection.Coord
	lastClick  time.Time
	clickCount int
}

// MouseEvent handles a mouse event. A left press starts a selection whose
// unit depends on the click count, dragging extends it and the release
// copies it to the primary selection. The wheel scrolls.
func (tw *TermWindow) MouseEvent(ev MouseEvent) {
	pad := tw.cfg.Padding()
	cell := tw.geom.Cell
	x := (ev.X - pad.Left) / max(cell.Width, 1)
	row := (ev.Y - pad.Top) / max(cell.Height, 1)

	if tw.showTabBar {
		if row == 0 {
			if ev.Kind == MousePress && ev.Button == ButtonLeft {
				tw.tabBarClick(x)
			}
			return
		}
		row--
	}

	view, key, ok := tw.activeView()
	if !ok {
		return
	}
	top := tw.viewportTop(key, view.Dimensions())
	tw.mouse.coord = selection.Coord{X: max(x, 0), Y: top + mux.StableRowIndex(max(row, 0))}
	tw.mouse.hasCoord = true

	switch ev.Kind {
	case MousePress:
		switch ev.Button {
		case ButtonLeft:
			tw.mouse.pressed = true
			tw.mouse.mode = tw.countClick()
			tw.selectAtMouse(tw.mouse.mode)
		case ButtonMiddle:
			tw.PasteFrom(clipboard.SourcePrimarySelection)
		}
	case MouseMove:
		if tw.mouse.pressed {
			tw.extendToMouse(tw.mouse.mode)
		}
	case MouseRelease:
		if ev.Button == ButtonLeft && tw.mouse.pressed {
			tw.mouse.pressed = false
			err := tw.PerformKeyAssignment(KeyAssignment{Action: ActionCompleteSelectionOrURL, Arg: "PrimarySelection"})
			if err != nil {
				tw.logger.Debug("complete selection", "err", err)
			}
		}
	case MouseWheelUp:
		tw.ScrollByLine(-1)
	case MouseWheelDown:
		tw.ScrollByLine(1)
	}
}

// tabBarClick activates the tab under column x. A click past the last tab
// opens a new tab unless a new-tab-button-click handler vetoes it.
func (tw *TermWindow) tabBarClick(x int) {
	var err error
	if idx, ok := tw.TabAtColumn(x); ok {
		err = tw.ActivateTab(idx)
	} else if tw.emit(scripting.EventNewTabButtonClick) {
		err = tw.SpawnTab(nil)
	}
	if err != nil {
		tw.logger.Debug("tab bar click", "err", err)
	}
}

// countClick records a left press and returns the selection mode for the
// click streak it belongs to.
func (tw *TermWindow) countClick() selection.Mode {
	now := tw.now()
	m := &tw.mouse
	if m.clickCount > 0 && m.clickAt == m.coord && now.Sub(m.lastClick) < multiClickInterval {
		m.clickCount = min(m.clickCount+1, 3)
	} else {
		m.clickCount = 1
	}
	m.clickAt = m.coord
	m.lastClick = now

	switch m.clickCount {
	case 2:
		return selection.ModeWord
	case 3:
		return selection.ModeLine
	default:
		return selection.ModeCell
	}
}

func (tw *TermWindow) selectAtMouse(mode selection.Mode) {
	if tw.mouse.hasCoord {
		tw.SelectTextAt(mode, tw.mouse.coord)
	}
}

func (tw *TermWindow) extendToMouse(mode selection.Mode) {
	if tw.mouse.hasCoord {
		tw.ExtendSelectionAt(mode, tw.mouse.coord)
	}
}

// LinkAtMouse returns the link under the mouse cursor.
func (tw *TermWindow) LinkAtMouse() (string, bool) {
	if !tw.mouse.hasCoord {
		return "", false
	}
	view, ok := tw.ActivePaneOrOverlay()
	if !ok {
		return "", false
	}
	word := selection.WordAround(tw.mouse.coord, view, urlBoundary)
	text := selection.Text(word, view)
	for _, scheme := range urlSchemes {
		if strings.HasPrefix(text, scheme) && len(text) > len(scheme) {
			return text, true
		}
	}
	return "", false
}

// OpenLinkAtMouse hands the link under the mouse cursor to the open-uri
// handlers.
func (tw *TermWindow) OpenLinkAtMouse() {
	uri, ok := tw.LinkAtMouse()
	if !ok {
		return
	}
	if tw.emit(scripting.EventOpenURI, uri) {
		tw.logger.Info("open uri", "uri", uri)
	}
}
