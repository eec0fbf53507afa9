package tcellgui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/tbung/wezterm/internal/mux"
	"github.com/tbung/wezterm/internal/termwindow"
)

var namedKeys = map[tcell.Key]string{
	tcell.KeyEnter:      mux.KeyEnter,
	tcell.KeyEscape:     mux.KeyEscape,
	tcell.KeyTab:        mux.KeyTab,
	tcell.KeyBacktab:    mux.KeyTab,
	tcell.KeyBackspace:  mux.KeyBackspace,
	tcell.KeyBackspace2: mux.KeyBackspace,
	tcell.KeyUp:         mux.KeyUp,
	tcell.KeyDown:       mux.KeyDown,
	tcell.KeyLeft:       mux.KeyLeft,
	tcell.KeyRight:      mux.KeyRight,
	tcell.KeyPgUp:       mux.KeyPageUp,
	tcell.KeyPgDn:       mux.KeyPageDown,
	tcell.KeyHome:       mux.KeyHome,
	tcell.KeyEnd:        mux.KeyEnd,
	tcell.KeyInsert:     mux.KeyInsert,
}

// keyEvent converts a tcell key press. It reports false for keys the
// window has no name for.
func keyEvent(ev *tcell.EventKey) (mux.KeyEvent, bool) {
	mods := modifiers(ev.Modifiers())
	k := ev.Key()
	if name, ok := namedKeys[k]; ok {
		if k == tcell.KeyBacktab {
			mods |= mux.ModShift
		}
		return mux.KeyEvent{Key: name, Mods: mods}, true
	}
	switch {
	case k == tcell.KeyRune:
		return mux.KeyEvent{Key: string(ev.Rune()), Mods: mods}, true
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		letter := rune('a' + int(k-tcell.KeyCtrlA))
		return mux.KeyEvent{Key: string(letter), Mods: mods | mux.ModCtrl}, true
	}
	return mux.KeyEvent{}, false
}

func modifiers(m tcell.ModMask) mux.Modifiers {
	var out mux.Modifiers
	if m&tcell.ModShift != 0 {
		out |= mux.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= mux.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= mux.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		out |= mux.ModSuper
	}
	return out
}

var mouseButtons = []struct {
	mask   tcell.ButtonMask
	button termwindow.MouseButton
}{
	{tcell.ButtonPrimary, termwindow.ButtonLeft},
	{tcell.ButtonMiddle, termwindow.ButtonMiddle},
	{tcell.ButtonSecondary, termwindow.ButtonRight},
}

// mouseTracker turns tcell's button state reports into press, release and
// move events.
type mouseTracker struct {
	held tcell.ButtonMask
}

func (t *mouseTracker) events(ev *tcell.EventMouse) []termwindow.MouseEvent {
	x, y := ev.Position()
	mods := modifiers(ev.Modifiers())
	buttons := ev.Buttons()
	mk := func(kind termwindow.MouseEventKind, button termwindow.MouseButton) termwindow.MouseEvent {
		return termwindow.MouseEvent{Kind: kind, Button: button, X: x, Y: y, Mods: mods}
	}

	switch {
	case buttons&tcell.WheelUp != 0:
		return []termwindow.MouseEvent{mk(termwindow.MouseWheelUp, termwindow.ButtonNone)}
	case buttons&tcell.WheelDown != 0:
		return []termwindow.MouseEvent{mk(termwindow.MouseWheelDown, termwindow.ButtonNone)}
	}

	var out []termwindow.MouseEvent
	for _, b := range mouseButtons {
		was, is := t.held&b.mask != 0, buttons&b.mask != 0
		switch {
		case is && !was:
			out = append(out, mk(termwindow.MousePress, b.button))
		case was && !is:
			out = append(out, mk(termwindow.MouseRelease, b.button))
		}
	}
	t.held = buttons & (tcell.ButtonPrimary | tcell.ButtonMiddle | tcell.ButtonSecondary)
	if len(out) == 0 {
		out = append(out, mk(termwindow.MouseMove, termwindow.ButtonNone))
	}
	return out
}
