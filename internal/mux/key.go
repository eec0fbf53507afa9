package mux

import "strings"

// Modifiers is a bitmask of held modifier keys.
type Modifiers uint8

const (
	ModNone  Modifiers = 0
	ModShift Modifiers = 1 << (iota - 1)
	ModCtrl
	ModAlt
	ModSuper
	// ModLeader is set while the leader key is active.
	ModLeader
)

var modifierNames = []struct {
	mod  Modifiers
	name string
}{
	{ModCtrl, "CTRL"},
	{ModShift, "SHIFT"},
	{ModAlt, "ALT"},
	{ModSuper, "SUPER"},
	{ModLeader, "LEADER"},
}

// String renders the mask as "CTRL|SHIFT".
func (m Modifiers) String() string {
	if m == ModNone {
		return "NONE"
	}
	var parts []string
	for _, mn := range modifierNames {
		if m&mn.mod != 0 {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseModifiers parses "CTRL|SHIFT" style masks. Unknown names are
// ignored; "CMD" and "META" are accepted as aliases.
func ParseModifiers(s string) Modifiers {
	var m Modifiers
	for _, part := range strings.Split(s, "|") {
		switch strings.ToUpper(strings.TrimSpace(part)) {
		case "CTRL":
			m |= ModCtrl
		case "SHIFT":
			m |= ModShift
		case "ALT", "OPT", "META":
			m |= ModAlt
		case "SUPER", "CMD", "WIN":
			m |= ModSuper
		case "LEADER":
			m |= ModLeader
		}
	}
	return m
}

// KeyEvent is a key press. Key is either a single character ("a", "C") or
// a named key ("Enter", "Escape", "PageUp", "UpArrow").
type KeyEvent struct {
	Key  string
	Mods Modifiers
}

// Named keys.
const (
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
	KeyBackspace = "Backspace"
	KeyTab       = "Tab"
	KeyUp        = "UpArrow"
	KeyDown      = "DownArrow"
	KeyLeft      = "LeftArrow"
	KeyRight     = "RightArrow"
	KeyPageUp    = "PageUp"
	KeyPageDown  = "PageDown"
	KeyHome      = "Home"
	KeyEnd       = "End"
	KeyInsert    = "Insert"
)

// Rune returns the character for single-character keys.
func (k KeyEvent) Rune() (rune, bool) {
	r := []rune(k.Key)
	if len(r) != 1 {
		return 0, false
	}
	return r[0], true
}

// Normalize folds letter case into the SHIFT modifier so that "C" and
// SHIFT+"c" compare equal.
func (k KeyEvent) Normalize() KeyEvent {
	r, ok := k.Rune()
	if !ok {
		return k
	}
	lower := strings.ToLower(string(r))
	if lower != k.Key {
		return KeyEvent{Key: lower, Mods: k.Mods | ModShift}
	}
	return k
}
