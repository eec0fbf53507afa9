// Package cursor tracks text cursor blink timing.
package cursor

import (
	"time"

	"github.com/tbung/wezterm/internal/mux"
)

// Blinker decides when a blinking cursor needs a repaint. It holds no
// timer of its own; the window's maintenance tick polls it.
type Blinker struct {
	lastBlink time.Time
	visible   bool
}

// NewBlinker returns a blinker whose phase starts at now, cursor visible.
func NewBlinker(now time.Time) *Blinker {
	return &Blinker{lastBlink: now, visible: true}
}

// Due reports whether at least interval has passed since the last blink
// repaint. When it has, the phase flips and the timer restarts at now. A
// zero interval disables blinking.
func (b *Blinker) Due(now time.Time, interval time.Duration) bool {
	if interval <= 0 {
		return false
	}
	if now.Sub(b.lastBlink) < interval {
		return false
	}
	b.visible = !b.visible
	b.lastBlink = now
	return true
}

// Reset shows the cursor and restarts the phase, typically after input.
func (b *Blinker) Reset(now time.Time) {
	b.visible = true
	b.lastBlink = now
}

// Visible reports whether the cursor is in the shown phase.
func (b *Blinker) Visible() bool {
	return b.visible
}

// ShouldBlink reports whether the cursor of the active pane blinks at all:
// blinking must be enabled, the effective shape must be a blinking one and
// the window must have focus.
func ShouldBlink(interval time.Duration, shape, fallback mux.CursorShape, focused bool) bool {
	return interval > 0 && focused && shape.Effective(fallback).IsBlinking()
}
