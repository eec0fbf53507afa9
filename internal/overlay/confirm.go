package overlay

import (
	"context"
	"strings"

	"github.com/tbung/wezterm/internal/mux"
)

// Confirm shows message and waits for a yes or no answer. Escape counts as
// no.
func Confirm(ctx context.Context, t *Term, message string) (bool, error) {
	lines := make([]mux.Line, 0, 4)
	for _, l := range strings.Split(message, "\n") {
		lines = append(lines, mux.NewLine(l))
	}
	prompt := "[y/n]"
	lines = append(lines, mux.Line{}, mux.NewLine(prompt))
	t.Render(lines, mux.CursorPosition{
		X:     len(prompt),
		Y:     mux.StableRowIndex(len(lines) - 1),
		Shape: mux.CursorSteadyBlock,
	})

	for {
		ev, err := t.NextKey(ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(ev.Key) {
		case "y":
			return true, nil
		case "n", strings.ToLower(mux.KeyEscape):
			return false, nil
		}
	}
}
