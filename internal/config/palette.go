package config

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Palette is the resolved color scheme of a window.
type Palette struct {
	Foreground  colorful.Color
	Background  colorful.Color
	CursorBg    colorful.Color
	SelectionFg colorful.Color
	SelectionBg colorful.Color
}

// Palette resolves the configured colors. Entries that fail to parse fall
// back to the built-in scheme.
func (c *Config) Palette() Palette {
	def := Default().Colors
	return Palette{
		Foreground:  parseColor(c.Colors.Foreground, def.Foreground),
		Background:  parseColor(c.Colors.Background, def.Background),
		CursorBg:    parseColor(c.Colors.CursorBg, def.CursorBg),
		SelectionFg: parseColor(c.Colors.SelectionFg, def.SelectionFg),
		SelectionBg: parseColor(c.Colors.SelectionBg, def.SelectionBg),
	}
}

// Dimmed returns the palette with the foreground blended toward the
// background, used for panes that do not have focus.
func (p Palette) Dimmed(amount float64) Palette {
	out := p
	out.Foreground = p.Foreground.BlendLab(p.Background, amount).Clamped()
	return out
}

// RGB returns the 8-bit components of col.
func RGB(col colorful.Color) (r, g, b int32) {
	r8, g8, b8 := col.RGB255()
	return int32(r8), int32(g8), int32(b8)
}

func parseColor(hex, fallback string) colorful.Color {
	if col, err := colorful.Hex(hex); err == nil {
		return col
	}
	col, _ := colorful.Hex(fallback)
	return col
}
