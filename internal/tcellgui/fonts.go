package tcellgui

import (
	"github.com/tbung/wezterm/internal/config"
	"github.com/tbung/wezterm/internal/geometry"
)

// CellFonts reports a one pixel cell regardless of scaling. The scale and
// DPI are still tracked so font size actions round-trip.
type CellFonts struct {
	scale float64
	dpi   int
}

// NewCellFonts returns fonts at scale 1.0 and the configured DPI.
func NewCellFonts(cfg *config.Config) *CellFonts {
	return &CellFonts{scale: 1.0, dpi: cfg.EffectiveDPI()}
}

func (f *CellFonts) FontScale() float64 { return f.scale }

func (f *CellFonts) ChangeScaling(scale float64, dpi int) (float64, int) {
	prevScale, prevDPI := f.scale, f.dpi
	f.scale, f.dpi = scale, dpi
	return prevScale, prevDPI
}

func (f *CellFonts) Metrics() (geometry.CellSize, error) {
	return geometry.CellSize{Width: 1, Height: 1}, nil
}

func (f *CellFonts) ConfigChanged(*config.Config) {}
