// Package font derives terminal cell metrics from the configured font size,
// the window's font scale and its DPI.
package font

import (
	"errors"
	"math"
	"sync"

	"github.com/tbung/wezterm/internal/config"
	"github.com/tbung/wezterm/internal/geometry"
)

// ErrDegenerateMetrics is returned when the font would render smaller than
// one pixel.
var ErrDegenerateMetrics = errors.New("font metrics degenerate")

// advanceRatio approximates the advance of a monospace glyph relative to
// its line height.
const advanceRatio = 0.5

// Scaler computes cell metrics for a pixel-addressed surface.
type Scaler struct {
	mu         sync.Mutex
	fontSize   float64
	lineHeight float64
	scale      float64
	dpi        int
}

// NewScaler creates a scaler for cfg at scale 1.0.
func NewScaler(cfg *config.Config) *Scaler {
	return &Scaler{
		fontSize:   cfg.FontSize,
		lineHeight: cfg.LineHeight,
		scale:      1.0,
		dpi:        cfg.EffectiveDPI(),
	}
}

// FontScale returns the current font scale.
func (s *Scaler) FontScale() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scale
}

// DPI returns the DPI the metrics are computed for.
func (s *Scaler) DPI() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dpi
}

// ChangeScaling applies a new font scale and DPI and returns the previous
// pair so that a failed change can be undone.
func (s *Scaler) ChangeScaling(fontScale float64, dpi int) (float64, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prevScale, prevDPI := s.scale, s.dpi
	s.scale = fontScale
	s.dpi = dpi
	return prevScale, prevDPI
}

// ConfigChanged picks up the font size and line height of a new
// configuration. The font scale is kept.
func (s *Scaler) ConfigChanged(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fontSize = cfg.FontSize
	s.lineHeight = cfg.LineHeight
}

// Metrics returns the cell size at the current scaling.
func (s *Scaler) Metrics() (geometry.CellSize, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	px := geometry.TheoreticalFontHeight(s.fontSize, s.scale, s.dpi) * s.lineHeight
	height := int(math.Ceil(px))
	width := int(math.Round(px * advanceRatio))
	if height < 1 || width < 1 {
		return geometry.CellSize{}, ErrDegenerateMetrics
	}
	return geometry.CellSize{Width: width, Height: height}, nil
}

// Fixed reports constant one-by-one metrics, for character-cell surfaces
// where a pixel is a cell. Scaling is recorded but does not affect the
// metrics.
type Fixed struct {
	mu    sync.Mutex
	scale float64
	dpi   int
}

// NewFixed returns character-cell metrics at scale 1.0.
func NewFixed() *Fixed {
	return &Fixed{scale: 1.0, dpi: geometry.DefaultDPI}
}

// FontScale returns the recorded font scale.
func (f *Fixed) FontScale() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scale
}

// ChangeScaling records the scaling and returns the previous pair.
func (f *Fixed) ChangeScaling(fontScale float64, dpi int) (float64, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prevScale, prevDPI := f.scale, f.dpi
	f.scale, f.dpi = fontScale, dpi
	return prevScale, prevDPI
}

// ConfigChanged is a no-op.
func (f *Fixed) ConfigChanged(*config.Config) {}

// Metrics always returns a one-by-one cell.
func (f *Fixed) Metrics() (geometry.CellSize, error) {
	return geometry.CellSize{Width: 1, Height: 1}, nil
}
