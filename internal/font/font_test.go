package font

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbung/wezterm/internal/config"
	"github.com/tbung/wezterm/internal/geometry"
)

func TestScaler_Metrics(t *testing.T) {
	cfg := config.Default()
	cfg.FontSize = 12
	s := NewScaler(cfg)

	// 12pt at 96dpi is 16px tall
	cell, err := s.Metrics()
	require.NoError(t, err)
	assert.Equal(t, geometry.CellSize{Width: 8, Height: 16}, cell)

	prevScale, prevDPI := s.ChangeScaling(2.0, 96)
	assert.Equal(t, 1.0, prevScale)
	assert.Equal(t, 96, prevDPI)

	cell, err = s.Metrics()
	require.NoError(t, err)
	assert.Equal(t, geometry.CellSize{Width: 16, Height: 32}, cell)
	assert.Equal(t, 2.0, s.FontScale())
}

func TestScaler_Degenerate(t *testing.T) {
	s := NewScaler(config.Default())
	s.ChangeScaling(0.001, 96)

	_, err := s.Metrics()
	assert.ErrorIs(t, err, ErrDegenerateMetrics)
}

func TestScaler_ConfigChangedKeepsScale(t *testing.T) {
	s := NewScaler(config.Default())
	s.ChangeScaling(1.5, 144)

	cfg := config.Default()
	cfg.FontSize = 24
	s.ConfigChanged(cfg)

	assert.Equal(t, 1.5, s.FontScale())
	assert.Equal(t, 144, s.DPI())
	cell, err := s.Metrics()
	require.NoError(t, err)
	assert.Equal(t, 72, cell.Height)
}

func TestFixed(t *testing.T) {
	f := NewFixed()
	prev, _ := f.ChangeScaling(1.1, 96)
	assert.Equal(t, 1.0, prev)
	assert.Equal(t, 1.1, f.FontScale())

	cell, err := f.Metrics()
	require.NoError(t, err)
	assert.Equal(t, geometry.CellSize{Width: 1, Height: 1}, cell)
}
