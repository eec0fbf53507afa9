package termwindow

import (
	"github.com/tbung/wezterm/internal/geometry"
	"github.com/tbung/wezterm/internal/scripting"
)

// maxGeometryPasses bounds how often one geometry change is reapplied
// because it flipped tab bar visibility.
const maxGeometryPasses = 2

// Font scale steps.
const (
	fontScaleUp   = 1.1
	fontScaleDown = 0.9
)

// Resize handles a resize reported by the window system. Zero-sized
// dimensions, reported while minimised, are ignored.
func (tw *TermWindow) Resize(dims geometry.Dimensions) {
	if dims.IsZero() {
		return
	}
	tw.ScalingChanged(dims, tw.fonts.FontScale())
	tw.emit(scripting.EventWindowResized)
}

// ScalingChanged applies new window dimensions and font scale. A change of
// DPI or scale keeps the terminal rows and cols and asks the window system
// to fit the window around them; otherwise the terminal is resized to fit
// the window.
func (tw *TermWindow) ScalingChanged(dims geometry.Dimensions, fontScale float64) {
	scaleChanged := dims.DPI != tw.geom.Dimensions.DPI || fontScale != tw.fonts.FontScale()
	if !scaleChanged {
		tw.applyDimensions(dims, nil)
		return
	}
	cells := tw.geom.Cells()
	undo, ok := tw.applyScaleChange(dims, fontScale)
	if !ok {
		return
	}
	if !tw.applyDimensions(dims, &cells) {
		undo()
	}
}

// applyScaleChange switches the fonts to fontScale at the DPI of dims and
// recomputes the cell metrics. A scale that would make the font
// degenerate, or metrics that cannot be computed, leave the prior scaling
// in place and report false. The returned func restores the prior scaling.
func (tw *TermWindow) applyScaleChange(dims geometry.Dimensions, fontScale float64) (func(), bool) {
	if !geometry.ScaleIsReasonable(tw.cfg.FontSize, fontScale, dims.DPI) {
		tw.logger.Warn("refusing font scale change",
			"font_size", tw.cfg.FontSize, "scale", fontScale, "dpi", dims.DPI,
			"height", geometry.TheoreticalFontHeight(tw.cfg.FontSize, fontScale, dims.DPI))
		return nil, false
	}

	prevScale, prevDPI := tw.fonts.ChangeScaling(fontScale, dims.DPI)
	cell, err := tw.fonts.Metrics()
	if err != nil {
		tw.logger.Error("font metrics failed", "scale", fontScale, "dpi", dims.DPI, "err", err)
		tw.fonts.ChangeScaling(prevScale, prevDPI)
		return nil, false
	}

	prevCell := tw.geom.Cell
	tw.geom.Cell = cell
	if tw.renderState != nil {
		tw.renderState.ClearShapeCache()
	}
	return func() {
		tw.fonts.ChangeScaling(prevScale, prevDPI)
		tw.geom.Cell = prevCell
	}, true
}

// applyDimensions recomputes the geometry for dims. With keep set the
// terminal keeps that many rows and cols and the window is asked to resize
// to fit them; otherwise the terminal size follows dims. Either way the
// resulting terminal size is pushed to every tab. A tab bar that appears or disappears as a result triggers one
// more scale-preserving pass. It reports false when the render surface
// rejected the size, in which case the geometry is unchanged.
func (tw *TermWindow) applyDimensions(dims geometry.Dimensions, keep *geometry.RowsAndCols) bool {
	for pass := 0; pass < maxGeometryPasses; pass++ {
		if !tw.applyDimensionsOnce(dims, keep) {
			return pass > 0
		}
		if !tw.refreshTitle() {
			return true
		}
		cells := tw.geom.Cells()
		keep = &cells
		dims = tw.geom.Dimensions
	}
	return true
}

func (tw *TermWindow) applyDimensionsOnce(dims geometry.Dimensions, keep *geometry.RowsAndCols) bool {
	prev := tw.geom
	cell := tw.geom.Cell
	layout := tw.layout()

	var requested geometry.Dimensions
	next := geometry.Snapshot{Dimensions: dims, Cell: cell}
	if keep != nil {
		next.Terminal, requested = layout.ScalePreserving(*keep, cell, dims.DPI)
	} else {
		next.Terminal = layout.FromWindowSize(dims, cell)
	}

	if tw.renderState != nil {
		if err := tw.renderState.AdviseOfWindowSizeChange(cell, dims.PixelWidth, dims.PixelHeight); err != nil {
			tw.logger.Error("render surface resize failed",
				"width", dims.PixelWidth, "height", dims.PixelHeight, "err", err)
			tw.geom = prev
			return false
		}
	}

	tw.geom = next
	if w, ok := tw.muxWindowState(); ok {
		for _, tab := range w.Tabs() {
			tab.Resize(next.Terminal)
		}
	}
	if keep != nil && tw.window != nil {
		tw.window.SetInnerSize(requested.PixelWidth, requested.PixelHeight)
	}
	tw.invalidate()
	return true
}

// IncreaseFontSize scales the font up one step.
func (tw *TermWindow) IncreaseFontSize() {
	tw.adjustFontScale(tw.fonts.FontScale() * fontScaleUp)
}

// DecreaseFontSize scales the font down one step.
func (tw *TermWindow) DecreaseFontSize() {
	tw.adjustFontScale(tw.fonts.FontScale() * fontScaleDown)
}

// ResetFontSize returns the font to its configured size.
func (tw *TermWindow) ResetFontSize() {
	tw.adjustFontScale(1.0)
}

// adjustFontScale keeps the terminal rows and cols and resizes the window
// when the configuration asks for that; otherwise the window keeps its
// size and the terminal is refitted.
func (tw *TermWindow) adjustFontScale(fontScale float64) {
	dims := tw.geom.Dimensions
	if tw.cfg.AdjustWindowSizeOnFont {
		tw.ScalingChanged(dims, fontScale)
		return
	}
	undo, ok := tw.applyScaleChange(dims, fontScale)
	if !ok {
		return
	}
	if !tw.applyDimensions(dims, nil) {
		undo()
	}
}

// ResetFontAndWindowSize returns the font to its configured size and the
// terminal to the configured initial rows and cols.
func (tw *TermWindow) ResetFontAndWindowSize() {
	dims := tw.geom.Dimensions
	undo, ok := tw.applyScaleChange(dims, 1.0)
	if !ok {
		return
	}
	initial := geometry.RowsAndCols{Rows: tw.cfg.InitialRows, Cols: tw.cfg.InitialCols}
	if !tw.applyDimensions(dims, &initial) {
		undo()
	}
}
