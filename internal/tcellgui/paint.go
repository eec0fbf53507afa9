package tcellgui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"

	"github.com/tbung/wezterm/internal/config"
	"github.com/tbung/wezterm/internal/mux"
	"github.com/tbung/wezterm/internal/selection"
	"github.com/tbung/wezterm/internal/termwindow"
)

const (
	verticalSplit   = '│'
	horizontalSplit = '─'
)

type styles struct {
	base        tcell.Style
	selected    tcell.Style
	activeTab   tcell.Style
	inactiveTab tcell.Style
	split       tcell.Style
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func stylesFor(p config.Palette) styles {
	fg, bg := tcellColor(p.Foreground), tcellColor(p.Background)
	base := tcell.StyleDefault.Foreground(fg).Background(bg)
	return styles{
		base:        base,
		selected:    tcell.StyleDefault.Foreground(tcellColor(p.SelectionFg)).Background(tcellColor(p.SelectionBg)),
		activeTab:   base.Bold(true),
		inactiveTab: base.Reverse(true),
		split:       base.Dim(true),
	}
}

// painter draws a window onto a screen. Origin is the top left cell of the
// terminal area, below the tab bar when it is shown.
type painter struct {
	screen tcell.Screen
	st     styles
}

func (p *painter) paint(tw *termwindow.TermWindow) {
	p.st = stylesFor(tw.Palette())
	p.screen.SetStyle(p.st.base)
	p.screen.Clear()

	width, _ := p.screen.Size()
	pad := tw.Config().Padding()
	x0, y0 := pad.Left, pad.Top
	if tw.ShowTabBar() {
		p.paintTabBar(tw.TabBar(), x0, y0, width-pad.Right)
		y0++
	}
	for _, v := range tw.PaneViews() {
		p.paintPane(v, x0, y0)
	}
	for _, s := range tw.Splits() {
		p.paintSplit(s, x0, y0)
	}
}

func (p *painter) paintTabBar(items []termwindow.TabBarItem, x, y, limit int) {
	for _, item := range items {
		style := p.st.inactiveTab
		if item.Active {
			style = p.st.activeTab
		}
		x = p.drawText(x, y, limit, item.Title, style)
	}
	p.drawText(x, y, limit, " + ", p.st.inactiveTab)
}

func (p *painter) paintPane(v termwindow.PaneView, x0, y0 int) {
	first, lines := v.Pane.Lines(v.ViewportTop, v.ViewportTop+mux.StableRowIndex(v.Height))
	for i, line := range lines {
		row := first + mux.StableRowIndex(i)
		var cols selection.Columns
		if v.Selected {
			cols = v.Selection.ColsForRow(row)
		}
		y := y0 + v.Top + int(row-v.ViewportTop)
		for col, cell := range line.Cells {
			if col >= v.Width {
				break
			}
			style := p.st.base
			if cols.Contains(col) {
				style = p.st.selected
			}
			p.put(x0+v.Left+col, y, cell.Text, style)
		}
	}
}

func (p *painter) paintSplit(s mux.PositionedSplit, x0, y0 int) {
	for i := range s.Size {
		if s.Direction == mux.SplitHorizontal {
			p.put(x0+s.Left, y0+s.Top+i, string(verticalSplit), p.st.split)
			continue
		}
		p.put(x0+s.Left+i, y0+s.Top, string(horizontalSplit), p.st.split)
	}
}

// drawText draws s grapheme by grapheme from x and returns the column after
// the last one drawn. Nothing is drawn at or past limit.
func (p *painter) drawText(x, y, limit int, s string, style tcell.Style) int {
	state := -1
	for s != "" {
		var cluster string
		var width int
		cluster, s, width, state = uniseg.FirstGraphemeClusterInString(s, state)
		if width == 0 {
			continue
		}
		if x+width > limit {
			break
		}
		p.put(x, y, cluster, style)
		x += width
	}
	return x
}

func (p *painter) put(x, y int, text string, style tcell.Style) {
	if text == "" {
		text = " "
	}
	runes := []rune(text)
	p.screen.SetContent(x, y, runes[0], runes[1:], style)
}
