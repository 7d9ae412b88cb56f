package charts

import (
	"image/color"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Fixed series colors
var (
	InterpColor = color.RGBA{R: 220, G: 30, B: 30, A: 255}  // red
	ExtrapColor = color.RGBA{R: 30, G: 60, B: 220, A: 255}  // blue
	ValColor    = color.RGBA{R: 31, G: 119, B: 180, A: 255} // validation curves
	TestColor   = color.RGBA{R: 255, G: 127, B: 14, A: 255} // test curves
	GridColor   = color.Gray{Y: 180}
)

// Dashed is the dash pattern of test curves and grid lines
var Dashed = []vg.Length{vg.Points(4), vg.Points(3)}

// FontSizes groups the text sizes applied to a figure
type FontSizes struct {
	Title  vg.Length
	Label  vg.Length
	Tick   vg.Length
	Legend vg.Length
}

// ComparisonFonts is used for model comparison bar charts
var ComparisonFonts = FontSizes{
	Title:  vg.Points(14),
	Label:  vg.Points(15),
	Tick:   vg.Points(13),
	Legend: vg.Points(11),
}

// CurveFonts is used for the per-target epoch and pareto figures
var CurveFonts = FontSizes{
	Title:  vg.Points(28),
	Label:  vg.Points(24),
	Tick:   vg.Points(22),
	Legend: vg.Points(22),
}

// OverviewFonts is used when many series share one chart
var OverviewFonts = FontSizes{
	Title:  vg.Points(16),
	Label:  vg.Points(14),
	Tick:   vg.Points(12),
	Legend: vg.Points(9),
}

// apply sets every text size of a plot
func (f FontSizes) apply(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = f.Title
	p.X.Label.TextStyle.Font.Size = f.Label
	p.Y.Label.TextStyle.Font.Size = f.Label
	p.X.Tick.Label.Font.Size = f.Tick
	p.Y.Tick.Label.Font.Size = f.Tick
	p.Legend.TextStyle.Font.Size = f.Legend
}

// SeriesColor returns the palette color of the i-th series
func SeriesColor(i int) color.Color {
	return plotutil.Color(i)
}

// newPlot creates a titled plot with axis labels, fonts and a dashed grid
func newPlot(title, xLabel, yLabel string, fonts FontSizes) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	fonts.apply(p)

	grid := plotter.NewGrid()
	grid.Vertical.Color = GridColor
	grid.Vertical.Dashes = Dashed
	grid.Horizontal.Color = GridColor
	grid.Horizontal.Dashes = Dashed
	p.Add(grid)

	return p
}

// SigFigTicks labels the default ticks with a fixed number of significant figures
type SigFigTicks struct {
	Figures int
}

// Ticks implements plot.Ticker
func (t SigFigTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label == "" {
			continue
		}
		ticks[i].Label = strconv.FormatFloat(ticks[i].Value, 'g', t.Figures, 64)
	}
	return ticks
}
