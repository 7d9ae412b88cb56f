package charts

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// errorBars draws symmetric vertical error bars on top of a bar chart. Bars
// sit at x = i with a canvas offset, so the error bars share that offset
// rather than being placed in data coordinates.
type errorBars struct {
	values   []float64
	errs     []float64
	offset   vg.Length
	capWidth vg.Length
	draw.LineStyle
}

func newErrorBars(values, errs []float64, offset vg.Length) *errorBars {
	return &errorBars{
		values:   values,
		errs:     errs,
		offset:   offset,
		capWidth: vg.Points(10),
		LineStyle: draw.LineStyle{
			Color: color.Black,
			Width: vg.Points(1),
		},
	}
}

// Plot implements plot.Plotter
func (e *errorBars) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	half := e.capWidth / 2

	for i, v := range e.values {
		err := e.errs[i]
		if math.IsNaN(v) || math.IsNaN(err) || err <= 0 {
			continue
		}
		x := trX(float64(i)) + e.offset
		lo, hi := trY(v-err), trY(v+err)

		c.StrokeLine2(e.LineStyle, x, lo, x, hi)
		c.StrokeLine2(e.LineStyle, x-half, lo, x+half, lo)
		c.StrokeLine2(e.LineStyle, x-half, hi, x+half, hi)
	}
}

// DataRange implements plot.DataRanger so the y axis fits the whiskers
func (e *errorBars) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = 0, float64(len(e.values)-1)
	ymin, ymax = math.Inf(1), math.Inf(-1)
	for i, v := range e.values {
		if math.IsNaN(v) {
			continue
		}
		err := e.errs[i]
		if math.IsNaN(err) || err < 0 {
			err = 0
		}
		ymin = math.Min(ymin, v-err)
		ymax = math.Max(ymax, v+err)
	}
	if math.IsInf(ymin, 1) {
		ymin, ymax = 0, 0
	}
	return xmin, xmax, ymin, ymax
}
