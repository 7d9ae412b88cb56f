package charts

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/gilchrisn/rmse-report/pkg/analysis"
	"github.com/gilchrisn/rmse-report/pkg/results"
)

// ErrNoPoints is returned when every point of every series was filtered out
var ErrNoPoints = errors.New("no plottable points")

// series is one named curve of a line chart
type series struct {
	name   string
	xys    plotter.XYs
	color  color.Color
	dashed bool
	radius vg.Length
}

// xyPoints pairs xs and ys, dropping NaN/Inf values and, for log axes,
// non-positive x values.
func xyPoints(xs, ys []float64, logX bool) plotter.XYs {
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		x, y := xs[i], ys[i]
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			continue
		}
		if logX && x <= 0 {
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	return pts
}

// addSeries draws each curve as a line with circle markers and registers it
// in the legend. Empty curves are skipped.
func addSeries(p *plot.Plot, curves []series) error {
	drawn := 0
	for _, s := range curves {
		if len(s.xys) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(s.xys)
		if err != nil {
			return fmt.Errorf("failed to build %q: %w", s.name, err)
		}
		line.Color = s.color
		line.Width = vg.Points(2)
		if s.dashed {
			line.Dashes = Dashed
		}
		points.Shape = draw.CircleGlyph{}
		points.Color = s.color
		points.Radius = s.radius

		p.Add(line, points)
		p.Legend.Add(s.name, line, points)
		drawn++
	}
	if drawn == 0 {
		return ErrNoPoints
	}
	return nil
}

func setLogX(p *plot.Plot) {
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
}

// widenLogX spreads a collapsed x range over a decade each side. Left alone,
// plot pads an equal range by ±1, which reaches zero for x = 1 and breaks
// the log scale.
func widenLogX(p *plot.Plot) {
	if p.X.Min == p.X.Max && p.X.Min > 0 {
		x := p.X.Min
		p.X.Min, p.X.Max = x/10, x*10
	}
}

func rmseAxis(unit string) string {
	if unit == "" {
		return "RMSE"
	}
	return fmt.Sprintf("RMSE [%s]", unit)
}

// EpochCurves plots validation and test RMSE against training epochs for one
// target on a log x axis.
func EpochCurves(s analysis.EpochSeries, unit string) (*plot.Plot, error) {
	p := newPlot(
		fmt.Sprintf("RMSE vs NN Training Epochs for %s", s.Target),
		"Epochs (log scale)",
		rmseAxis(unit),
		CurveFonts,
	)
	setLogX(p)
	p.Y.Tick.Marker = SigFigTicks{Figures: 3}

	xs := make([]float64, len(s.Points))
	val := make([]float64, len(s.Points))
	test := make([]float64, len(s.Points))
	for i, pt := range s.Points {
		xs[i], val[i], test[i] = pt.Epochs, pt.ValRMSE, pt.TestRMSE
	}

	err := addSeries(p, []series{
		{name: "Validation RMSE", xys: xyPoints(xs, val, true), color: ValColor, radius: vg.Points(4)},
		{name: "Test RMSE", xys: xyPoints(xs, test, true), color: TestColor, radius: vg.Points(4)},
	})
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", s.Target, err)
	}
	widenLogX(p)

	p.Legend.Top = true
	return p, nil
}

// EpochR2Overview plots R² against epochs for every target on one chart:
// validation solid, test dashed, one palette color per target. It also
// returns the targets that got at least one curve.
func EpochR2Overview(all []analysis.EpochSeries) (*plot.Plot, []string, error) {
	p := newPlot("R² vs Epochs for All Targets", "Epochs (log scale)", "R²", OverviewFonts)
	setLogX(p)

	curves := make([]series, 0, 2*len(all))
	var drawn []string
	for i, s := range all {
		xs := make([]float64, len(s.Points))
		val := make([]float64, len(s.Points))
		test := make([]float64, len(s.Points))
		for j, pt := range s.Points {
			xs[j], val[j], test[j] = pt.Epochs, pt.ValR2, pt.TestR2
		}
		col := SeriesColor(i)
		valXYs, testXYs := xyPoints(xs, val, true), xyPoints(xs, test, true)
		if len(valXYs) > 0 || len(testXYs) > 0 {
			drawn = append(drawn, s.Target)
		}
		curves = append(curves,
			series{
				name:   fmt.Sprintf("Validation R² (Target: %s)", s.Target),
				xys:    valXYs,
				color:  col,
				radius: vg.Points(2.5),
			},
			series{
				name:   fmt.Sprintf("Test R² (Target: %s)", s.Target),
				xys:    testXYs,
				color:  col,
				dashed: true,
				radius: vg.Points(2.5),
			},
		)
	}

	if err := addSeries(p, curves); err != nil {
		return nil, nil, err
	}
	widenLogX(p)

	p.Legend.Top = true
	p.Legend.Left = true
	return p, drawn, nil
}

// ParetoCurves plots the loss of every hall-of-fame equation, the pareto
// front and, when present, the range-2 extrapolation RMSE against
// equation complexity.
func ParetoCurves(target string, rows []results.ParetoRow, unit string) (*plot.Plot, error) {
	p := newPlot(
		fmt.Sprintf("Loss and Range2 RMSE vs Complexity for %s", target),
		"Complexity",
		rmseAxis(unit),
		CurveFonts,
	)
	p.Y.Tick.Marker = SigFigTicks{Figures: 3}

	front := analysis.ParetoFront(rows)
	cx := make([]float64, len(rows))
	loss := make([]float64, len(rows))
	rng := make([]float64, len(rows))
	for i, r := range rows {
		cx[i], loss[i], rng[i] = r.Complexity, r.Loss, r.Range2RMSE
	}
	fx := make([]float64, len(front))
	fl := make([]float64, len(front))
	for i, r := range front {
		fx[i], fl[i] = r.Complexity, r.Loss
	}

	if all := xyPoints(cx, loss, false); len(all) > len(front) {
		scatter, err := plotter.NewScatter(all)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", target, err)
		}
		scatter.Shape = draw.RingGlyph{}
		scatter.Color = GridColor
		scatter.Radius = vg.Points(3)
		p.Add(scatter)
		p.Legend.Add("All equations", scatter)
	}

	err := addSeries(p, []series{
		{name: "Loss (pareto front)", xys: xyPoints(fx, fl, false), color: ValColor, radius: vg.Points(4)},
		{name: "Range2 RMSE", xys: xyPoints(cx, rng, false), color: TestColor, dashed: true, radius: vg.Points(4)},
	})
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", target, err)
	}

	p.Legend.Top = true
	return p, nil
}
