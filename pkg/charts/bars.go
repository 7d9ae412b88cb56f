package charts

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/gilchrisn/rmse-report/pkg/analysis"
)

// Metric selects one side of a comparison
type Metric int

const (
	Interpolation Metric = iota
	Extrapolation
)

func (m Metric) String() string {
	if m == Extrapolation {
		return "Extrapolation"
	}
	return "Interpolation"
}

// Color returns the fixed color of the metric
func (m Metric) Color() color.Color {
	if m == Extrapolation {
		return ExtrapColor
	}
	return InterpColor
}

// BarOptions controls the labels of a comparison chart
type BarOptions struct {
	Title    string
	XLabel   string
	YLabel   string
	BarWidth vg.Length
}

func (o BarOptions) withDefaults(cmp analysis.Comparison) BarOptions {
	if o.Title == "" {
		o.Title = fmt.Sprintf("RMSE Comparison (%s)", cmp.Target)
	}
	if o.XLabel == "" {
		o.XLabel = "Model"
	}
	if o.YLabel == "" {
		o.YLabel = cmp.Normalization.AxisLabel("")
	}
	if o.BarWidth == 0 {
		o.BarWidth = vg.Points(28)
	}
	return o
}

// ComparisonBars draws interpolation and extrapolation bars side by side for
// every model, with standard error whiskers where variance is known.
func ComparisonBars(cmp analysis.Comparison, opts BarOptions) (*plot.Plot, error) {
	if len(cmp.Bars) == 0 {
		return nil, fmt.Errorf("no models to plot for target %s", cmp.Target)
	}
	opts = opts.withDefaults(cmp)

	p := newPlot(opts.Title, opts.XLabel, opts.YLabel, ComparisonFonts)
	half := opts.BarWidth / 2

	for _, m := range []Metric{Interpolation, Extrapolation} {
		values, errs := metricSeries(cmp, m)
		offset := -half
		if m == Extrapolation {
			offset = half
		}

		bars, err := plotter.NewBarChart(plotter.Values(heights(values)), opts.BarWidth)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s bars: %w", m, err)
		}
		bars.Color = m.Color()
		bars.LineStyle.Width = 0
		bars.Offset = offset

		p.Add(bars, newErrorBars(values, errs, offset))
		p.Legend.Add(m.String()+" RMSE", bars)
	}

	p.Legend.Top = true
	p.NominalX(cmp.Models()...)
	return p, nil
}

// MetricBars draws a single metric per model, used when interpolation and
// extrapolation get separate pages.
func MetricBars(cmp analysis.Comparison, m Metric, opts BarOptions) (*plot.Plot, error) {
	if len(cmp.Bars) == 0 {
		return nil, fmt.Errorf("no models to plot for target %s", cmp.Target)
	}
	if opts.Title == "" {
		opts.Title = fmt.Sprintf("%s RMSE (%s)", m, cmp.Target)
	}
	opts = opts.withDefaults(cmp)

	p := newPlot(opts.Title, opts.XLabel, opts.YLabel, ComparisonFonts)
	values, errs := metricSeries(cmp, m)

	bars, err := plotter.NewBarChart(plotter.Values(heights(values)), opts.BarWidth)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s bars: %w", m, err)
	}
	bars.Color = m.Color()
	bars.LineStyle.Width = 0

	p.Add(bars, newErrorBars(values, errs, 0))
	p.NominalX(cmp.Models()...)
	return p, nil
}

// metricSeries extracts the values and whisker sizes of one metric. Bars
// without variance get zero-sized whiskers, which are not drawn.
func metricSeries(cmp analysis.Comparison, m Metric) (values, errs []float64) {
	values = make([]float64, len(cmp.Bars))
	errs = make([]float64, len(cmp.Bars))
	for i, b := range cmp.Bars {
		if m == Extrapolation {
			values[i], errs[i] = b.Extrap, b.ExtrapErr
		} else {
			values[i], errs[i] = b.Interp, b.InterpErr
		}
		if !b.HasError {
			errs[i] = 0
		}
	}
	return values, errs
}

// heights replaces NaN placeholders with zero-height bars
func heights(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[i] = v
	}
	return out
}
