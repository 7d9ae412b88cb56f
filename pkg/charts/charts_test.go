package charts

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/gilchrisn/rmse-report/pkg/analysis"
	"github.com/gilchrisn/rmse-report/pkg/results"
)

// render draws a plot onto an in-memory canvas so layout code runs
func render(t *testing.T, p *plot.Plot) {
	t.Helper()
	c := vgimg.New(6*vg.Inch, 4*vg.Inch)
	p.Draw(draw.New(c))
}

func sampleComparison() analysis.Comparison {
	return analysis.Comparison{
		Target:        "Tm",
		Normalization: analysis.StrategyNone,
		Bars: []analysis.Bar{
			{Model: "LR", Interp: 40, InterpErr: 4, Extrap: 80, ExtrapErr: 5, HasError: true},
			{Model: "NN", Interp: math.NaN(), Extrap: math.NaN(), Placeholder: true},
			{Model: "SR", Interp: 30, Extrap: 50},
		},
	}
}

func TestComparisonBars(t *testing.T) {
	p, err := ComparisonBars(sampleComparison(), BarOptions{YLabel: "RMSE [K]"})
	if err != nil {
		t.Fatalf("ComparisonBars failed: %v", err)
	}
	if p.Title.Text != "RMSE Comparison (Tm)" {
		t.Errorf("Unexpected title %q", p.Title.Text)
	}
	if p.Y.Label.Text != "RMSE [K]" {
		t.Errorf("Expected caller's y label, got %q", p.Y.Label.Text)
	}
	render(t, p)
}

func TestComparisonBarsEmpty(t *testing.T) {
	if _, err := ComparisonBars(analysis.Comparison{Target: "Tm"}, BarOptions{}); err == nil {
		t.Error("Expected an error for a comparison without bars")
	}
}

func TestMetricBars(t *testing.T) {
	for _, m := range []Metric{Interpolation, Extrapolation} {
		t.Run(m.String(), func(t *testing.T) {
			p, err := MetricBars(sampleComparison(), m, BarOptions{})
			if err != nil {
				t.Fatalf("MetricBars failed: %v", err)
			}
			want := m.String() + " RMSE (Tm)"
			if p.Title.Text != want {
				t.Errorf("Expected title %q, got %q", want, p.Title.Text)
			}
			render(t, p)
		})
	}
}

func TestMetricSeries(t *testing.T) {
	values, errs := metricSeries(sampleComparison(), Extrapolation)
	if values[0] != 80 || errs[0] != 5 {
		t.Errorf("Unexpected LR extrapolation %v ± %v", values[0], errs[0])
	}
	if !math.IsNaN(values[1]) {
		t.Errorf("Expected NaN placeholder to be carried, got %v", values[1])
	}
	if errs[2] != 0 {
		t.Errorf("Expected no whisker for a model without variance, got %v", errs[2])
	}

	h := heights(values)
	if h[1] != 0 || h[0] != 80 {
		t.Errorf("Expected NaN to become a zero-height bar, got %v", h)
	}
}

func TestErrorBarsDataRange(t *testing.T) {
	eb := newErrorBars([]float64{10, math.NaN(), 4}, []float64{2, 1, 0}, 0)
	xmin, xmax, ymin, ymax := eb.DataRange()
	if xmin != 0 || xmax != 2 {
		t.Errorf("Unexpected x range [%v, %v]", xmin, xmax)
	}
	if ymin != 4 || ymax != 12 {
		t.Errorf("Unexpected y range [%v, %v]", ymin, ymax)
	}
}

func TestSigFigTicks(t *testing.T) {
	ticks := SigFigTicks{Figures: 3}.Ticks(0.001234, 0.004567)
	labelled := 0
	for _, tick := range ticks {
		if tick.Label == "" {
			continue
		}
		labelled++
		if len(tick.Label) > 6 {
			t.Errorf("Expected a short label, got %q", tick.Label)
		}
	}
	if labelled == 0 {
		t.Error("Expected labelled ticks")
	}
}

func TestXYPoints(t *testing.T) {
	xs := []float64{0, 10, 100, 1000}
	ys := []float64{1, math.NaN(), 3, 4}

	if got := len(xyPoints(xs, ys, false)); got != 3 {
		t.Errorf("Expected NaN to be dropped, got %d points", got)
	}
	if got := len(xyPoints(xs, ys, true)); got != 2 {
		t.Errorf("Expected non-positive x to be dropped on log axes, got %d points", got)
	}
}

func TestEpochCurves(t *testing.T) {
	s := analysis.EpochSeries{Target: "Tm", Points: []analysis.EpochPoint{
		{Epochs: 10, ValRMSE: 60, TestRMSE: 90},
		{Epochs: 100, ValRMSE: 40, TestRMSE: 70},
		{Epochs: 1000, ValRMSE: 30, TestRMSE: 65},
	}}

	p, err := EpochCurves(s, "K")
	if err != nil {
		t.Fatalf("EpochCurves failed: %v", err)
	}
	if p.Y.Label.Text != "RMSE [K]" {
		t.Errorf("Unexpected y label %q", p.Y.Label.Text)
	}
	if p.Title.Text != "RMSE vs NN Training Epochs for Tm" {
		t.Errorf("Unexpected title %q", p.Title.Text)
	}
	render(t, p)
}

func TestEpochCurvesWithoutData(t *testing.T) {
	s := analysis.EpochSeries{Target: "Tm", Points: []analysis.EpochPoint{
		{Epochs: 10, ValRMSE: math.NaN(), TestRMSE: math.NaN()},
	}}
	if _, err := EpochCurves(s, ""); !errors.Is(err, ErrNoPoints) {
		t.Errorf("Expected ErrNoPoints, got %v", err)
	}
}

func TestEpochR2Overview(t *testing.T) {
	all := []analysis.EpochSeries{
		{Target: "Tm", Points: []analysis.EpochPoint{{Epochs: 10, ValR2: 0.5, TestR2: 0.3}, {Epochs: 100, ValR2: 0.8, TestR2: 0.6}}},
		{Target: "logS", Points: []analysis.EpochPoint{{Epochs: 10, ValR2: 0.7, TestR2: 0.4}}},
	}
	p, drawn, err := EpochR2Overview(all)
	if err != nil {
		t.Fatalf("EpochR2Overview failed: %v", err)
	}
	if len(drawn) != 2 {
		t.Errorf("Expected both targets drawn, got %v", drawn)
	}
	render(t, p)
}

func TestEpochR2OverviewDrawnTargets(t *testing.T) {
	all := []analysis.EpochSeries{
		{Target: "Tm", Points: []analysis.EpochPoint{{Epochs: 10, ValR2: 0.5, TestR2: 0.3}}},
		{Target: "logS", Points: []analysis.EpochPoint{{Epochs: 10, ValR2: math.NaN(), TestR2: math.NaN()}}},
	}
	_, drawn, err := EpochR2Overview(all)
	if err != nil {
		t.Fatalf("EpochR2Overview failed: %v", err)
	}
	if len(drawn) != 1 || drawn[0] != "Tm" {
		t.Errorf("Expected only Tm to be reported, got %v", drawn)
	}
}

func TestSingleEpochSweep(t *testing.T) {
	single := analysis.EpochSeries{Target: "Tm", Points: []analysis.EpochPoint{
		{Epochs: 1, ValRMSE: 5, TestRMSE: 6, ValR2: 0.4, TestR2: 0.3},
	}}

	t.Run("EpochCurves", func(t *testing.T) {
		p, err := EpochCurves(single, "K")
		if err != nil {
			t.Fatalf("EpochCurves failed: %v", err)
		}
		if p.X.Min <= 0 || p.X.Min >= p.X.Max {
			t.Errorf("Expected a positive widened x range, got [%v, %v]", p.X.Min, p.X.Max)
		}
		render(t, p)
	})

	t.Run("EpochR2Overview", func(t *testing.T) {
		p, _, err := EpochR2Overview([]analysis.EpochSeries{single})
		if err != nil {
			t.Fatalf("EpochR2Overview failed: %v", err)
		}
		if p.X.Min != 0.1 || p.X.Max != 10 {
			t.Errorf("Expected x range [0.1, 10], got [%v, %v]", p.X.Min, p.X.Max)
		}
		render(t, p)
	})
}

func TestParetoCurves(t *testing.T) {
	rows := []results.ParetoRow{
		{Complexity: 1, Loss: 3, Range2RMSE: 4},
		{Complexity: 3, Loss: 3.5, Range2RMSE: math.NaN()},
		{Complexity: 5, Loss: 1, Range2RMSE: 2},
	}
	p, err := ParetoCurves("Ebd", rows, "MV/m")
	if err != nil {
		t.Fatalf("ParetoCurves failed: %v", err)
	}
	render(t, p)
}
