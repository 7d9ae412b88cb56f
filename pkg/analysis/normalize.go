package analysis

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Strategy selects how a comparison is rescaled before plotting
type Strategy string

const (
	StrategyNone      Strategy = "none"       // raw RMSE
	StrategyTargetMax Strategy = "target-max" // divide by the largest RMSE of the target
	StrategyBaseline  Strategy = "baseline"   // divide by the baseline's larger RMSE
	StrategyMinMax    Strategy = "min-max"    // min-max across models, per metric
)

// ParseStrategy validates a strategy name
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case StrategyNone, StrategyTargetMax, StrategyBaseline, StrategyMinMax:
		return st, nil
	case "":
		return StrategyNone, nil
	}
	return "", fmt.Errorf("unknown normalization %q (want none, target-max, baseline or min-max)", s)
}

// AxisLabel returns the y axis label of a strategy
func (s Strategy) AxisLabel(unit string) string {
	switch s {
	case StrategyTargetMax:
		return "RMSE / max RMSE"
	case StrategyBaseline:
		return "RMSE / baseline RMSE"
	case StrategyMinMax:
		return "Min-max normalized RMSE"
	}
	if unit == "" {
		return "RMSE"
	}
	return fmt.Sprintf("RMSE [%s]", unit)
}

// Normalize rescales a comparison. Placeholder bars do not take part in the
// group statistics and keep their placeholder value. No strategy divides by
// zero: a zero group maximum or range yields zeros. Without a usable
// baseline the comparison is returned unscaled and marked StrategyNone.
func Normalize(cmp Comparison, strategy Strategy, baseline string) Comparison {
	out := Comparison{
		Target:        cmp.Target,
		Bars:          make([]Bar, len(cmp.Bars)),
		Normalization: strategy,
	}
	copy(out.Bars, cmp.Bars)

	switch strategy {
	case StrategyTargetMax:
		values := append(observed(out.Bars, interpOf), observed(out.Bars, extrapOf)...)
		if len(values) == 0 {
			return out
		}
		peak := floats.Max(values)
		scaleBars(out.Bars, 0, peak, 0, peak)
	case StrategyBaseline:
		if !HasBaseline(cmp, baseline) {
			out.Normalization = StrategyNone
			return out
		}
		d := BaselineDivisor(cmp, baseline)
		scaleBars(out.Bars, 0, d, 0, d)
	case StrategyMinMax:
		interp := observed(out.Bars, interpOf)
		extrap := observed(out.Bars, extrapOf)
		var iLo, iHi, eLo, eHi float64
		if len(interp) > 0 {
			iLo, iHi = floats.Min(interp), floats.Max(interp)
		}
		if len(extrap) > 0 {
			eLo, eHi = floats.Min(extrap), floats.Max(extrap)
		}
		scaleBars(out.Bars, iLo, iHi-iLo, eLo, eHi-eLo)
	default:
		out.Normalization = StrategyNone
	}

	return out
}

// HasBaseline reports whether the baseline model has a real bar with a
// nonzero RMSE to divide by.
func HasBaseline(cmp Comparison, baseline string) bool {
	for _, b := range cmp.Bars {
		if b.Model == baseline && !b.Placeholder {
			d := maxIgnoringNaN(b.Interp, b.Extrap)
			return d != 0 && !math.IsNaN(d)
		}
	}
	return false
}

// BaselineDivisor is the larger of the baseline model's two RMSE means, or 1
// when the baseline is absent or that maximum is zero.
func BaselineDivisor(cmp Comparison, baseline string) float64 {
	for _, b := range cmp.Bars {
		if b.Model != baseline || b.Placeholder {
			continue
		}
		d := maxIgnoringNaN(b.Interp, b.Extrap)
		if d == 0 || math.IsNaN(d) {
			return 1
		}
		return d
	}
	return 1
}

// scaleBars maps v to (v-offset)/div per metric. A zero divisor maps every
// observed value to zero.
func scaleBars(bars []Bar, iOffset, iDiv, eOffset, eDiv float64) {
	for i := range bars {
		if bars[i].Placeholder {
			continue
		}
		bars[i].Interp, bars[i].InterpErr = rescale(bars[i].Interp, bars[i].InterpErr, iOffset, iDiv)
		bars[i].Extrap, bars[i].ExtrapErr = rescale(bars[i].Extrap, bars[i].ExtrapErr, eOffset, eDiv)
	}
}

func rescale(v, err, offset, div float64) (float64, float64) {
	if math.IsNaN(v) {
		return v, err
	}
	if div == 0 {
		return 0, 0
	}
	return (v - offset) / div, err / math.Abs(div)
}

func maxIgnoringNaN(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	}
	return math.Max(a, b)
}

func interpOf(b Bar) float64 { return b.Interp }
func extrapOf(b Bar) float64 { return b.Extrap }

// observed collects the non-NaN values of real (non-placeholder) bars
func observed(bars []Bar, get func(Bar) float64) []float64 {
	values := make([]float64, 0, len(bars))
	for _, b := range bars {
		if b.Placeholder {
			continue
		}
		if v := get(b); !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	return values
}
