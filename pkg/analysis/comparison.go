package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/gilchrisn/rmse-report/pkg/results"
)

// MissingPolicy decides what a missing target/model row turns into
type MissingPolicy string

const (
	MissingZero MissingPolicy = "zero" // zero-height bar
	MissingNaN  MissingPolicy = "nan"  // not-a-number, drawn as an empty slot
	MissingSkip MissingPolicy = "skip" // model left out of the group
)

// ParseMissingPolicy validates a policy name
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch p := MissingPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case MissingZero, MissingNaN, MissingSkip:
		return p, nil
	case "":
		return MissingZero, nil
	}
	return "", fmt.Errorf("unknown missing policy %q (want zero, nan or skip)", s)
}

// Bar is one model's plot-ready interpolation/extrapolation pair
type Bar struct {
	Model       string  `json:"model"`
	Interp      float64 `json:"interp"`
	InterpErr   float64 `json:"interp_err"`
	Extrap      float64 `json:"extrap"`
	ExtrapErr   float64 `json:"extrap_err"`
	HasError    bool    `json:"has_error"`
	Placeholder bool    `json:"placeholder"`
}

// Comparison is the bar group of one target
type Comparison struct {
	Target        string   `json:"target"`
	Bars          []Bar    `json:"bars"`
	Normalization Strategy `json:"normalization"`
}

// Warning records absent data that was replaced instead of aborting
type Warning struct {
	Target  string `json:"target,omitempty"`
	Model   string `json:"model,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	parts := make([]string, 0, 4)
	if w.Target != "" {
		parts = append(parts, "target="+w.Target)
	}
	if w.Model != "" {
		parts = append(parts, "model="+w.Model)
	}
	if w.Path != "" {
		parts = append(parts, "path="+w.Path)
	}
	parts = append(parts, w.Message)
	return strings.Join(parts, " ")
}

// StdErr turns a variance into the error bar half-height
func StdErr(variance float64) float64 {
	if math.IsNaN(variance) || variance <= 0 {
		return 0
	}
	return math.Sqrt(variance)
}

// BarFromRecord converts a statistics record to a bar
func BarFromRecord(rec results.Record) Bar {
	bar := Bar{
		Model:       rec.Model,
		Interp:      rec.InterpMean,
		Extrap:      rec.ExtrapMean,
		HasError:    rec.HasVariance,
		Placeholder: rec.Placeholder,
	}
	if rec.HasVariance {
		bar.InterpErr = StdErr(rec.InterpVariance)
		bar.ExtrapErr = StdErr(rec.ExtrapVariance)
	}
	return bar
}

// PlaceholderBar returns the stand-in for a missing row, or false under MissingSkip
func PlaceholderBar(model string, policy MissingPolicy) (Bar, bool) {
	switch policy {
	case MissingSkip:
		return Bar{}, false
	case MissingNaN:
		return Bar{Model: model, Interp: math.NaN(), Extrap: math.NaN(), Placeholder: true}, true
	}
	return Bar{Model: model, Placeholder: true}, true
}

// BuildComparison gathers the bars of one target across models in the given
// order. Models without a loaded table are left out; a table without the
// target yields a placeholder bar and a warning.
func BuildComparison(target string, models []string, tables map[string]*results.StatisticsTable, policy MissingPolicy) (Comparison, []Warning) {
	cmp := Comparison{Target: target, Normalization: StrategyNone}
	var warnings []Warning

	for _, model := range models {
		table, ok := tables[model]
		if !ok || table == nil {
			continue
		}

		rec, found := table.Lookup(target)
		if found {
			cmp.Bars = append(cmp.Bars, BarFromRecord(rec))
			continue
		}

		warnings = append(warnings, Warning{
			Target:  target,
			Model:   model,
			Path:    table.Path,
			Message: fmt.Sprintf("target not found in %s's table", model),
		})
		if bar, keep := PlaceholderBar(model, policy); keep {
			cmp.Bars = append(cmp.Bars, bar)
		}
	}

	return cmp, warnings
}

// Models returns the model names of the bars in order
func (c Comparison) Models() []string {
	names := make([]string, len(c.Bars))
	for i, b := range c.Bars {
		names[i] = b.Model
	}
	return names
}

// Empty reports whether no model produced real data for the target
func (c Comparison) Empty() bool {
	for _, b := range c.Bars {
		if !b.Placeholder {
			return false
		}
	}
	return true
}
