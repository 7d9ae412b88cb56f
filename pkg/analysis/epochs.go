package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/gilchrisn/rmse-report/pkg/results"
)

// EpochPoint is the fold mean of one (target, epochs) group
type EpochPoint struct {
	Epochs   float64 `json:"epochs"`
	Folds    int     `json:"folds"`
	ValRMSE  float64 `json:"val_rmse"`
	TestRMSE float64 `json:"test_rmse"`
	ValR2    float64 `json:"val_r2"`
	TestR2   float64 `json:"test_r2"`
}

// EpochSeries is the epoch sweep of one target, ordered by epochs
type EpochSeries struct {
	Target string       `json:"target"`
	Points []EpochPoint `json:"points"`
}

// GroupEpochs averages every metric across folds for each (target, epochs)
// pair. NaN cells are left out of the mean; a group with no observed value
// for a metric keeps NaN. Targets come back sorted by name.
func GroupEpochs(rows []results.EpochRow) []EpochSeries {
	type key struct {
		target string
		epochs float64
	}
	groups := make(map[key][]results.EpochRow)
	epochsByTarget := make(map[string][]float64)

	for _, row := range rows {
		if math.IsNaN(row.Epochs) {
			continue
		}
		k := key{row.Target, row.Epochs}
		if _, seen := groups[k]; !seen {
			epochsByTarget[row.Target] = append(epochsByTarget[row.Target], row.Epochs)
		}
		groups[k] = append(groups[k], row)
	}

	targets := make([]string, 0, len(epochsByTarget))
	for target := range epochsByTarget {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	series := make([]EpochSeries, 0, len(targets))
	for _, target := range targets {
		epochs := epochsByTarget[target]
		sort.Float64s(epochs)

		s := EpochSeries{Target: target, Points: make([]EpochPoint, 0, len(epochs))}
		for _, e := range epochs {
			group := groups[key{target, e}]
			s.Points = append(s.Points, EpochPoint{
				Epochs:   e,
				Folds:    len(group),
				ValRMSE:  meanOf(group, func(r results.EpochRow) float64 { return r.ValRMSE }),
				TestRMSE: meanOf(group, func(r results.EpochRow) float64 { return r.TestRMSE }),
				ValR2:    meanOf(group, func(r results.EpochRow) float64 { return r.ValR2 }),
				TestR2:   meanOf(group, func(r results.EpochRow) float64 { return r.TestR2 }),
			})
		}
		series = append(series, s)
	}

	return series
}

func meanOf(rows []results.EpochRow, get func(results.EpochRow) float64) float64 {
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v := get(r); !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}

// ParetoFront keeps the rows that improve on the loss of every simpler
// equation. Input must be sorted by complexity.
func ParetoFront(rows []results.ParetoRow) []results.ParetoRow {
	front := make([]results.ParetoRow, 0, len(rows))
	best := math.Inf(1)
	for _, r := range rows {
		if math.IsNaN(r.Loss) || r.Loss >= best {
			continue
		}
		best = r.Loss
		front = append(front, r)
	}
	return front
}
