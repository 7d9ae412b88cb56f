package results

import (
	"fmt"
	"math"
	"sort"
)

// StatisticsTable indexes one model's per-target RMSE statistics
type StatisticsTable struct {
	Model       string
	Path        string
	HasVariance bool
	records     map[string]Record
	order       []string
}

// LoadStatistics reads a per-target statistics table for a model. The
// variance columns are optional; tables without them produce records with
// HasVariance unset.
func LoadStatistics(model, path string) (*StatisticsTable, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	return NewStatisticsTable(model, table)
}

// NewStatisticsTable builds the target index from an already parsed table.
// When a target appears more than once the first row wins.
func NewStatisticsTable(model string, table *Table) (*StatisticsTable, error) {
	cols, err := table.Require(ColTarget, ColValRMSEMean, ColTestRMSEMean)
	if err != nil {
		return nil, err
	}
	valVar, hasValVar := table.Column(ColValRMSEVar)
	testVar, hasTestVar := table.Column(ColTestRMSEVar)

	st := &StatisticsTable{
		Model:       model,
		Path:        table.Path,
		HasVariance: hasValVar && hasTestVar,
		records:     make(map[string]Record, len(table.Rows)),
	}

	for row := range table.Rows {
		target := table.String(row, cols[0])
		if target == "" {
			continue
		}
		if _, seen := st.records[target]; seen {
			continue
		}

		rec := Record{Target: target, Model: model, HasVariance: st.HasVariance}
		if rec.InterpMean, err = table.Float(row, cols[1]); err != nil {
			return nil, err
		}
		if rec.ExtrapMean, err = table.Float(row, cols[2]); err != nil {
			return nil, err
		}
		if st.HasVariance {
			if rec.InterpVariance, err = table.Float(row, valVar); err != nil {
				return nil, err
			}
			if rec.ExtrapVariance, err = table.Float(row, testVar); err != nil {
				return nil, err
			}
			rec.InterpVariance = clampVariance(rec.InterpVariance)
			rec.ExtrapVariance = clampVariance(rec.ExtrapVariance)
		}

		st.records[target] = rec
		st.order = append(st.order, target)
	}

	return st, nil
}

// Lookup returns the record of a target
func (st *StatisticsTable) Lookup(target string) (Record, bool) {
	rec, ok := st.records[target]
	return rec, ok
}

// Targets returns the targets in file order
func (st *StatisticsTable) Targets() []string {
	out := make([]string, len(st.order))
	copy(out, st.order)
	return out
}

// DropVariance marks every record as having no variance, for models whose
// table carries placeholder variance columns.
func (st *StatisticsTable) DropVariance() {
	st.HasVariance = false
	for target, rec := range st.records {
		rec.HasVariance = false
		rec.InterpVariance = 0
		rec.ExtrapVariance = 0
		st.records[target] = rec
	}
}

// clampVariance keeps variance non-negative; NaN counts as unknown (0)
func clampVariance(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// LoadEpochs reads the epoch sweep table. target and epochs are required;
// metric columns that are absent read as NaN.
func LoadEpochs(path string) ([]EpochRow, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	return ParseEpochs(table)
}

// ParseEpochs converts an already parsed epoch sweep table
func ParseEpochs(table *Table) ([]EpochRow, error) {
	cols, err := table.Require(ColTarget, ColEpochs)
	if err != nil {
		return nil, err
	}

	optional := func(name string) int {
		if idx, ok := table.Column(name); ok {
			return idx
		}
		return -1
	}
	foldCol := optional(ColFold)
	metricCols := []int{
		optional(ColValRMSE),
		optional(ColTestRMSE),
		optional(ColValR2),
		optional(ColTestR2),
	}

	rows := make([]EpochRow, 0, len(table.Rows))
	for row := range table.Rows {
		target := table.String(row, cols[0])
		if target == "" {
			continue
		}
		epochs, err := table.Float(row, cols[1])
		if err != nil {
			return nil, err
		}

		metrics := make([]float64, len(metricCols))
		for i, col := range metricCols {
			if col < 0 {
				metrics[i] = math.NaN()
				continue
			}
			if metrics[i], err = table.Float(row, col); err != nil {
				return nil, err
			}
		}

		fold := 0
		if foldCol >= 0 {
			f, err := table.Float(row, foldCol)
			if err != nil {
				return nil, err
			}
			if !math.IsNaN(f) {
				fold = int(f)
			}
		}

		rows = append(rows, EpochRow{
			Target:   target,
			Epochs:   epochs,
			Fold:     fold,
			ValRMSE:  metrics[0],
			TestRMSE: metrics[1],
			ValR2:    metrics[2],
			TestR2:   metrics[3],
		})
	}

	return rows, nil
}

// LoadPareto reads a symbolic regression hall of fame, sorted by complexity
func LoadPareto(path string) ([]ParetoRow, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	return ParsePareto(table)
}

// ParsePareto converts an already parsed hall of fame table. Range2_RMSE is
// optional and reads as NaN when absent.
func ParsePareto(table *Table) ([]ParetoRow, error) {
	cols, err := table.Require(ColComplexity, ColLoss)
	if err != nil {
		return nil, err
	}
	rangeCol, hasRange := table.Column(ColRange2RMSE)

	rows := make([]ParetoRow, 0, len(table.Rows))
	for row := range table.Rows {
		var pr ParetoRow
		if pr.Complexity, err = table.Float(row, cols[0]); err != nil {
			return nil, err
		}
		if math.IsNaN(pr.Complexity) {
			continue
		}
		if pr.Loss, err = table.Float(row, cols[1]); err != nil {
			return nil, err
		}
		pr.Range2RMSE = math.NaN()
		if hasRange {
			if pr.Range2RMSE, err = table.Float(row, rangeCol); err != nil {
				return nil, err
			}
		}
		rows = append(rows, pr)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Complexity < rows[j].Complexity
	})

	return rows, nil
}

// String is used in warnings
func (st *StatisticsTable) String() string {
	return fmt.Sprintf("%s (%s)", st.Model, st.Path)
}
