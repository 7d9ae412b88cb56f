package results

import "math"

// Record holds the error statistics of one model on one target
type Record struct {
	Target         string  `json:"target"`
	Model          string  `json:"model"`
	InterpMean     float64 `json:"interp_rmse_mean"`
	InterpVariance float64 `json:"interp_rmse_variance"`
	ExtrapMean     float64 `json:"extrap_rmse_mean"`
	ExtrapVariance float64 `json:"extrap_rmse_variance"`
	HasVariance    bool    `json:"has_variance"`
	Placeholder    bool    `json:"placeholder,omitempty"` // row was missing from the table
}

// MaxMean returns the larger of the two RMSE means, ignoring NaN
func (r Record) MaxMean() float64 {
	switch {
	case math.IsNaN(r.InterpMean):
		return r.ExtrapMean
	case math.IsNaN(r.ExtrapMean):
		return r.InterpMean
	}
	return math.Max(r.InterpMean, r.ExtrapMean)
}

// EpochRow is one fold of one training run in the epoch sweep table
type EpochRow struct {
	Target   string
	Epochs   float64
	Fold     int
	ValRMSE  float64
	TestRMSE float64
	ValR2    float64
	TestR2   float64
}

// ParetoRow is one equation of a symbolic regression hall of fame
type ParetoRow struct {
	Complexity float64
	Loss       float64
	Range2RMSE float64
}

// Column names used by the result tables
const (
	ColTarget       = "target"
	ColValRMSEMean  = "val_rmse_mean"
	ColValRMSEVar   = "val_rmse_variance"
	ColTestRMSEMean = "test_rmse_mean"
	ColTestRMSEVar  = "test_rmse_variance"
	ColEpochs       = "epochs"
	ColFold         = "fold"
	ColValRMSE      = "val_rmse"
	ColTestRMSE     = "test_rmse"
	ColValR2        = "val_r2"
	ColTestR2       = "test_r2"
	ColComplexity   = "Complexity"
	ColLoss         = "Loss"
	ColRange2RMSE   = "Range2_RMSE"
)
