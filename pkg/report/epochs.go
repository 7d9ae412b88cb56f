package report

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/gilchrisn/rmse-report/pkg/analysis"
	"github.com/gilchrisn/rmse-report/pkg/charts"
	"github.com/gilchrisn/rmse-report/pkg/export"
	"github.com/gilchrisn/rmse-report/pkg/results"
)

// loadEpochSeries reads the epoch sweep table. A missing file marks the
// result skipped and returns no series.
func (r *Runner) loadEpochSeries(res *Result) ([]analysis.EpochSeries, error) {
	path := r.cfg.EpochsCSV()
	rows, err := results.LoadEpochs(path)
	if errors.Is(err, os.ErrNotExist) {
		r.warn(res, analysis.Warning{Path: path, Message: "epoch results not found, report skipped"})
		res.Skipped = true
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	series := analysis.GroupEpochs(rows)
	r.logger.Info().
		Str("path", path).
		Int("rows", len(rows)).
		Int("targets", len(series)).
		Msg("Loaded epoch results")
	return series, nil
}

// Epochs draws validation and test RMSE against training epochs, one figure
// per target found in the epoch table.
func (r *Runner) Epochs(ctx context.Context) (*Result, error) {
	res := &Result{Report: "epochs"}

	series, err := r.loadEpochSeries(res)
	if err != nil || res.Skipped {
		return res, err
	}

	sink, err := r.newSink(strings.ToLower(r.cfg.Format()), fileName(r.cfg.Prefix(), "epochs", "all", "targets"), fileName(r.cfg.Prefix(), "epochs"))
	if err != nil {
		return nil, err
	}

	for _, s := range series {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}

		p, err := charts.EpochCurves(s, r.cfg.UnitFor(s.Target))
		if errors.Is(err, charts.ErrNoPoints) {
			r.warn(res, analysis.Warning{Target: s.Target, Message: "no plottable epoch points, skipped"})
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := sink.add(s.Target, "", p); err != nil {
			return nil, err
		}
		res.Targets = append(res.Targets, s.Target)
	}

	outputs, err := sink.close()
	if err != nil {
		return nil, err
	}
	res.Outputs = outputs

	r.logger.Info().
		Int("targets", len(res.Targets)).
		Int("pages", res.Pages()).
		Msg("Epoch report complete")
	return res, nil
}

// EpochR2 draws R² against epochs for every target on a single figure
func (r *Runner) EpochR2(ctx context.Context) (*Result, error) {
	res := &Result{Report: "epoch-r2"}

	series, err := r.loadEpochSeries(res)
	if err != nil || res.Skipped {
		return res, err
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	p, drawn, err := charts.EpochR2Overview(series)
	if errors.Is(err, charts.ErrNoPoints) {
		r.warn(res, analysis.Warning{Message: "no plottable R² points, report skipped"})
		res.Skipped = true
		return res, nil
	}
	if err != nil {
		return nil, err
	}

	ext := ".pdf"
	if strings.ToLower(r.cfg.Format()) == FormatPNG {
		ext = ".png"
	}
	path := r.outputPath(fileName("r2", "epochs", "all", "targets") + ext)
	if err := export.SaveFigure(p, path, r.figureSize()); err != nil {
		return nil, err
	}

	res.Targets = drawn
	res.Outputs = []Output{{Path: path, Kind: strings.TrimPrefix(ext, "."), Pages: 1, Targets: res.Targets}}

	r.logger.Info().
		Str("path", path).
		Int("targets", len(res.Targets)).
		Msg("R² overview complete")
	return res, nil
}
