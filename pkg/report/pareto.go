package report

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/gilchrisn/rmse-report/pkg/analysis"
	"github.com/gilchrisn/rmse-report/pkg/charts"
	"github.com/gilchrisn/rmse-report/pkg/results"
)

// TargetPath substitutes a target name into a {target} file pattern
func TargetPath(pattern, target string) string {
	return strings.ReplaceAll(pattern, "{target}", target)
}

// Pareto draws loss and range-2 RMSE against equation complexity for every
// configured target that has a hall-of-fame table.
func (r *Runner) Pareto(ctx context.Context) (*Result, error) {
	res := &Result{Report: "pareto"}

	sink, err := r.newSink(strings.ToLower(r.cfg.Format()), fileName("pareto", "all", "targets"), "pareto")
	if err != nil {
		return nil, err
	}

	for _, target := range r.cfg.Targets() {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}

		path := TargetPath(r.cfg.ParetoPattern(), target)
		rows, err := results.LoadPareto(path)
		if errors.Is(err, os.ErrNotExist) {
			r.warn(res, analysis.Warning{Target: target, Path: path, Message: "hall of fame not found, target skipped"})
			continue
		}
		if err != nil {
			return nil, err
		}

		p, err := charts.ParetoCurves(target, rows, r.cfg.UnitFor(target))
		if errors.Is(err, charts.ErrNoPoints) {
			r.warn(res, analysis.Warning{Target: target, Path: path, Message: "no plottable equations, target skipped"})
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := sink.add(target, "", p); err != nil {
			return nil, err
		}
		res.Targets = append(res.Targets, target)
	}

	outputs, err := sink.close()
	if err != nil {
		return nil, err
	}
	res.Outputs = outputs
	res.Skipped = len(res.Targets) == 0

	r.logger.Info().
		Int("targets", len(res.Targets)).
		Int("pages", res.Pages()).
		Msg("Pareto report complete")
	return res, nil
}
