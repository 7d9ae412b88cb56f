package report

import (
	"context"
	"errors"

	"github.com/gilchrisn/rmse-report/pkg/analysis"
	"github.com/gilchrisn/rmse-report/pkg/export"
)

// Bundle collects the per-target PNG charts into one A4 PDF
func (r *Runner) Bundle(ctx context.Context) (*Result, error) {
	res := &Result{Report: "bundle"}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	targets := r.cfg.Targets()
	paths := make([]string, len(targets))
	byPath := make(map[string]string, len(targets))
	for i, target := range targets {
		paths[i] = TargetPath(r.cfg.ImagePattern(), target)
		byPath[paths[i]] = target
	}

	out := r.outputPath(fileName(r.cfg.Prefix(), "bundle") + ".pdf")
	bundle, err := export.ImagesToPDF(paths, out, export.A4)
	for _, missing := range bundle.Missing {
		r.warn(res, analysis.Warning{Target: byPath[missing], Path: missing, Message: "image not found, page skipped"})
	}
	if errors.Is(err, export.ErrEmptyDocument) {
		res.Skipped = true
		return res, nil
	}
	if err != nil {
		return nil, err
	}

	absent := make(map[string]bool, len(bundle.Missing))
	for _, m := range bundle.Missing {
		absent[m] = true
	}
	for _, path := range paths {
		if !absent[path] {
			res.Targets = append(res.Targets, byPath[path])
		}
	}
	res.Outputs = []Output{{Path: out, Kind: "pdf", Pages: bundle.Pages, Targets: res.Targets}}

	r.logger.Info().
		Str("path", out).
		Int("pages", bundle.Pages).
		Int("missing", len(bundle.Missing)).
		Msg("Image bundle complete")
	return res, nil
}
