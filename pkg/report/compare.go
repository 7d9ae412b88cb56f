package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gilchrisn/rmse-report/pkg/analysis"
	"github.com/gilchrisn/rmse-report/pkg/charts"
	"github.com/gilchrisn/rmse-report/pkg/export"
	"github.com/gilchrisn/rmse-report/pkg/results"
)

// ErrNoModels is returned when none of the configured model tables loads
var ErrNoModels = errors.New("no model statistics could be loaded")

// CompareOptions are the resolved settings of a comparison run
type CompareOptions struct {
	Strategy analysis.Strategy
	Policy   analysis.MissingPolicy
	Baseline string
	Layout   string
	Format   string
	Summary  bool
}

// compareOptions validates the comparison settings of the configuration
func (r *Runner) compareOptions() (CompareOptions, error) {
	strategy, err := analysis.ParseStrategy(r.cfg.Normalization())
	if err != nil {
		return CompareOptions{}, err
	}
	policy, err := analysis.ParseMissingPolicy(r.cfg.Missing())
	if err != nil {
		return CompareOptions{}, err
	}
	layout := strings.ToLower(r.cfg.Layout())
	switch layout {
	case "":
		layout = LayoutCombined
	case LayoutCombined, LayoutSplit:
	default:
		return CompareOptions{}, fmt.Errorf("unknown layout %q (want combined or split)", r.cfg.Layout())
	}
	return CompareOptions{
		Strategy: strategy,
		Policy:   policy,
		Baseline: r.cfg.Baseline(),
		Layout:   layout,
		Format:   strings.ToLower(r.cfg.Format()),
		Summary:  r.cfg.Summary(),
	}, nil
}

// loadModels reads every configured statistics table. A missing file only
// drops that model; any other read error aborts.
func (r *Runner) loadModels(res *Result) ([]string, map[string]*results.StatisticsTable, error) {
	noVariance := make(map[string]bool)
	for _, m := range r.cfg.NoVarianceModels() {
		noVariance[strings.ToLower(m)] = true
	}

	var models []string
	tables := make(map[string]*results.StatisticsTable)

	for _, model := range r.cfg.ModelOrder() {
		path, ok := r.cfg.ModelFile(model)
		if !ok || path == "" {
			r.warn(res, analysis.Warning{Model: model, Message: "no statistics file configured"})
			continue
		}

		table, err := results.LoadStatistics(model, path)
		if errors.Is(err, os.ErrNotExist) {
			r.warn(res, analysis.Warning{Model: model, Path: path, Message: "statistics file not found, model skipped"})
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		if noVariance[strings.ToLower(model)] {
			table.DropVariance()
		}

		r.logger.Info().
			Str("model", model).
			Str("path", path).
			Int("targets", len(table.Targets())).
			Bool("variance", table.HasVariance).
			Msg("Loaded statistics")

		models = append(models, model)
		tables[model] = table
	}

	if len(models) == 0 {
		return nil, nil, ErrNoModels
	}
	return models, tables, nil
}

// comparisonTargets returns the configured targets, or every target found in
// the loaded tables in first-seen order when none are configured.
func (r *Runner) comparisonTargets(models []string, tables map[string]*results.StatisticsTable) []string {
	if targets := r.cfg.Targets(); len(targets) > 0 {
		return targets
	}
	seen := make(map[string]bool)
	var targets []string
	for _, m := range models {
		for _, t := range tables[m].Targets() {
			if !seen[t] {
				seen[t] = true
				targets = append(targets, t)
			}
		}
	}
	return targets
}

// Compare draws the per-target model comparison bar charts
func (r *Runner) Compare(ctx context.Context) (*Result, error) {
	res := &Result{Report: "compare"}

	opts, err := r.compareOptions()
	if err != nil {
		return nil, err
	}
	models, tables, err := r.loadModels(res)
	if errors.Is(err, ErrNoModels) {
		r.warn(res, analysis.Warning{Message: "no model statistics available, report skipped"})
		res.Skipped = true
		return res, nil
	}
	if err != nil {
		return nil, err
	}

	prefix := r.cfg.Prefix()
	sink, err := r.newSink(opts.Format, fileName(prefix, "comparison"), prefix)
	if err != nil {
		return nil, err
	}

	r.logger.Info().
		Strs("models", models).
		Str("normalization", string(opts.Strategy)).
		Str("layout", opts.Layout).
		Str("format", opts.Format).
		Msg("Starting comparison report")

	var comparisons []analysis.Comparison
	for _, target := range r.comparisonTargets(models, tables) {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}

		cmp, warnings := analysis.BuildComparison(target, models, tables, opts.Policy)
		for _, w := range warnings {
			r.warn(res, w)
		}
		if cmp.Empty() {
			r.warn(res, analysis.Warning{Target: target, Message: "no model has data for target, skipped"})
			continue
		}

		if opts.Strategy == analysis.StrategyBaseline && !analysis.HasBaseline(cmp, opts.Baseline) {
			r.warn(res, analysis.Warning{
				Target:  target,
				Model:   opts.Baseline,
				Message: "baseline model has no data for target, raw RMSE shown",
			})
		}
		cmp = analysis.Normalize(cmp, opts.Strategy, opts.Baseline)
		if err := r.drawComparison(sink, cmp, opts); err != nil {
			return nil, err
		}
		comparisons = append(comparisons, cmp)
		res.Targets = append(res.Targets, target)
	}

	outputs, err := sink.close()
	if err != nil {
		return nil, err
	}
	res.Outputs = append(res.Outputs, outputs...)

	if opts.Summary && len(comparisons) > 0 {
		summary, err := r.writeSummary(comparisons)
		if err != nil {
			return nil, err
		}
		res.Outputs = append(res.Outputs, summary...)
	}

	r.logger.Info().
		Int("targets", len(res.Targets)).
		Int("pages", res.Pages()).
		Int("warnings", len(res.Warnings)).
		Msg("Comparison report complete")
	return res, nil
}

func (r *Runner) drawComparison(sink figureSink, cmp analysis.Comparison, opts CompareOptions) error {
	barOpts := charts.BarOptions{YLabel: cmp.Normalization.AxisLabel(r.cfg.UnitFor(cmp.Target))}

	if opts.Layout == LayoutSplit {
		for _, m := range []charts.Metric{charts.Interpolation, charts.Extrapolation} {
			p, err := charts.MetricBars(cmp, m, barOpts)
			if err != nil {
				return err
			}
			if err := sink.add(cmp.Target, strings.ToLower(m.String()), p); err != nil {
				return err
			}
		}
		return nil
	}

	p, err := charts.ComparisonBars(cmp, barOpts)
	if err != nil {
		return err
	}
	return sink.add(cmp.Target, "", p)
}

// writeSummary writes the plotted values as CSV and XLSX next to the charts
func (r *Runner) writeSummary(cmps []analysis.Comparison) ([]Output, error) {
	base := fileName(r.cfg.Prefix(), "summary")

	csvPath := r.outputPath(base + ".csv")
	if err := export.WriteSummaryCSV(csvPath, cmps); err != nil {
		return nil, fmt.Errorf("failed to write summary: %w", err)
	}
	xlsxPath := r.outputPath(base + ".xlsx")
	if err := export.WriteSummaryXLSX(xlsxPath, cmps); err != nil {
		return nil, fmt.Errorf("failed to write summary workbook: %w", err)
	}

	return []Output{
		{Path: csvPath, Kind: "csv"},
		{Path: xlsxPath, Kind: "xlsx"},
	}, nil
}
