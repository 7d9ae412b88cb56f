package main

import (
	"context"
	"fmt"
	"io"

	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/gilchrisn/rmse-report/pkg/config"
	"github.com/gilchrisn/rmse-report/pkg/report"
)

// flagKeys maps command line flags onto configuration keys
var flagKeys = map[string]string{
	"out":           "output.dir",
	"prefix":        "output.prefix",
	"log-level":     "logging.level",
	"format":        "report.format",
	"targets":       "report.targets",
	"layout":        "report.layout",
	"normalization": "report.normalization",
	"missing":       "report.missing",
	"baseline":      "report.baseline",
	"summary":       "report.summary",
	"epochs-csv":    "inputs.epochs_csv",
	"pareto":        "inputs.pareto_pattern",
	"images":        "inputs.image_pattern",
}

// bindFlags registers every known flag of the set with the configuration.
// Unchanged flags never shadow values from the config file.
func bindFlags(cfg *config.Config, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		err = cfg.Viper().BindPFlag(key, f)
	})
	return err
}

func newRootCmd() *cobra.Command {
	cfg := config.NewConfig()
	var configPath string
	var openOutput bool

	root := &cobra.Command{
		Use:           "rmsereport",
		Short:         "Render RMSE comparison, epoch and pareto charts from experiment tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				if err := cfg.LoadFromFile(configPath); err != nil {
					return fmt.Errorf("failed to load config %s: %w", configPath, err)
				}
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (yaml, json or toml)")
	flags.String("out", "rmse_graphs", "output directory")
	flags.String("prefix", "rmse", "output file name prefix")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("format", "pdf", "figure output: pdf (one batched file), png or pdf-each")
	flags.StringSlice("targets", nil, "targets to draw, in order")
	flags.String("layout", "combined", "compare: combined (one page per target) or split (one page per metric)")
	flags.String("normalization", "none", "compare: none, target-max, baseline or min-max")
	flags.String("missing", "zero", "compare: placeholder for absent rows, zero, nan or skip")
	flags.String("baseline", "LR", "compare: baseline model for baseline normalization")
	flags.Bool("summary", true, "compare: also write the plotted values as CSV and XLSX")
	flags.String("epochs-csv", "data/results_epochs_evaluation.csv", "fold-level epoch sweep table")
	flags.String("pareto", "data/hall_of_fame_{target}.csv", "hall-of-fame table pattern")
	flags.String("images", "rmse_graphs/rmse_{target}.png", "per-target image pattern for bundle")
	flags.BoolVar(&openOutput, "open", false, "open the first written document in the system viewer")
	if err := bindFlags(cfg, flags); err != nil {
		panic(err)
	}

	root.AddCommand(
		newReportCmd(cfg, &openOutput, "compare", "Draw interpolation/extrapolation RMSE bars per target", (*report.Runner).Compare),
		newReportCmd(cfg, &openOutput, "epochs", "Plot RMSE against training epochs per target", (*report.Runner).Epochs),
		newReportCmd(cfg, &openOutput, "epoch-r2", "Plot R² against epochs for all targets on one chart", (*report.Runner).EpochR2),
		newReportCmd(cfg, &openOutput, "pareto", "Plot loss and range-2 RMSE against equation complexity", (*report.Runner).Pareto),
		newReportCmd(cfg, &openOutput, "bundle", "Collect per-target PNG charts into one A4 PDF", (*report.Runner).Bundle),
		newAllCmd(cfg, &openOutput),
		newConfigCmd(cfg),
	)
	return root
}

func newReportCmd(cfg *config.Config, openOutput *bool, use, short string, run func(*report.Runner, context.Context) (*report.Result, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := report.NewRunner(cfg)
			res, err := run(runner, cmd.Context())
			if err != nil {
				return err
			}

			manifest := report.NewManifest()
			manifest.Add(res)
			return finish(cmd.OutOrStdout(), cfg, manifest, *openOutput)
		},
	}
}

func newAllCmd(cfg *config.Config, openOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run every report in one batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := report.NewRunner(cfg).All(cmd.Context())
			if err != nil {
				return err
			}
			return finish(cmd.OutOrStdout(), cfg, manifest, *openOutput)
		},
	}
}

func newConfigCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(cfg.Viper().AllSettings())
			if err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

// finish writes the manifest and prints one line per output. With openFirst
// set, the first document written is handed to the system viewer.
func finish(w io.Writer, cfg *config.Config, manifest *report.Manifest, openFirst bool) error {
	path, err := manifest.Save(cfg.OutputDir())
	if err != nil {
		return err
	}

	for _, res := range manifest.Reports {
		if res.Skipped {
			fmt.Fprintf(w, "%-9s skipped (%d warnings)\n", res.Report, len(res.Warnings))
			continue
		}
		for _, o := range res.Outputs {
			fmt.Fprintf(w, "%-9s %s (%d pages)\n", res.Report, o.Path, o.Pages)
		}
	}
	fmt.Fprintf(w, "manifest  %s (run %s)\n", path, manifest.RunID)

	if openFirst {
		if doc := firstDocument(manifest); doc != "" {
			return open.Start(doc)
		}
	}
	return nil
}

func firstDocument(manifest *report.Manifest) string {
	for _, res := range manifest.Reports {
		for _, o := range res.Outputs {
			if o.Kind == "pdf" || o.Kind == "png" {
				return o.Path
			}
		}
	}
	return ""
}
