package config

import (
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config manages report configuration using Viper
type Config struct {
	v *viper.Viper
}

// DefaultTargets is the order targets are drawn in when none are configured
var DefaultTargets = []string{
	"dGs", "Ebd", "log10(lifetime)", "logD", "logP", "logS",
	"pKaA", "pKaB", "RI", "Tb", "Tm",
}

// DefaultUnits maps each target to the unit shown on the RMSE axis
var DefaultUnits = map[string]string{
	"dGs":             "kcal/mol",
	"Ebd":             "MV/m",
	"log10(lifetime)": "log(year)",
	"logD":            "logD",
	"logP":            "logP",
	"logS":            "logS",
	"pKaA":            "pKa",
	"pKaB":            "pKa",
	"RI":              "RI",
	"Tb":              "K",
	"Tm":              "K",
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix("RMSEREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Input tables
	v.SetDefault("inputs.models", map[string]string{
		"LR": "data/rmse_statistics_linear.csv",
		"NN": "data/rmse_statistics_nn.csv",
		"SR": "data/rmse_sr.csv",
	})
	v.SetDefault("inputs.model_order", []string{"LR", "NN", "SR"})
	v.SetDefault("inputs.no_variance_models", []string{"SR"})
	v.SetDefault("inputs.epochs_csv", "data/results_epochs_evaluation.csv")
	v.SetDefault("inputs.pareto_pattern", "data/hall_of_fame_{target}.csv")
	v.SetDefault("inputs.image_pattern", "rmse_graphs/rmse_{target}.png")

	// Report parameters
	v.SetDefault("report.targets", DefaultTargets)
	v.SetDefault("report.units", DefaultUnits)
	v.SetDefault("report.baseline", "LR")
	v.SetDefault("report.normalization", "none")
	v.SetDefault("report.missing", "zero")
	v.SetDefault("report.layout", "combined")
	v.SetDefault("report.format", "pdf")
	v.SetDefault("report.summary", true)

	// Output parameters
	v.SetDefault("output.dir", "rmse_graphs")
	v.SetDefault("output.prefix", "rmse")
	v.SetDefault("output.width_in", 12.0)
	v.SetDefault("output.height_in", 8.0)

	// Logging parameters
	v.SetDefault("logging.level", "info")

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// Viper exposes the underlying store so CLI flags can be bound to keys
func (c *Config) Viper() *viper.Viper { return c.v }

// Getters for input parameters
func (c *Config) ModelFiles() map[string]string { return c.v.GetStringMapString("inputs.models") }
func (c *Config) NoVarianceModels() []string { return c.v.GetStringSlice("inputs.no_variance_models") }
func (c *Config) EpochsCSV() string { return c.v.GetString("inputs.epochs_csv") }
func (c *Config) ParetoPattern() string { return c.v.GetString("inputs.pareto_pattern") }
func (c *Config) ImagePattern() string { return c.v.GetString("inputs.image_pattern") }

// ModelOrder returns the configured model order, falling back to the sorted
// configured model names when no order is given. Viper lower-cases map keys
// read from files, so names from the order list win over map keys.
func (c *Config) ModelOrder() []string {
	order := c.v.GetStringSlice("inputs.model_order")
	if len(order) > 0 {
		return order
	}
	files := c.ModelFiles()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ModelFile returns the table path of a model, matching names case-insensitively
func (c *Config) ModelFile(model string) (string, bool) {
	files := c.ModelFiles()
	if path, ok := files[model]; ok {
		return path, true
	}
	path, ok := files[strings.ToLower(model)]
	return path, ok
}

// Getters for report parameters
func (c *Config) Targets() []string { return c.v.GetStringSlice("report.targets") }
func (c *Config) Baseline() string { return c.v.GetString("report.baseline") }
func (c *Config) Normalization() string { return c.v.GetString("report.normalization") }
func (c *Config) Missing() string { return c.v.GetString("report.missing") }
func (c *Config) Layout() string { return c.v.GetString("report.layout") }
func (c *Config) Format() string { return c.v.GetString("report.format") }
func (c *Config) Summary() bool { return c.v.GetBool("report.summary") }

// Units returns the target unit map. Keys are looked up case-insensitively
// by UnitFor since viper folds map keys to lower case.
func (c *Config) Units() map[string]string { return c.v.GetStringMapString("report.units") }

// UnitFor returns the axis unit of a target, or "" when unknown
func (c *Config) UnitFor(target string) string {
	units := c.Units()
	if u, ok := units[target]; ok {
		return u
	}
	return units[strings.ToLower(target)]
}

func (c *Config) OutputDir() string { return c.v.GetString("output.dir") }
func (c *Config) Prefix() string { return c.v.GetString("output.prefix") }
func (c *Config) WidthIn() float64 { return c.v.GetFloat64("output.width_in") }
func (c *Config) HeightIn() float64 { return c.v.GetFloat64("output.height_in") }
func (c *Config) LogLevel() string { return c.v.GetString("logging.level") }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// CreateLogger creates a zerolog logger based on config
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "rmsereport").Logger()
}
