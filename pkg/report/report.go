package report

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gonum.org/v1/plot"

	"github.com/gilchrisn/rmse-report/pkg/analysis"
	"github.com/gilchrisn/rmse-report/pkg/config"
	"github.com/gilchrisn/rmse-report/pkg/export"
)

// Output formats
const (
	FormatPDF     = "pdf"      // every figure batched into one multi-page PDF
	FormatPNG     = "png"      // one PNG per figure
	FormatPDFEach = "pdf-each" // one single-page PDF per figure
)

// Layouts of the model comparison report
const (
	LayoutCombined = "combined" // interpolation and extrapolation on one page
	LayoutSplit    = "split"    // one page each
)

// Output describes one file written by a report
type Output struct {
	Path    string   `json:"path"`
	Kind    string   `json:"kind"`
	Pages   int      `json:"pages"`
	Targets []string `json:"targets,omitempty"`
}

// Result summarizes one report run
type Result struct {
	Report   string             `json:"report"`
	Targets  []string           `json:"targets"`
	Outputs  []Output           `json:"outputs"`
	Warnings []analysis.Warning `json:"warnings,omitempty"`
	Skipped  bool               `json:"skipped,omitempty"` // input missing, nothing drawn
}

// Pages returns the total page count across outputs
func (r *Result) Pages() int {
	total := 0
	for _, o := range r.Outputs {
		total += o.Pages
	}
	return total
}

// Runner executes reports against one configuration
type Runner struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// NewRunner creates a runner with a logger built from the configuration
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{cfg: cfg, logger: cfg.CreateLogger()}
}

// WithLogger replaces the runner's logger
func (r *Runner) WithLogger(logger zerolog.Logger) *Runner {
	r.logger = logger
	return r
}

// warn logs a warning and keeps it on the result
func (r *Runner) warn(res *Result, w analysis.Warning) {
	res.Warnings = append(res.Warnings, w)
	r.logger.Warn().
		Str("report", res.Report).
		Str("target", w.Target).
		Str("model", w.Model).
		Str("path", w.Path).
		Msg(w.Message)
}

func (r *Runner) figureSize() export.Size {
	return export.Inches(r.cfg.WidthIn(), r.cfg.HeightIn())
}

func (r *Runner) outputPath(name string) string {
	return filepath.Join(r.cfg.OutputDir(), name)
}

// checkContext stops a batch between figures once the context is done
func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// fileName turns a target name into a safe file name component
func fileName(parts ...string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_", ":", "_")
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			cleaned = append(cleaned, replacer.Replace(p))
		}
	}
	return strings.Join(cleaned, "_")
}

// figureSink receives the figures of a report and writes them out
type figureSink interface {
	add(target, suffix string, p *plot.Plot) error
	close() ([]Output, error)
}

// newSink returns a batched document sink for FormatPDF, or a per-figure
// file sink otherwise.
func (r *Runner) newSink(format, batchName, figurePrefix string) (figureSink, error) {
	switch format {
	case FormatPDF, "":
		return &documentSink{
			doc:  export.NewDocument(r.figureSize()),
			path: r.outputPath(batchName + ".pdf"),
		}, nil
	case FormatPNG, FormatPDFEach:
		ext := ".png"
		if format == FormatPDFEach {
			ext = ".pdf"
		}
		return &fileSink{
			dir:    r.cfg.OutputDir(),
			prefix: figurePrefix,
			ext:    ext,
			size:   r.figureSize(),
		}, nil
	}
	return nil, fmt.Errorf("unknown format %q (want pdf, png or pdf-each)", format)
}

type documentSink struct {
	doc     *export.Document
	path    string
	targets []string
}

func (s *documentSink) add(target, _ string, p *plot.Plot) error {
	s.doc.AddPage(p)
	if n := len(s.targets); n == 0 || s.targets[n-1] != target {
		s.targets = append(s.targets, target)
	}
	return nil
}

func (s *documentSink) close() ([]Output, error) {
	if s.doc.Pages() == 0 {
		return nil, nil
	}
	if err := s.doc.Save(s.path); err != nil {
		return nil, err
	}
	return []Output{{Path: s.path, Kind: "pdf", Pages: s.doc.Pages(), Targets: s.targets}}, nil
}

type fileSink struct {
	dir     string
	prefix  string
	ext     string
	size    export.Size
	outputs []Output
}

func (s *fileSink) add(target, suffix string, p *plot.Plot) error {
	path := filepath.Join(s.dir, fileName(s.prefix, target, suffix)+s.ext)
	if err := export.SaveFigure(p, path, s.size); err != nil {
		return err
	}
	s.outputs = append(s.outputs, Output{
		Path:    path,
		Kind:    strings.TrimPrefix(s.ext, "."),
		Pages:   1,
		Targets: []string{target},
	})
	return nil
}

func (s *fileSink) close() ([]Output, error) {
	return s.outputs, nil
}
