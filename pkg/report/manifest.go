package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Manifest records every output of one invocation
type Manifest struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Reports     []*Result `json:"reports"`
}

// NewManifest starts a manifest with a fresh run ID
func NewManifest() *Manifest {
	return &Manifest{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now(),
	}
}

// Add appends a report result
func (m *Manifest) Add(res *Result) {
	if res != nil {
		m.Reports = append(m.Reports, res)
	}
}

// Warnings counts the warnings across all reports
func (m *Manifest) Warnings() int {
	n := 0
	for _, r := range m.Reports {
		n += len(r.Warnings)
	}
	return n
}

// Save writes the manifest as indented JSON into dir
func (m *Manifest) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}
	path := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Step is one named report of a batch run
type Step struct {
	Name string
	Run  func(context.Context) (*Result, error)
}

// Steps returns every report in batch order. The bundle runs after the
// comparison so it picks up freshly written PNGs.
func (r *Runner) Steps() []Step {
	return []Step{
		{Name: "compare", Run: r.Compare},
		{Name: "epochs", Run: r.Epochs},
		{Name: "epoch-r2", Run: r.EpochR2},
		{Name: "pareto", Run: r.Pareto},
		{Name: "bundle", Run: r.Bundle},
	}
}

// All runs every report in turn. Missing inputs only skip their report;
// the first hard error stops the batch.
func (r *Runner) All(ctx context.Context) (*Manifest, error) {
	manifest := NewManifest()
	logger := r.logger.With().Str("run_id", manifest.RunID).Logger()
	logger.Info().Msg("Starting report batch")

	for _, step := range r.Steps() {
		start := time.Now()
		res, err := step.Run(ctx)
		if err != nil {
			return manifest, fmt.Errorf("%s report failed: %w", step.Name, err)
		}
		manifest.Add(res)

		logger.Info().
			Str("report", step.Name).
			Bool("skipped", res.Skipped).
			Int("pages", res.Pages()).
			Dur("duration", time.Since(start)).
			Msg("Report finished")
	}

	logger.Info().
		Int("reports", len(manifest.Reports)).
		Int("warnings", manifest.Warnings()).
		Msg("Report batch complete")
	return manifest, nil
}
