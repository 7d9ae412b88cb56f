package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/gilchrisn/rmse-report/pkg/analysis"
)

func samplePlot(t *testing.T, title string) *plot.Plot {
	t.Helper()
	p := plot.New()
	p.Title.Text = title
	line, err := plotter.NewLine(plotter.XYs{{X: 1, Y: 2}, {X: 2, Y: 3}, {X: 3, Y: 1}})
	if err != nil {
		t.Fatalf("NewLine failed: %v", err)
	}
	p.Add(line)
	return p
}

func hasPrefix(t *testing.T, path string, prefix []byte) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	if !bytes.HasPrefix(data, prefix) {
		t.Errorf("Expected %s to start with %q", path, prefix)
	}
}

func TestSaveFigure(t *testing.T) {
	dir := t.TempDir()

	t.Run("PNG", func(t *testing.T) {
		path := filepath.Join(dir, "nested", "fig.png")
		if err := SaveFigure(samplePlot(t, "png"), path, Inches(4, 3)); err != nil {
			t.Fatalf("SaveFigure failed: %v", err)
		}
		hasPrefix(t, path, []byte("\x89PNG"))
	})

	t.Run("PDF", func(t *testing.T) {
		path := filepath.Join(dir, "fig.pdf")
		if err := SaveFigure(samplePlot(t, "pdf"), path, Inches(4, 3)); err != nil {
			t.Fatalf("SaveFigure failed: %v", err)
		}
		hasPrefix(t, path, []byte("%PDF"))
	})
}

func TestDocument(t *testing.T) {
	doc := NewDocument(Inches(6, 4))
	for _, title := range []string{"a", "b", "c"} {
		doc.AddPage(samplePlot(t, title))
	}
	if doc.Pages() != 3 {
		t.Errorf("Expected 3 pages, got %d", doc.Pages())
	}

	path := filepath.Join(t.TempDir(), "out", "all.pdf")
	if err := doc.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	hasPrefix(t, path, []byte("%PDF"))
}

func TestDocumentErrors(t *testing.T) {
	dir := t.TempDir()

	if err := NewDocument(A4).Save(filepath.Join(dir, "empty.pdf")); !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("Expected ErrEmptyDocument, got %v", err)
	}

	doc := NewDocument(A4)
	doc.AddPage(samplePlot(t, "x"))
	if err := doc.Save(filepath.Join(dir, "all.png")); err == nil {
		t.Error("Expected an error for a non-pdf multi-page output")
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.Black)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
}

func TestImagesToPDF(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "rmse_Tm.png")
	b := filepath.Join(dir, "rmse_Tb.png")
	writePNG(t, a, 40, 30)
	writePNG(t, b, 30, 40)
	missing := filepath.Join(dir, "rmse_RI.png")

	out := filepath.Join(dir, "bundle.pdf")
	bundle, err := ImagesToPDF([]string{a, missing, b}, out, A4)
	if err != nil {
		t.Fatalf("ImagesToPDF failed: %v", err)
	}
	if bundle.Pages != 2 {
		t.Errorf("Expected 2 pages, got %d", bundle.Pages)
	}
	if len(bundle.Missing) != 1 || bundle.Missing[0] != missing {
		t.Errorf("Expected %s to be reported missing, got %v", missing, bundle.Missing)
	}
	hasPrefix(t, out, []byte("%PDF"))
}

func TestImagesToPDFAllMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := ImagesToPDF([]string{filepath.Join(dir, "nope.png")}, filepath.Join(dir, "out.pdf"), A4)
	if !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("Expected ErrEmptyDocument, got %v", err)
	}
}

func TestFitRect(t *testing.T) {
	// A 200x100 image on a 100x100 page is width-bound: 100x50, centered.
	r := FitRect(image.Rect(0, 0, 200, 100), 100, 100)
	if r.Min.X != 0 || r.Max.X != 100 {
		t.Errorf("Unexpected x extent [%v, %v]", r.Min.X, r.Max.X)
	}
	if r.Min.Y != vg.Length(25) || r.Max.Y != vg.Length(75) {
		t.Errorf("Unexpected y extent [%v, %v]", r.Min.Y, r.Max.Y)
	}
}

func summaryComparisons() []analysis.Comparison {
	return []analysis.Comparison{{
		Target:        "Tm",
		Normalization: analysis.StrategyNone,
		Bars: []analysis.Bar{
			{Model: "LR", Interp: 40, InterpErr: 4, Extrap: 80, ExtrapErr: 5, HasError: true},
			{Model: "NN", Interp: math.NaN(), Extrap: math.NaN(), Placeholder: true},
		},
	}}
}

func TestWriteSummaryCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")
	if err := WriteSummaryCSV(path, summaryComparisons()); err != nil {
		t.Fatalf("WriteSummaryCSV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open summary: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read summary: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d", len(records))
	}
	if strings.Join(records[1][:4], ",") != "Tm,LR,none,40" {
		t.Errorf("Unexpected first row %v", records[1])
	}
	if records[2][3] != "" || records[2][8] != "true" {
		t.Errorf("Expected NaN placeholder written as empty cell, got %v", records[2])
	}
}

func TestWriteSummaryXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.xlsx")
	if err := WriteSummaryXLSX(path, summaryComparisons()); err != nil {
		t.Fatalf("WriteSummaryXLSX failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	model, err := f.GetCellValue("Comparison", "B2")
	if err != nil {
		t.Fatalf("GetCellValue failed: %v", err)
	}
	if model != "LR" {
		t.Errorf("Expected LR in B2, got %q", model)
	}
	if sheets := f.GetSheetList(); len(sheets) != 1 {
		t.Errorf("Expected only the Comparison sheet, got %v", sheets)
	}
}
