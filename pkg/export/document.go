package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"
)

// ErrEmptyDocument is returned when saving a document without pages
var ErrEmptyDocument = errors.New("document has no pages")

// Size is a page or figure size
type Size struct {
	Width  vg.Length
	Height vg.Length
}

// Inches builds a Size from inch dimensions
func Inches(w, h float64) Size {
	return Size{Width: vg.Length(w) * vg.Inch, Height: vg.Length(h) * vg.Inch}
}

// A4 is the portrait A4 page used for image bundles
var A4 = Size{Width: 210 * vg.Millimeter, Height: 297 * vg.Millimeter}

// SaveFigure writes one plot to a file. The format follows the extension
// (png, pdf, svg, eps, jpg, tif).
func SaveFigure(p *plot.Plot, path string, size Size) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := p.Save(size.Width, size.Height, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// Document accumulates plots as pages of one PDF file
type Document struct {
	size   Size
	canvas *vgpdf.Canvas
	pages  int
}

// NewDocument creates an empty multi-page PDF with a fixed page size
func NewDocument(size Size) *Document {
	return &Document{size: size}
}

// AddPage draws a plot onto a new page
func (d *Document) AddPage(p *plot.Plot) {
	d.nextPage()
	p.Draw(draw.New(d.canvas))
}

// AddCanvasPage starts a new page and hands its canvas to fn
func (d *Document) AddCanvasPage(fn func(c vg.CanvasSizer)) {
	d.nextPage()
	fn(d.canvas)
}

func (d *Document) nextPage() {
	if d.canvas == nil {
		d.canvas = vgpdf.New(d.size.Width, d.size.Height)
	} else {
		d.canvas.NextPage()
	}
	d.pages++
}

// Pages returns the number of pages added so far
func (d *Document) Pages() int {
	return d.pages
}

// Save writes the document to path
func (d *Document) Save(path string) error {
	if d.pages == 0 {
		return ErrEmptyDocument
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".pdf" {
		return fmt.Errorf("multi-page output must be .pdf, got %q", ext)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := d.canvas.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
