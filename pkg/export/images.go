package export

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"gonum.org/v1/plot/vg"
)

// ImageBundle is the outcome of ImagesToPDF
type ImageBundle struct {
	Pages   int
	Missing []string
}

// ImagesToPDF places each image on its own page of a PDF, scaled to fit the
// page with its aspect ratio kept. Images that do not exist are reported in
// Missing and skipped; undecodable images abort the bundle.
func ImagesToPDF(paths []string, out string, page Size) (ImageBundle, error) {
	var bundle ImageBundle
	doc := NewDocument(page)

	for _, path := range paths {
		img, err := loadImage(path)
		if errors.Is(err, os.ErrNotExist) {
			bundle.Missing = append(bundle.Missing, path)
			continue
		}
		if err != nil {
			return bundle, fmt.Errorf("failed to read %s: %w", path, err)
		}

		doc.AddCanvasPage(func(c vg.CanvasSizer) {
			w, h := c.Size()
			c.DrawImage(FitRect(img.Bounds(), w, h), img)
		})
	}

	bundle.Pages = doc.Pages()
	if bundle.Pages == 0 {
		return bundle, ErrEmptyDocument
	}
	return bundle, doc.Save(out)
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// FitRect centers an image of the given bounds in a w×h page, as large as
// possible without distortion.
func FitRect(bounds image.Rectangle, w, h vg.Length) vg.Rectangle {
	iw, ih := vg.Length(bounds.Dx()), vg.Length(bounds.Dy())
	if iw <= 0 || ih <= 0 {
		return vg.Rectangle{Max: vg.Point{X: w, Y: h}}
	}

	scale := w / iw
	if s := h / ih; s < scale {
		scale = s
	}
	dw, dh := iw*scale, ih*scale
	x0, y0 := (w-dw)/2, (h-dh)/2

	return vg.Rectangle{
		Min: vg.Point{X: x0, Y: y0},
		Max: vg.Point{X: x0 + dw, Y: y0 + dh},
	}
}
