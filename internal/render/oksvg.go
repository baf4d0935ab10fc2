package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// OksvgRasterizer rasterizes markup in-process. It covers the static
// shapes, paths and text-free templates the catalog ships; templates
// relying on advanced text layout need a different backend.
type OksvgRasterizer struct{}

func (OksvgRasterizer) Rasterize(markup string, width, height int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse svg for rasterization: %w", err)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", width, height)
	}

	icon.SetTarget(0, 0, float64(width), float64(height))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	// White ground; e-paper panels have no alpha.
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i-3], img.Pix[i-2], img.Pix[i-1], img.Pix[i] = 0xff, 0xff, 0xff, 0xff
	}

	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)
	return img, nil
}
