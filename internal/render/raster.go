package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
)

// Palette is the full color range of the panels: black, white, red.
var Palette = []color.RGBA{
	{R: 0, G: 0, B: 0, A: 255},
	{R: 255, G: 255, B: 255, A: 255},
	{R: 255, G: 0, B: 0, A: 255},
}

// QuantizeToPalette maps every pixel to the nearest palette entry by
// Euclidean distance in RGB space. Anti-aliased edges collapse onto one of
// the three inks; the panels cannot blend.
func QuantizeToPalette(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.SetRGBA(x, y, nearestPaletteColor(src.At(x, y)))
		}
	}
	return dst
}

func nearestPaletteColor(c color.Color) color.RGBA {
	r, g, b, _ := c.RGBA()
	closest := Palette[0]
	best := colorDistance(r>>8, g>>8, b>>8, closest)
	for _, candidate := range Palette[1:] {
		if d := colorDistance(r>>8, g>>8, b>>8, candidate); d < best {
			best = d
			closest = candidate
		}
	}
	return closest
}

func colorDistance(r, g, b uint32, p color.RGBA) int64 {
	dr := int64(r) - int64(p.R)
	dg := int64(g) - int64(p.G)
	db := int64(b) - int64(p.B)
	return dr*dr + dg*dg + db*db
}

// EncodeJPEG encodes at maximum quality. The stdlib encoder only emits
// baseline (non-progressive) streams, which is exactly what the panel
// firmware decodes.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
