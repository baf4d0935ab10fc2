// Package render fills vector templates with display content and produces
// the 3-color raster image the panels consume.
package render

import (
	"image"
	"time"

	"github.com/inkfleet/inkfleet/internal/model"
)

// VectorRasterizer turns filled markup into a pixel image at the given
// size. The conversion itself lives outside the core; implementations
// typically shell out to a renderer binary or call a rasterizer service.
type VectorRasterizer interface {
	Rasterize(markup string, width, height int) (image.Image, error)
}

// fillFunc maps fields and ordered sub-items onto one template type's
// fixed named slots.
type fillFunc func(doc *svgDoc, fields model.FieldMap, subItems []model.SubItem, now time.Time)

var strategies = map[string]fillFunc{
	model.TemplateDoorSign:    fillDoorSign,
	model.TemplateEventBoard:  fillEventBoard,
	model.TemplateNoticeBoard: fillNoticeBoard,
	model.TemplateRoomBooking: fillRoomBooking,
}

// fillDefault is the fallback for unknown template types: every field is
// written verbatim into the slot of the same name.
func fillDefault(doc *svgDoc, fields model.FieldMap, _ []model.SubItem, _ time.Time) {
	for key := range fields {
		doc.setText(key, fieldStr(fields, key, ""))
	}
}

// Renderer is safe for concurrent use; each call parses its own document.
type Renderer struct {
	raster VectorRasterizer
	now    func() time.Time
}

func New(raster VectorRasterizer) *Renderer {
	return &Renderer{raster: raster, now: time.Now}
}

// Fill parses the template markup, applies the type's slot-filling
// strategy and stamps the raster dimensions on the root. Returns the
// filled markup.
func (r *Renderer) Fill(rawSVG, typeKey string, fields model.FieldMap, subItems []model.SubItem, width, height int) (string, error) {
	doc, err := parseSVG(rawSVG)
	if err != nil {
		return "", err
	}

	strategy, ok := strategies[typeKey]
	if !ok {
		strategy = fillDefault
	}
	if fields == nil {
		fields = model.FieldMap{}
	}
	strategy(doc, fields, subItems, r.now())

	doc.setSizeOnRoot(width, height)
	return doc.String()
}

// Render runs the full pipeline: fill, rasterize, quantize to the panel
// palette, encode as baseline JPEG.
func (r *Renderer) Render(tpl *model.TemplateDefinition, fields model.FieldMap, subItems []model.SubItem) ([]byte, error) {
	filled, err := r.Fill(tpl.SVGContent, tpl.TypeKey, fields, subItems, tpl.Width, tpl.Height)
	if err != nil {
		return nil, err
	}
	img, err := r.raster.Rasterize(filled, tpl.Width, tpl.Height)
	if err != nil {
		return nil, err
	}
	return EncodeJPEG(QuantizeToPalette(img))
}
