package render

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/beevik/etree"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/inkfleet/inkfleet/internal/model"
)

// svgDoc wraps a parsed template document. Every slot lookup goes through
// the id attribute; a missing slot is silently skipped so a template may
// implement only a subset of its type's contract.
type svgDoc struct {
	doc *etree.Document
}

func parseSVG(raw string) (*svgDoc, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(raw); err != nil {
		return nil, fmt.Errorf("parse template markup: %w", err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("template markup has no root element")
	}
	return &svgDoc{doc: doc}, nil
}

func (s *svgDoc) String() (string, error) {
	return s.doc.WriteToString()
}

// ValidMarkup reports whether the markup parses as a usable template.
func ValidMarkup(markup string) bool {
	_, err := parseSVG(markup)
	return err == nil
}

func (s *svgDoc) byID(id string) *etree.Element {
	return s.doc.FindElement(fmt.Sprintf("//*[@id='%s']", id))
}

func (s *svgDoc) setText(id, value string) {
	if el := s.byID(id); el != nil {
		el.SetText(value)
	}
}

// setTextIfNotBlank leaves the template's own placeholder text in place
// when no value is given.
func (s *svgDoc) setTextIfNotBlank(id, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	s.setText(id, value)
}

func (s *svgDoc) setAttr(id, key, value string) {
	if el := s.byID(id); el != nil {
		el.CreateAttr(key, value)
	}
}

func (s *svgDoc) setTransform(id, transform string) {
	s.setAttr(id, "transform", transform)
}

var displayNoneRe = regexp.MustCompile(`(?i)display\s*:\s*none;?`)

// toggleDisplay hides or reveals a slot through its inline style, keeping
// whatever other style properties the template author set.
func (s *svgDoc) toggleDisplay(id string, visible bool) {
	el := s.byID(id)
	if el == nil {
		return
	}
	style := displayNoneRe.ReplaceAllString(el.SelectAttrValue("style", ""), "")
	if !visible {
		if style != "" && !strings.HasSuffix(style, ";") {
			style += ";"
		}
		style += "display:none"
	}
	el.CreateAttr("style", style)
}

func (s *svgDoc) setStyleProp(id, prop, value string) {
	el := s.byID(id)
	if el == nil {
		return
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(prop) + `\s*:\s*[^;]+;?`)
	style := re.ReplaceAllString(el.SelectAttrValue("style", ""), "")
	if style != "" && !strings.HasSuffix(style, ";") {
		style += ";"
	}
	el.CreateAttr("style", style+prop+":"+value)
}

// setSizeOnRoot stamps the requested raster dimensions onto the svg root so
// the rasterizer produces exactly the panel's resolution.
func (s *svgDoc) setSizeOnRoot(width, height int) {
	root := s.doc.Root()
	root.CreateAttr("width", fmt.Sprintf("%d", width))
	root.CreateAttr("height", fmt.Sprintf("%d", height))
}

// setQRCode replaces the slot's children with a path-rendered QR code for
// the payload, scaled to sizePx. An empty payload hides the slot instead.
func (s *svgDoc) setQRCode(id, payload string, sizePx int) {
	container := s.byID(id)
	if container == nil {
		return
	}
	for _, child := range container.ChildElements() {
		container.RemoveChild(child)
	}

	payload = strings.TrimSpace(payload)
	if payload == "" {
		s.toggleDisplay(id, false)
		return
	}

	qr, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		s.toggleDisplay(id, false)
		return
	}
	modules := qr.Bitmap()

	scale := float64(sizePx) / float64(len(modules))
	group := container.CreateElement("g")
	group.CreateAttr("transform", fmt.Sprintf("scale(%.6f)", scale))

	path := group.CreateElement("path")
	path.CreateAttr("d", qrPath(modules))
	path.CreateAttr("fill", "#000")
	path.CreateAttr("shape-rendering", "crispEdges")

	s.toggleDisplay(id, true)
}

// qrPath emits one unit square per dark module.
func qrPath(modules [][]bool) string {
	var d strings.Builder
	for y, row := range modules {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&d, "M%d %dh1v1h-1z", x, y)
			}
		}
	}
	return d.String()
}

// formatTimeLine renders a sub-item's time span in the product's display
// locale: "02.01.2006, Ganztags" for all-day entries, "02.01.2006,
// 10:00 - 11:00 Uhr" within one day, and explicit date pairs across days.
func formatTimeLine(item model.SubItem) string {
	if item.Start == nil {
		return ""
	}
	start := *item.Start
	dateStr := start.Format("02.01.2006")

	if item.AllDay {
		return dateStr + ", Ganztags"
	}
	if item.End != nil {
		end := *item.End
		if sameDay(start, end) {
			return fmt.Sprintf("%s, %s - %s Uhr",
				dateStr, start.Format("15:04"), end.Format("15:04"))
		}
		return fmt.Sprintf("%s %s - %s %s",
			dateStr, start.Format("15:04"), end.Format("02.01.2006"), end.Format("15:04"))
	}
	return fmt.Sprintf("%s, %s Uhr", dateStr, start.Format("15:04"))
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// field helpers

func fieldStr(fields model.FieldMap, key, def string) string {
	if fields == nil {
		return def
	}
	v, ok := fields[key]
	if !ok || v == nil {
		return def
	}
	return fmt.Sprintf("%v", v)
}

// fieldCoalesce returns the first non-blank value among the keys.
func fieldCoalesce(fields model.FieldMap, keys ...string) string {
	for _, key := range keys {
		if v := fieldStr(fields, key, ""); strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
