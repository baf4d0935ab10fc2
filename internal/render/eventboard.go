package render

import (
	"fmt"
	"time"

	"github.com/inkfleet/inkfleet/internal/model"
)

var eventBoardSlots = []string{
	"event-1-text-1", "event-1-text-2",
	"event-2-text-1", "event-2-text-2",
	"event-3-text-1", "event-3-text-2",
	"event-4-text-1", "event-4-text-2",
	"events-line-1", "events-line-2", "events-line-3",
	"event-4-highlight-frame",
}

// fillEventBoard lays out up to four events over two text lines each. A
// highlighted event is pinned to the fourth slot with a red frame; without
// one, four regular events fit. No events at all switches the board into
// its idle state.
func fillEventBoard(doc *svgDoc, fields model.FieldMap, subItems []model.SubItem, _ time.Time) {
	if len(subItems) == 0 {
		for _, id := range eventBoardSlots {
			doc.toggleDisplay(id, false)
		}
		doc.toggleDisplay("no-events-message", true)
		doc.toggleDisplay("no-events-message-2", true)
		doc.toggleDisplay("idle-text-qr-1", true)
		doc.toggleDisplay("idle-text-qr-2", true)
		doc.setText("events-title", "Ereignisse")
		return
	}

	if title := fieldStr(fields, "title", ""); notBlank(title) {
		doc.setText("events-title", title)
		doc.toggleDisplay("events-title", true)
		doc.toggleDisplay("events-header-bg", true)
	} else {
		// Without a header the first slot shifts up and grows to use the
		// freed space.
		doc.setText("events-title", "")
		doc.toggleDisplay("events-title", false)
		doc.toggleDisplay("events-header-bg", false)
		doc.setTransform("event-1-text-1", "translate(0,-30)")
		doc.setTransform("event-1-text-2", "translate(0,-30)")
		doc.setStyleProp("event-1-text-1", "font-size", "22px")
		doc.setStyleProp("event-1-text-2", "font-size", "20px")
	}

	var highlight *model.SubItem
	for i := range subItems {
		if subItems[i].Highlighted {
			highlight = &subItems[i]
			break
		}
	}

	limit := 4
	if highlight != nil {
		limit = 3
	}
	var normal []model.SubItem
	for _, item := range subItems {
		if item.Highlighted {
			continue
		}
		normal = append(normal, item)
		if len(normal) == limit {
			break
		}
	}

	for i := 0; i < 4; i++ {
		baseID := fmt.Sprintf("event-%d", i+1)
		if i < len(normal) {
			setEventLines(doc, baseID, &normal[i])
		} else {
			setEventLines(doc, baseID, nil)
		}
	}

	doc.setStyleProp("event-4-highlight-frame", "stroke", "none")
	doc.toggleDisplay("events-line-3", true)

	if highlight != nil {
		setEventLines(doc, "event-4", highlight)
		doc.setStyleProp("event-4-highlight-frame", "stroke", "#ff0000")
		doc.toggleDisplay("events-line-3", false)
	}
}

func setEventLines(doc *svgDoc, baseID string, item *model.SubItem) {
	if item == nil {
		doc.setText(baseID+"-text-1", "")
		doc.setText(baseID+"-text-2", "")
		return
	}
	doc.setText(baseID+"-text-1", item.Title)
	doc.setText(baseID+"-text-2", formatTimeLine(*item))
	if notBlank(item.QRPayload) {
		doc.setQRCode(baseID+"-qr", item.QRPayload, 48)
	}
}
