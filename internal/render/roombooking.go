package render

import (
	"fmt"
	"sort"
	"time"

	"github.com/inkfleet/inkfleet/internal/model"
)

// fillRoomBooking highlights the booking running right now (or the next
// upcoming one) and lists up to three bookings after it.
func fillRoomBooking(doc *svgDoc, fields model.FieldMap, subItems []model.SubItem, now time.Time) {
	doc.setTextIfNotBlank("room-number", fieldStr(fields, "roomNumber", ""))
	doc.setTextIfNotBlank("room-name", fieldStr(fields, "roomType", ""))

	var bookings []model.SubItem
	for _, item := range subItems {
		if item.Start != nil {
			bookings = append(bookings, item)
		}
	}
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].Start.Before(*bookings[j].Start)
	})

	if len(bookings) == 0 {
		doc.toggleDisplay("state-filled", false)
		doc.toggleDisplay("state-idle", true)
		return
	}
	doc.toggleDisplay("state-filled", true)
	doc.toggleDisplay("state-idle", false)

	var active *model.SubItem
	for i := range bookings {
		b := &bookings[i]
		if b.End != nil && !now.Before(*b.Start) && now.Before(*b.End) {
			active = b
			break
		}
	}

	var upcoming []model.SubItem
	if active != nil {
		doc.setAttr("current-label", "x", "18")
		doc.setText("current-label", "Aktiver Termin")
		doc.setText("current-time", formatTimeLine(*active))
		doc.setText("current-title", active.Title)
		for _, b := range bookings {
			if b.Start.After(*active.Start) {
				upcoming = append(upcoming, b)
			}
		}
	} else {
		next := bookings[0]
		doc.setAttr("current-label", "x", "18")
		doc.setText("current-label", "Anstehender Termin")
		doc.setText("current-time", formatTimeLine(next))
		doc.setText("current-title", next.Title)
		upcoming = bookings[1:]
	}

	for i := 0; i < 3; i++ {
		timeID := fmt.Sprintf("next-%da", i+1)
		titleID := fmt.Sprintf("next-%db", i+1)
		if i < len(upcoming) {
			doc.setText(timeID, formatTimeLine(upcoming[i]))
			doc.setText(titleID, upcoming[i].Title)
		} else {
			doc.setText(timeID, "")
			doc.setText(titleID, "")
		}
	}
}
