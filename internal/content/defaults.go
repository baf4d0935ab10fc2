package content

import "github.com/inkfleet/inkfleet/internal/model"

// DefaultContent builds the neutral content a display shows when nothing
// real is assigned: free room, no events, no notices.
func DefaultContent(typeKey, mac string) *model.DisplayContent {
	c := &model.DisplayContent{
		TypeKey:    typeKey,
		DisplayMac: mac,
		Fields:     model.FieldMap{},
	}

	switch typeKey {
	case model.TemplateDoorSign:
		c.Fields["roomNumber"] = "-"
		c.Fields["footerNote"] = "Raumzuweisung verfügbar."
		c.SubItems = []model.SubItem{{Title: "Aktuell frei"}}
	case model.TemplateEventBoard:
		c.Fields["title"] = "Ereignisse"
		c.Fields["description"] = "Derzeit gibt es keine anstehenden Ereignisse"
		c.SubItems = []model.SubItem{{Title: "Keine Ereignisse"}}
	case model.TemplateNoticeBoard:
		c.Fields["title"] = "Keine Hinweise"
		c.Fields["body"] = "Es liegen derzeit keine Meldungen vor."
	case model.TemplateRoomBooking:
		c.Fields["roomNumber"] = "–"
		c.Fields["roomType"] = "Keine Buchungen"
		c.SubItems = []model.SubItem{{Title: "Keine Termine"}}
	default:
		c.Fields["message"] = "Kein Inhalt verfügbar."
	}
	return c
}
