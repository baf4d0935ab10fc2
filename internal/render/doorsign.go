package render

import (
	"sort"
	"time"

	"github.com/inkfleet/inkfleet/internal/model"
)

// fillDoorSign maps up to three people onto the name slots in position
// order. Any busy person switches the sign into its do-not-disturb state.
func fillDoorSign(doc *svgDoc, fields model.FieldMap, subItems []model.SubItem, _ time.Time) {
	doc.setText("roomNumber", fieldStr(fields, "roomNumber", "-"))
	doc.setText("footerNote", fieldStr(fields, "footerNote", ""))

	people := make([]model.SubItem, len(subItems))
	copy(people, subItems)
	sort.SliceStable(people, func(i, j int) bool {
		return people[i].Position < people[j].Position
	})

	nameIDs := [3]string{"name-1", "name-2", "name-3"}
	for i, id := range nameIDs {
		if i < len(people) {
			doc.setText(id, people[i].Title)
			if people[i].Busy {
				doc.setStyleProp(id, "fill", "#ff0000")
			} else {
				doc.setStyleProp(id, "fill", "#000000")
			}
		} else {
			// Blank slot: white-on-white hides any placeholder glyphs.
			doc.setText(id, "")
			doc.setStyleProp(id, "fill", "#ffffff")
		}
	}

	anyBusy := false
	for _, p := range people {
		if p.Busy {
			anyBusy = true
			break
		}
	}
	doc.toggleDisplay("state-busy", anyBusy)
	doc.toggleDisplay("state-free", !anyBusy)
}
