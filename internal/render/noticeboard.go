package render

import (
	"strings"
	"time"

	"github.com/inkfleet/inkfleet/internal/model"
)

// fillNoticeBoard shows a header plus two free-text lines. A combined body
// field is split on the first line break; otherwise the two explicit line
// fields are used as-is. An empty result switches to the idle state.
func fillNoticeBoard(doc *svgDoc, fields model.FieldMap, _ []model.SubItem, _ time.Time) {
	header := fieldCoalesce(fields, "headerTitle", "title")
	if !notBlank(header) {
		header = "Hinweis"
	}
	doc.setText("headerTitle", header)

	var line1, line2 string
	if free := fieldCoalesce(fields, "line1", "body", "description"); free != "" {
		parts := strings.SplitN(free, "\n", 2)
		line1 = strings.TrimSpace(parts[0])
		if len(parts) > 1 {
			line2 = strings.TrimSpace(parts[1])
		}
	} else {
		line1 = fieldStr(fields, "line1", "")
		line2 = fieldStr(fields, "line2", "")
	}

	doc.setText("line1", line1)
	doc.setText("line2", line2)

	filled := notBlank(line1) || notBlank(line2)
	doc.toggleDisplay("state-filled", filled)
	doc.toggleDisplay("state-idle", !filled)

	if color := fieldStr(fields, "headerColor", ""); notBlank(color) {
		doc.setStyleProp("headerBar", "fill", color)
	}
}
