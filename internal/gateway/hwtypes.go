package gateway

// TagType describes the panel hardware behind an access point hwType id.
type TagType struct {
	Name   string
	Model  string
	Width  int
	Height int
}

// tagTypes covers the OpenEPaperLink hardware ids of the panels deployed in
// the fleet. Tags with an unlisted id still get their telemetry synced, just
// without dimensions.
var tagTypes = map[int]TagType{
	0x00: {Name: "OpenEPaperLink", Model: "M2 1.54\"", Width: 152, Height: 152},
	0x01: {Name: "OpenEPaperLink", Model: "M2 2.9\"", Width: 296, Height: 128},
	0x02: {Name: "OpenEPaperLink", Model: "M2 4.2\"", Width: 400, Height: 300},
	0x11: {Name: "OpenEPaperLink", Model: "M2 2.9\" (UC)", Width: 296, Height: 128},
	0x30: {Name: "OpenEPaperLink", Model: "M3 7.5\"", Width: 800, Height: 480},
}

// LookupTagType resolves hardware metadata for an access point hwType id.
func LookupTagType(hwType int) (TagType, bool) {
	t, ok := tagTypes[hwType]
	return t, ok
}
