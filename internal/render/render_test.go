package render

import (
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkfleet/inkfleet/internal/model"
)

const doorSignSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100">
  <text id="roomNumber">?</text>
  <text id="name-1">placeholder</text>
  <text id="name-2">placeholder</text>
  <text id="name-3">placeholder</text>
  <text id="footerNote"></text>
  <g id="state-busy" style="display:none"><rect/></g>
  <g id="state-free"><rect/></g>
</svg>`

func mustParse(t *testing.T, raw string) *svgDoc {
	t.Helper()
	doc, err := parseSVG(raw)
	require.NoError(t, err)
	return doc
}

func textOf(t *testing.T, doc *svgDoc, id string) string {
	t.Helper()
	el := doc.byID(id)
	require.NotNil(t, el, "slot %s", id)
	return el.Text()
}

func styleOf(t *testing.T, doc *svgDoc, id string) string {
	t.Helper()
	el := doc.byID(id)
	require.NotNil(t, el, "slot %s", id)
	return el.SelectAttrValue("style", "")
}

func ts(hour, min int) *time.Time {
	t := time.Date(2025, 1, 6, hour, min, 0, 0, time.UTC)
	return &t
}

func TestFillDoorSign_BusyPerson(t *testing.T) {
	doc := mustParse(t, doorSignSVG)

	fillDoorSign(doc, model.FieldMap{"roomNumber": "2.04"}, []model.SubItem{
		{Position: 1, Title: "B. Weber", Busy: true},
		{Position: 0, Title: "A. Muster"},
	}, time.Now())

	assert.Equal(t, "2.04", textOf(t, doc, "roomNumber"))
	assert.Equal(t, "A. Muster", textOf(t, doc, "name-1"), "position order decides slots")
	assert.Equal(t, "B. Weber", textOf(t, doc, "name-2"))
	assert.Contains(t, styleOf(t, doc, "name-2"), "fill:#ff0000")
	assert.Equal(t, "", textOf(t, doc, "name-3"))
	assert.Contains(t, styleOf(t, doc, "name-3"), "fill:#ffffff")

	assert.NotContains(t, styleOf(t, doc, "state-busy"), "display:none")
	assert.Contains(t, styleOf(t, doc, "state-free"), "display:none")
}

func TestFillDoorSign_NobodyBusy(t *testing.T) {
	doc := mustParse(t, doorSignSVG)

	fillDoorSign(doc, nil, []model.SubItem{{Title: "A. Muster"}}, time.Now())

	assert.Contains(t, styleOf(t, doc, "state-busy"), "display:none")
	assert.NotContains(t, styleOf(t, doc, "state-free"), "display:none")
	assert.Equal(t, "-", textOf(t, doc, "roomNumber"))
}

const eventBoardSVG = `<svg xmlns="http://www.w3.org/2000/svg">
  <text id="events-title"></text>
  <rect id="events-header-bg"/>
  <text id="event-1-text-1"></text><text id="event-1-text-2"></text>
  <text id="event-2-text-1"></text><text id="event-2-text-2"></text>
  <text id="event-3-text-1"></text><text id="event-3-text-2"></text>
  <text id="event-4-text-1"></text><text id="event-4-text-2"></text>
  <line id="events-line-1"/><line id="events-line-2"/><line id="events-line-3"/>
  <rect id="event-4-highlight-frame"/>
  <text id="no-events-message" style="display:none"></text>
  <text id="no-events-message-2" style="display:none"></text>
  <text id="idle-text-qr-1" style="display:none"></text>
  <text id="idle-text-qr-2" style="display:none"></text>
</svg>`

func TestFillEventBoard_EmptyState(t *testing.T) {
	doc := mustParse(t, eventBoardSVG)

	fillEventBoard(doc, nil, nil, time.Now())

	assert.Contains(t, styleOf(t, doc, "event-1-text-1"), "display:none")
	assert.Contains(t, styleOf(t, doc, "event-4-highlight-frame"), "display:none")
	assert.NotContains(t, styleOf(t, doc, "no-events-message"), "display:none")
	assert.NotContains(t, styleOf(t, doc, "idle-text-qr-1"), "display:none")
	assert.Equal(t, "Ereignisse", textOf(t, doc, "events-title"))
}

func TestFillEventBoard_HighlightPinnedToFourthSlot(t *testing.T) {
	doc := mustParse(t, eventBoardSVG)

	items := []model.SubItem{
		{Title: "Vortrag", Start: ts(9, 0), End: ts(10, 0)},
		{Title: "Feier", Start: ts(18, 0), End: ts(20, 0), Highlighted: true},
		{Title: "Seminar", Start: ts(11, 0), End: ts(12, 0)},
	}
	fillEventBoard(doc, model.FieldMap{"title": "Heute"}, items, time.Now())

	assert.Equal(t, "Heute", textOf(t, doc, "events-title"))
	assert.Equal(t, "Vortrag", textOf(t, doc, "event-1-text-1"))
	assert.Equal(t, "Seminar", textOf(t, doc, "event-2-text-1"))
	assert.Equal(t, "", textOf(t, doc, "event-3-text-1"))
	assert.Equal(t, "Feier", textOf(t, doc, "event-4-text-1"))
	assert.Contains(t, styleOf(t, doc, "event-4-highlight-frame"), "stroke:#ff0000")
	assert.Contains(t, styleOf(t, doc, "events-line-3"), "display:none")
}

func TestFillEventBoard_NoTitleShiftsFirstSlot(t *testing.T) {
	doc := mustParse(t, eventBoardSVG)

	fillEventBoard(doc, nil, []model.SubItem{{Title: "Vortrag"}}, time.Now())

	el := doc.byID("event-1-text-1")
	require.NotNil(t, el)
	assert.Equal(t, "translate(0,-30)", el.SelectAttrValue("transform", ""))
	assert.Contains(t, styleOf(t, doc, "event-1-text-1"), "font-size:22px")
	assert.Contains(t, styleOf(t, doc, "events-header-bg"), "display:none")
}

const noticeBoardSVG = `<svg xmlns="http://www.w3.org/2000/svg">
  <text id="headerTitle"></text>
  <text id="line1"></text>
  <text id="line2"></text>
  <g id="state-filled" style="display:none"/>
  <g id="state-idle"/>
  <rect id="headerBar" style="fill:#000000"/>
</svg>`

func TestFillNoticeBoard_SplitsBodyOnFirstLineBreak(t *testing.T) {
	doc := mustParse(t, noticeBoardSVG)

	fillNoticeBoard(doc, model.FieldMap{
		"title":       "Wartung",
		"body":        "Aufzug außer Betrieb\nTechniker ist unterwegs",
		"headerColor": "#ff0000",
	}, nil, time.Now())

	assert.Equal(t, "Wartung", textOf(t, doc, "headerTitle"))
	assert.Equal(t, "Aufzug außer Betrieb", textOf(t, doc, "line1"))
	assert.Equal(t, "Techniker ist unterwegs", textOf(t, doc, "line2"))
	assert.NotContains(t, styleOf(t, doc, "state-filled"), "display:none")
	assert.Contains(t, styleOf(t, doc, "state-idle"), "display:none")
	assert.Contains(t, styleOf(t, doc, "headerBar"), "fill:#ff0000")
}

func TestFillNoticeBoard_EmptyGoesIdle(t *testing.T) {
	doc := mustParse(t, noticeBoardSVG)

	fillNoticeBoard(doc, model.FieldMap{}, nil, time.Now())

	assert.Equal(t, "Hinweis", textOf(t, doc, "headerTitle"))
	assert.Contains(t, styleOf(t, doc, "state-filled"), "display:none")
	assert.NotContains(t, styleOf(t, doc, "state-idle"), "display:none")
}

const roomBookingSVG = `<svg xmlns="http://www.w3.org/2000/svg">
  <text id="room-number">1.01</text>
  <text id="room-name">Besprechung</text>
  <text id="current-label"></text>
  <text id="current-time"></text>
  <text id="current-title"></text>
  <text id="next-1a"></text><text id="next-1b"></text>
  <text id="next-2a"></text><text id="next-2b"></text>
  <text id="next-3a"></text><text id="next-3b"></text>
  <g id="state-filled" style="display:none"/>
  <g id="state-idle"/>
</svg>`

func TestFillRoomBooking_ActiveBooking(t *testing.T) {
	doc := mustParse(t, roomBookingSVG)
	now := time.Date(2025, 1, 6, 10, 30, 0, 0, time.UTC)

	fillRoomBooking(doc, nil, []model.SubItem{
		{Title: "Planung", Start: ts(14, 0), End: ts(15, 0)},
		{Title: "Standup", Start: ts(10, 0), End: ts(11, 0)},
	}, now)

	assert.Equal(t, "Aktiver Termin", textOf(t, doc, "current-label"))
	assert.Equal(t, "Standup", textOf(t, doc, "current-title"))
	assert.Equal(t, "06.01.2025, 10:00 - 11:00 Uhr", textOf(t, doc, "current-time"))
	assert.Equal(t, "Planung", textOf(t, doc, "next-1b"))
	assert.Equal(t, "", textOf(t, doc, "next-2b"))
}

func TestFillRoomBooking_UpcomingOnly(t *testing.T) {
	doc := mustParse(t, roomBookingSVG)
	now := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)

	fillRoomBooking(doc, nil, []model.SubItem{
		{Title: "Standup", Start: ts(10, 0), End: ts(11, 0)},
		{Title: "Planung", Start: ts(14, 0), End: ts(15, 0)},
	}, now)

	assert.Equal(t, "Anstehender Termin", textOf(t, doc, "current-label"))
	assert.Equal(t, "Standup", textOf(t, doc, "current-title"))
	assert.Equal(t, "Planung", textOf(t, doc, "next-1b"))
}

func TestFillRoomBooking_NoBookingsGoesIdle(t *testing.T) {
	doc := mustParse(t, roomBookingSVG)

	fillRoomBooking(doc, nil, nil, time.Now())

	assert.NotContains(t, styleOf(t, doc, "state-idle"), "display:none")
	assert.Contains(t, styleOf(t, doc, "state-filled"), "display:none")
}

func TestFormatTimeLine(t *testing.T) {
	crossEnd := time.Date(2025, 1, 7, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		item model.SubItem
		want string
	}{
		{"all day", model.SubItem{Start: ts(0, 0), AllDay: true}, "06.01.2025, Ganztags"},
		{"same day", model.SubItem{Start: ts(10, 0), End: ts(11, 30)}, "06.01.2025, 10:00 - 11:30 Uhr"},
		{"cross day", model.SubItem{Start: ts(22, 0), End: &crossEnd}, "06.01.2025 22:00 - 07.01.2025 09:00"},
		{"open end", model.SubItem{Start: ts(10, 0)}, "06.01.2025, 10:00 Uhr"},
		{"no start", model.SubItem{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, formatTimeLine(tc.item))
		})
	}
}

func TestFill_UnknownTypeUsesPassthrough(t *testing.T) {
	r := New(nil)

	out, err := r.Fill(`<svg xmlns="http://www.w3.org/2000/svg"><text id="message"></text></svg>`,
		"weather-panel", model.FieldMap{"message": "Kein Inhalt"}, nil, 400, 300)

	require.NoError(t, err)
	assert.Contains(t, out, "Kein Inhalt")
	assert.Contains(t, out, `width="400"`)
	assert.Contains(t, out, `height="300"`)
}

func TestFill_RejectsBrokenMarkup(t *testing.T) {
	r := New(nil)

	_, err := r.Fill("<svg><unclosed", model.TemplateDoorSign, nil, nil, 100, 100)

	assert.Error(t, err)
}

func TestQuantizeToPalette(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 20, G: 30, B: 10, A: 255})    // near black
	src.SetRGBA(1, 0, color.RGBA{R: 250, G: 240, B: 245, A: 255}) // near white
	src.SetRGBA(2, 0, color.RGBA{R: 200, G: 40, B: 30, A: 255})   // near red

	got := QuantizeToPalette(src)

	assert.Equal(t, Palette[0], got.RGBAAt(0, 0))
	assert.Equal(t, Palette[1], got.RGBAAt(1, 0))
	assert.Equal(t, Palette[2], got.RGBAAt(2, 0))
}

func TestEncodeJPEG_BaselineDecodable(t *testing.T) {
	img := QuantizeToPalette(image.NewRGBA(image.Rect(0, 0, 8, 8)))

	data, err := EncodeJPEG(img)

	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 8, cfg.Width)
}
