package content

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkfleet/inkfleet/internal/db"
	"github.com/inkfleet/inkfleet/internal/model"
	"github.com/inkfleet/inkfleet/internal/render"
)

const doorSignSVG = `<svg xmlns="http://www.w3.org/2000/svg">
  <text id="roomNumber"></text><text id="footerNote"></text>
  <text id="name-1"></text><text id="name-2"></text><text id="name-3"></text>
  <g id="state-busy"/><g id="state-free"/>
</svg>`

type contentKey struct{ mac, typeKey string }

type fakeStore struct {
	displays  map[string]*model.Display
	templates map[string]*model.TemplateDefinition
	contents  map[contentKey]*model.DisplayContent
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		displays:  map[string]*model.Display{},
		templates: map[string]*model.TemplateDefinition{},
		contents:  map[contentKey]*model.DisplayContent{},
	}
}

func (f *fakeStore) GetDisplayByMac(mac string) (*model.Display, error) {
	if d, ok := f.displays[mac]; ok {
		return d, nil
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) ResolveTemplate(typeKey string, width, height int) (*model.TemplateDefinition, error) {
	if t, ok := f.templates[typeKey]; ok {
		return t, nil
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) GetDisplayContent(mac, typeKey string) (*model.DisplayContent, error) {
	if c, ok := f.contents[contentKey{mac, typeKey}]; ok {
		return c, nil
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) UpsertDisplayContent(c *model.DisplayContent) error {
	f.contents[contentKey{c.DisplayMac, c.TypeKey}] = c
	return nil
}

func (f *fakeStore) ListAllDisplayContent() ([]model.DisplayContent, error) {
	var out []model.DisplayContent
	for _, c := range f.contents {
		out = append(out, *c)
	}
	return out, nil
}

type fakeImages struct {
	saved map[string][]byte
}

func (f *fakeImages) SaveFile(_ context.Context, name string, data []byte) error {
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[name] = data
	return nil
}

type fakeQueue struct {
	tasks []string
}

func (f *fakeQueue) Enqueue(filename, mac string) {
	f.tasks = append(f.tasks, mac+"/"+filename)
}

// stubRasterizer skips real vector rendering.
type stubRasterizer struct{}

func (stubRasterizer) Rasterize(_ string, width, height int) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, width, height)), nil
}

func newTestService(store *fakeStore) (*Service, *fakeImages, *fakeQueue) {
	images := &fakeImages{}
	queue := &fakeQueue{}
	return NewService(store, render.New(stubRasterizer{}), images, queue), images, queue
}

func seedDisplay(store *fakeStore, mac string) {
	store.displays[mac] = &model.Display{ID: 1, MacAddress: mac, Width: 400, Height: 300}
	store.templates[model.TemplateDoorSign] = &model.TemplateDefinition{
		TypeKey: model.TemplateDoorSign, Width: 400, Height: 300, SVGContent: doorSignSVG,
	}
}

func TestSubmit_StoresRendersAndQueues(t *testing.T) {
	store := newFakeStore()
	seedDisplay(store, "AA:BB:CC:DD:EE:01")
	svc, images, queue := newTestService(store)

	err := svc.Submit(context.Background(), &model.DisplayContent{
		DisplayMac: "AA:BB:CC:DD:EE:01",
		TypeKey:    model.TemplateDoorSign,
		Fields:     model.FieldMap{"roomNumber": "2.04"},
		SubItems:   []model.SubItem{{Title: "A. Muster"}, {Title: "B. Weber"}},
	})

	require.NoError(t, err)
	stored := store.contents[contentKey{"AA:BB:CC:DD:EE:01", model.TemplateDoorSign}]
	require.NotNil(t, stored)
	assert.Equal(t, 0, stored.SubItems[0].Position, "positions follow submission order")
	assert.Equal(t, 1, stored.SubItems[1].Position)

	require.Contains(t, images.saved, "AABBCCDDEE01_door-sign.jpg")
	assert.NotEmpty(t, images.saved["AABBCCDDEE01_door-sign.jpg"])
	assert.Equal(t, []string{"AA:BB:CC:DD:EE:01/AABBCCDDEE01_door-sign.jpg"}, queue.tasks)
}

func TestSubmit_RejectsUnknownDisplay(t *testing.T) {
	svc, _, queue := newTestService(newFakeStore())

	err := svc.Submit(context.Background(), &model.DisplayContent{
		DisplayMac: "FF:FF:FF:FF:FF:FF", TypeKey: model.TemplateDoorSign,
	})

	assert.Error(t, err)
	assert.Empty(t, queue.tasks)
}

func TestRedeliver_FallsBackToDefaultContent(t *testing.T) {
	store := newFakeStore()
	seedDisplay(store, "AA:BB:CC:DD:EE:01")
	svc, images, queue := newTestService(store)

	err := svc.Redeliver(context.Background(), "AA:BB:CC:DD:EE:01", model.TemplateDoorSign)

	require.NoError(t, err)
	assert.Len(t, queue.tasks, 1)
	assert.Contains(t, images.saved, "AABBCCDDEE01_door-sign.jpg")
}

func TestReplayAll_EnqueuesEveryStoredRow(t *testing.T) {
	store := newFakeStore()
	seedDisplay(store, "AA:01")
	seedDisplay(store, "AA:02")
	store.contents[contentKey{"AA:01", model.TemplateDoorSign}] = &model.DisplayContent{
		DisplayMac: "AA:01", TypeKey: model.TemplateDoorSign, Fields: model.FieldMap{},
	}
	store.contents[contentKey{"AA:02", model.TemplateDoorSign}] = &model.DisplayContent{
		DisplayMac: "AA:02", TypeKey: model.TemplateDoorSign, Fields: model.FieldMap{},
	}
	svc, _, queue := newTestService(store)

	svc.ReplayAll(context.Background())

	assert.Len(t, queue.tasks, 2)
}

func TestDefaultContent_PerType(t *testing.T) {
	door := DefaultContent(model.TemplateDoorSign, "AA:01")
	assert.Equal(t, "-", door.Fields["roomNumber"])
	require.Len(t, door.SubItems, 1)
	assert.Equal(t, "Aktuell frei", door.SubItems[0].Title)

	board := DefaultContent(model.TemplateEventBoard, "AA:01")
	assert.Equal(t, "Ereignisse", board.Fields["title"])

	other := DefaultContent("weather-panel", "AA:01")
	assert.Equal(t, "Kein Inhalt verfügbar.", other.Fields["message"])
}

func TestSortByStart_NilStartsLast(t *testing.T) {
	at := func(h int) *time.Time {
		ts := time.Date(2025, 1, 6, h, 0, 0, 0, time.UTC)
		return &ts
	}
	sorted := sortByStart([]model.SubItem{
		{Title: "open"},
		{Title: "late", Start: at(15)},
		{Title: "early", Start: at(9)},
	})

	assert.Equal(t, "early", sorted[0].Title)
	assert.Equal(t, "late", sorted[1].Title)
	assert.Equal(t, "open", sorted[2].Title)
}
