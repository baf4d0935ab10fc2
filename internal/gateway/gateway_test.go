package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkfleet/inkfleet/internal/db"
	"github.com/inkfleet/inkfleet/internal/errtrack"
	"github.com/inkfleet/inkfleet/internal/model"
)

func TestClient_UploadImage(t *testing.T) {
	var gotMac, gotDither, gotFilename string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/imgupload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotMac = r.FormValue("mac")
		gotDither = r.FormValue("dither")
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename
		gotBody = make([]byte, header.Size)
		_, _ = file.Read(gotBody)
	}))
	defer srv.Close()

	c := NewClient(strings.TrimPrefix(srv.URL, "http://"))
	err := c.UploadImage(context.Background(), "AA:BB", "render.jpg", []byte("jpegdata"))

	require.NoError(t, err)
	assert.Equal(t, "AA:BB", gotMac)
	assert.Equal(t, "0", gotDither, "image is pre-quantized, dithering must stay off")
	assert.Equal(t, "render.jpg", gotFilename)
	assert.Equal(t, "jpegdata", string(gotBody))
}

func TestClient_UploadImageReportsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "tag not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(strings.TrimPrefix(srv.URL, "http://"))
	err := c.UploadImage(context.Background(), "AA:BB", "render.jpg", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestClient_FetchTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/get_db", r.URL.Path)
		_, _ = w.Write([]byte(`{"tags":[{"mac":"AA:BB","alias":"Foyer","batteryMv":2600,"hwType":3}]}`))
	}))
	defer srv.Close()

	c := NewClient(strings.TrimPrefix(srv.URL, "http://"))
	tags, err := c.FetchTags(context.Background())

	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "AA:BB", tags[0].Mac)
	assert.Equal(t, 2600, tags[0].BatteryMv)
}

func TestClient_FetchTagsRejectsMissingArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(strings.TrimPrefix(srv.URL, "http://"))
	_, err := c.FetchTags(context.Background())

	assert.Error(t, err)
}

func TestMvToPercent(t *testing.T) {
	assert.Equal(t, 0, MvToPercent(2100, 2200, 3000), "below empty clamps to 0")
	assert.Equal(t, 0, MvToPercent(2200, 2200, 3000))
	assert.Equal(t, 50, MvToPercent(2600, 2200, 3000))
	assert.Equal(t, 100, MvToPercent(3000, 2200, 3000))
	assert.Equal(t, 100, MvToPercent(3200, 2200, 3000), "above full clamps to 100")
	assert.Equal(t, 0, MvToPercent(2600, 3000, 2200), "inverted range yields 0")
}

// recordingSender collects sent tasks and timestamps.
type recordingSender struct {
	mu    sync.Mutex
	sent  []Task
	times []time.Time
	err   error
}

func (r *recordingSender) Send(_ context.Context, mac, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Task{Filename: filename, Mac: mac})
	r.times = append(r.times, time.Now())
	return r.err
}

func (r *recordingSender) snapshot() []Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Task(nil), r.sent...)
}

func TestUploadQueue_DropsIncompleteTasks(t *testing.T) {
	q := NewUploadQueue(&recordingSender{}, 0)

	q.Enqueue("", "AA:BB")
	q.Enqueue("render.jpg", "")

	assert.Equal(t, 0, q.Len())
}

func TestUploadQueue_SendsInOrderWithDelay(t *testing.T) {
	sender := &recordingSender{}
	q := NewUploadQueue(sender, 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q.Enqueue("one.jpg", "AA:01")
	q.Enqueue("two.jpg", "AA:02")
	go q.Run(ctx)

	require.Eventually(t, func() bool {
		return len(sender.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)

	sent := sender.snapshot()
	assert.Equal(t, Task{Filename: "one.jpg", Mac: "AA:01"}, sent[0])
	assert.Equal(t, Task{Filename: "two.jpg", Mac: "AA:02"}, sent[1])

	sender.mu.Lock()
	gap := sender.times[1].Sub(sender.times[0])
	sender.mu.Unlock()
	assert.GreaterOrEqual(t, gap, 20*time.Millisecond, "delay applies between sends")
}

func TestUploadQueue_KeepsRunningAfterSendFailure(t *testing.T) {
	sender := &recordingSender{err: assert.AnError}
	q := NewUploadQueue(sender, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q.Enqueue("one.jpg", "AA:01")
	q.Enqueue("two.jpg", "AA:02")
	go q.Run(ctx)

	require.Eventually(t, func() bool {
		return len(sender.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestUploadQueue_StopsOnContextCancel(t *testing.T) {
	q := NewUploadQueue(&recordingSender{}, 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		q.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("queue did not stop on cancel")
	}
}

// fakeDisplayStore backs the syncer tests.
type fakeDisplayStore struct {
	displays map[string]*model.Display
	flagged  map[int][]int
	resolved map[int][]int
	nextID   int
}

func newFakeDisplayStore() *fakeDisplayStore {
	return &fakeDisplayStore{
		displays: map[string]*model.Display{},
		flagged:  map[int][]int{},
		resolved: map[int][]int{},
	}
}

func (f *fakeDisplayStore) GetDisplayByMac(mac string) (*model.Display, error) {
	if d, ok := f.displays[mac]; ok {
		return d, nil
	}
	return nil, db.ErrNotFound
}

func (f *fakeDisplayStore) CreateDisplay(d *model.Display) error {
	f.nextID++
	d.ID = f.nextID
	f.displays[d.MacAddress] = d
	return nil
}

func (f *fakeDisplayStore) SaveDisplay(d *model.Display) error {
	f.displays[d.MacAddress] = d
	return nil
}

func (f *fakeDisplayStore) AddDisplayError(displayID, code int, message string) error {
	f.flagged[displayID] = append(f.flagged[displayID], code)
	return nil
}

func (f *fakeDisplayStore) ClearDisplayError(displayID, code int) error {
	f.resolved[displayID] = append(f.resolved[displayID], code)
	return nil
}

func TestSyncTag_CreatesUnknownDisplay(t *testing.T) {
	store := newFakeDisplayStore()
	s := NewSyncer(nil, store, errtrack.New(store), nil)

	err := s.SyncTag(Tag{Mac: "AA:BB", Alias: "Foyer", BatteryMv: 2600})

	require.NoError(t, err)
	d := store.displays["AA:BB"]
	require.NotNil(t, d)
	require.NotNil(t, d.Name)
	assert.Equal(t, "Foyer", *d.Name)
	require.NotNil(t, d.BatteryPercentage)
	assert.Equal(t, 50, *d.BatteryPercentage)
}

func TestSyncTag_FlagsLowBattery(t *testing.T) {
	store := newFakeDisplayStore()
	store.displays["AA:BB"] = &model.Display{ID: 9, MacAddress: "AA:BB"}
	s := NewSyncer(nil, store, errtrack.New(store), nil)

	// 2250mV is ~6%, under the 10% threshold.
	require.NoError(t, s.SyncTag(Tag{Mac: "AA:BB", BatteryMv: 2250}))
	assert.Contains(t, store.flagged[9], model.ErrCodeBatteryLow)

	// A healthy report clears the marker again.
	require.NoError(t, s.SyncTag(Tag{Mac: "AA:BB", BatteryMv: 2900}))
	assert.Contains(t, store.resolved[9], model.ErrCodeBatteryLow)
}

func TestSyncTag_AppliesHardwareCatalog(t *testing.T) {
	store := newFakeDisplayStore()
	s := NewSyncer(nil, store, errtrack.New(store), nil)

	require.NoError(t, s.SyncTag(Tag{Mac: "AA:BB", HWType: 0x01, BatteryMv: 2600}))

	d := store.displays["AA:BB"]
	require.NotNil(t, d)
	assert.Equal(t, 296, d.Width)
	assert.Equal(t, 128, d.Height)
	require.NotNil(t, d.Model)
	assert.Equal(t, "M2 2.9\"", *d.Model)
}

func TestSyncTag_KeepsDimensionsForUnknownHardware(t *testing.T) {
	store := newFakeDisplayStore()
	store.displays["AA:BB"] = &model.Display{ID: 3, MacAddress: "AA:BB", Width: 640, Height: 384}
	s := NewSyncer(nil, store, errtrack.New(store), nil)

	require.NoError(t, s.SyncTag(Tag{Mac: "AA:BB", HWType: 0x7f, BatteryMv: 2600}))

	d := store.displays["AA:BB"]
	assert.Equal(t, 640, d.Width)
	assert.Equal(t, 384, d.Height)
}

func TestSyncTag_RejectsMissingMac(t *testing.T) {
	s := NewSyncer(nil, newFakeDisplayStore(), errtrack.New(newFakeDisplayStore()), nil)

	assert.Error(t, s.SyncTag(Tag{}))
}
