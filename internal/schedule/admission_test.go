package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkfleet/inkfleet/internal/db"
	"github.com/inkfleet/inkfleet/internal/errtrack"
	"github.com/inkfleet/inkfleet/internal/model"
)

// fakeStore keeps everything in memory and records the error-marker calls,
// standing in for both the schedule and errtrack storage surfaces.
type fakeStore struct {
	displays  map[string]*model.Display
	events    []model.Event
	recurring []model.RecurringEvent
	nextID    int

	flagged  map[int][]int
	resolved map[int][]int
	cfg      *model.Config
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		displays: map[string]*model.Display{},
		flagged:  map[int][]int{},
		resolved: map[int][]int{},
		cfg:      testConfig(),
	}
}

func (f *fakeStore) addDisplay(id int, mac string, wake time.Time) *model.Display {
	d := &model.Display{ID: id, MacAddress: mac, DefaultFilename: "default.jpg", WakeTime: wake}
	f.displays[mac] = d
	return d
}

func (f *fakeStore) GetDisplayByMac(mac string) (*model.Display, error) {
	d, ok := f.displays[mac]
	if !ok {
		return nil, db.ErrNotFound
	}
	return d, nil
}

func (f *fakeStore) SaveDisplay(d *model.Display) error { return nil }

func (f *fakeStore) SetDisplayNextEventTime(mac string, next *time.Time) error {
	if d, ok := f.displays[mac]; ok {
		d.NextEventTime = next
	}
	return nil
}

func (f *fakeStore) GetEventByID(id int) (*model.Event, error) {
	for i := range f.events {
		if f.events[i].ID == id {
			e := f.events[i]
			return &e, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) FindEventsByDisplay(mac string) ([]model.Event, error) {
	var out []model.Event
	for _, e := range f.events {
		if e.DisplayMac == mac {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) FindEventsByGroup(groupID string) ([]model.Event, error) {
	var out []model.Event
	for _, e := range f.events {
		if e.GroupID == groupID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) FindOverlappingEvents(mac string, start, end time.Time, excludeGroup string) ([]model.Event, error) {
	var out []model.Event
	for _, e := range f.events {
		if e.DisplayMac != mac {
			continue
		}
		if excludeGroup != "" && e.GroupID == excludeGroup {
			continue
		}
		if e.Start.Before(end) && e.End.After(start) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) SaveEvents(events []model.Event) error {
	for i := range events {
		f.nextID++
		events[i].ID = f.nextID
		f.events = append(f.events, events[i])
	}
	return nil
}

func (f *fakeStore) UpdateEvent(e *model.Event) error {
	for i := range f.events {
		if f.events[i].ID == e.ID {
			f.events[i] = *e
		}
	}
	return nil
}

func (f *fakeStore) DeleteEvent(id int) error {
	for i := range f.events {
		if f.events[i].ID == id {
			f.events = append(f.events[:i], f.events[i+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

func (f *fakeStore) DeleteEventsByGroup(groupID string) (int, error) {
	var kept []model.Event
	removed := 0
	for _, e := range f.events {
		if e.GroupID == groupID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	f.events = kept
	return removed, nil
}

func (f *fakeStore) SaveRecurringEvent(r *model.RecurringEvent) error {
	f.recurring = append(f.recurring, *r)
	return nil
}

func (f *fakeStore) DeleteRecurringEventByGroup(groupID string) error {
	var kept []model.RecurringEvent
	for _, r := range f.recurring {
		if r.GroupID != groupID {
			kept = append(kept, r)
		}
	}
	f.recurring = kept
	return nil
}

func (f *fakeStore) GetConfig() (*model.Config, error) { return f.cfg, nil }

func (f *fakeStore) AddDisplayError(displayID, code int, message string) error {
	f.flagged[displayID] = append(f.flagged[displayID], code)
	return nil
}

func (f *fakeStore) ClearDisplayError(displayID, code int) error {
	f.resolved[displayID] = append(f.resolved[displayID], code)
	return nil
}

func newTestService(f *fakeStore, now time.Time) *Service {
	s := NewService(f, errtrack.New(f))
	s.now = func() time.Time { return now }
	return s
}

const mac1 = "AA:BB:CC:DD:EE:01"

func TestAddEvent_RejectsOverlap(t *testing.T) {
	f := newFakeStore()
	f.addDisplay(1, mac1, monday(18, 0))
	f.events = []model.Event{{
		ID: 1, Title: "standup", Start: monday(10, 0), End: monday(11, 0),
		DisplayMac: mac1, GroupID: "g-existing",
	}}
	s := newTestService(f, monday(8, 0))

	_, err := s.AddEvent(EventRequest{
		Title: "clash", Start: monday(10, 30), End: monday(10, 45),
		Assignments: []model.DisplayImage{{DisplayMac: mac1, Image: "x.jpg"}},
	})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Len(t, conflict.Conflicts, 1)
	assert.Equal(t, mac1, conflict.Conflicts[0].DisplayMac)
	assert.Contains(t, conflict.Error(), "standup")
	assert.Len(t, f.events, 1, "nothing may be saved on conflict")
}

func TestAddEvent_AdjacentEventSucceeds(t *testing.T) {
	f := newFakeStore()
	f.addDisplay(1, mac1, monday(18, 0))
	f.events = []model.Event{{
		ID: 1, Title: "standup", Start: monday(10, 0), End: monday(11, 0),
		DisplayMac: mac1, GroupID: "g-existing",
	}}
	s := newTestService(f, monday(8, 0))

	res, err := s.AddEvent(EventRequest{
		Title: "followup", Start: monday(11, 0), End: monday(12, 0),
		Assignments: []model.DisplayImage{{DisplayMac: mac1, Image: "x.jpg"}},
	})

	require.NoError(t, err)
	assert.Len(t, res.Saved, 1)
	assert.Len(t, f.events, 2)
}

func TestAddEvent_RejectsUnknownDisplays(t *testing.T) {
	f := newFakeStore()
	f.addDisplay(1, mac1, monday(18, 0))
	s := newTestService(f, monday(8, 0))

	_, err := s.AddEvent(EventRequest{
		Title: "meeting", Start: monday(10, 0), End: monday(11, 0),
		Assignments: []model.DisplayImage{
			{DisplayMac: mac1, Image: "a.jpg"},
			{DisplayMac: "11:22:33:44:55:66", Image: "b.jpg"},
		},
	})

	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "11:22:33:44:55:66")
	assert.Empty(t, f.events)
}

func TestAddEvent_AllDayNormalization(t *testing.T) {
	f := newFakeStore()
	f.addDisplay(1, mac1, monday(18, 0))
	s := newTestService(f, monday(8, 0))

	res, err := s.AddEvent(EventRequest{
		Title: "open day", AllDay: true,
		Start:       time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		Assignments: []model.DisplayImage{{DisplayMac: mac1, Image: "a.jpg"}},
	})

	require.NoError(t, err)
	require.Len(t, res.Saved, 1)
	assert.Equal(t, time.Date(2025, 1, 5, 23, 59, 59, 0, time.UTC), res.Saved[0].End)
}

func TestAddEvent_RecurrenceCap(t *testing.T) {
	f := newFakeStore()
	f.addDisplay(1, mac1, monday(18, 0))
	s := newTestService(f, monday(8, 0))

	// No COUNT and no UNTIL: the rule alone would generate forever.
	res, err := s.AddEvent(EventRequest{
		Title: "daily", Start: monday(10, 0), End: monday(11, 0),
		RRule:       "FREQ=DAILY",
		Assignments: []model.DisplayImage{{DisplayMac: mac1, Image: "a.jpg"}},
	})

	require.NoError(t, err)
	assert.Len(t, res.Saved, 100)
	require.Len(t, f.recurring, 1)
	assert.Equal(t, res.GroupID, f.recurring[0].GroupID)
	for _, e := range res.Saved {
		assert.Equal(t, res.GroupID, e.GroupID)
		assert.Equal(t, time.Hour, e.End.Sub(e.Start))
	}
}

func TestAddEvent_RecurrenceConflictAbortsBatch(t *testing.T) {
	f := newFakeStore()
	f.addDisplay(1, mac1, monday(18, 0))
	// Collides with the third daily occurrence only.
	f.events = []model.Event{{
		ID: 1, Title: "blocker", Start: monday(10, 0).AddDate(0, 0, 2),
		End: monday(11, 0).AddDate(0, 0, 2), DisplayMac: mac1, GroupID: "g-existing",
	}}
	s := newTestService(f, monday(8, 0))

	_, err := s.AddEvent(EventRequest{
		Title: "daily", Start: monday(10, 0), End: monday(11, 0),
		RRule:       "FREQ=DAILY;COUNT=5",
		Assignments: []model.DisplayImage{{DisplayMac: mac1, Image: "a.jpg"}},
	})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Len(t, f.events, 1, "no occurrence may be saved")
	assert.Empty(t, f.recurring)
}

func TestAddEvent_WakeCollisionWarnsAndFlags(t *testing.T) {
	f := newFakeStore()
	// The display sleeps until 12:00, past the 10:00 event start.
	f.addDisplay(7, mac1, monday(12, 0))
	s := newTestService(f, monday(8, 0))

	res, err := s.AddEvent(EventRequest{
		Title: "meeting", Start: monday(10, 0), End: monday(11, 0),
		Assignments: []model.DisplayImage{{DisplayMac: mac1, Image: "a.jpg"}},
	})

	require.NoError(t, err, "wake collision is a soft failure")
	assert.Equal(t, []string{mac1}, res.Warnings)
	assert.Contains(t, f.flagged[7], model.ErrCodeWakeMissed)
	assert.Len(t, f.events, 1, "event is saved regardless")
}

func TestAddEvent_UpdatesNextEventTimeCache(t *testing.T) {
	f := newFakeStore()
	later := monday(15, 0)
	d := f.addDisplay(1, mac1, monday(9, 0))
	d.NextEventTime = &later
	s := newTestService(f, monday(8, 0))

	_, err := s.AddEvent(EventRequest{
		Title: "meeting", Start: monday(10, 0), End: monday(11, 0),
		Assignments: []model.DisplayImage{{DisplayMac: mac1, Image: "a.jpg"}},
	})

	require.NoError(t, err)
	require.NotNil(t, d.NextEventTime)
	assert.Equal(t, monday(10, 0), *d.NextEventTime)
}

func TestDeleteEvent_ActiveEventClearsErrors(t *testing.T) {
	f := newFakeStore()
	start := monday(10, 0)
	d := f.addDisplay(3, mac1, monday(18, 0))
	d.NextEventTime = &start
	f.events = []model.Event{{
		ID: 1, Title: "meeting", Start: start, End: monday(11, 0),
		DisplayMac: mac1, GroupID: "g1",
	}}
	s := newTestService(f, monday(10, 30))

	require.NoError(t, s.DeleteEvent(1))

	assert.Empty(t, f.events)
	assert.Contains(t, f.resolved[3], model.ErrCodeContentNotConfirmed)
	assert.Contains(t, f.resolved[3], model.ErrCodeWakeMissed)
	assert.Nil(t, d.NextEventTime, "cache pointed at the deleted event")
}

func TestDeleteEvent_RecomputesNextEventTime(t *testing.T) {
	f := newFakeStore()
	start := monday(10, 0)
	d := f.addDisplay(3, mac1, monday(18, 0))
	d.NextEventTime = &start
	f.events = []model.Event{
		{ID: 1, Title: "first", Start: start, End: monday(11, 0), DisplayMac: mac1, GroupID: "g1"},
		{ID: 2, Title: "second", Start: monday(14, 0), End: monday(15, 0), DisplayMac: mac1, GroupID: "g2"},
	}
	s := newTestService(f, monday(8, 0))

	require.NoError(t, s.DeleteEvent(1))

	require.NotNil(t, d.NextEventTime)
	assert.Equal(t, monday(14, 0), *d.NextEventTime)
}

func TestUpdateEvent_ExcludesOwnGroupFromConflicts(t *testing.T) {
	f := newFakeStore()
	f.addDisplay(1, mac1, monday(18, 0))
	f.events = []model.Event{
		{ID: 1, Title: "daily", Start: monday(10, 0), End: monday(11, 0), DisplayMac: mac1, Image: "a.jpg", GroupID: "g1"},
		{ID: 2, Title: "daily", Start: monday(10, 0).AddDate(0, 0, 1), End: monday(11, 0).AddDate(0, 0, 1), DisplayMac: mac1, Image: "a.jpg", GroupID: "g1"},
	}
	s := newTestService(f, monday(8, 0))

	// Stretching into the sibling occurrence's day must not self-conflict.
	res, err := s.UpdateEvent(1, EventRequest{
		Title: "daily", Start: monday(10, 0), End: monday(12, 0),
	})

	require.NoError(t, err)
	assert.Equal(t, monday(12, 0), res.Saved[0].End)
}

func TestResolveWake_PersistsAndClearsWakeError(t *testing.T) {
	f := newFakeStore()
	d := f.addDisplay(5, mac1, monday(6, 0))
	d.FilenameApp = "default.jpg"
	f.events = []model.Event{{
		ID: 1, Title: "meeting", Start: monday(10, 0), End: monday(11, 0),
		DisplayMac: mac1, Image: "a.jpg", GroupID: "g1",
	}}
	s := newTestService(f, monday(10, 30))

	got, err := s.ResolveWake(mac1)

	require.NoError(t, err)
	assert.Equal(t, monday(11, 15), got.WakeTime)
	assert.Equal(t, "a.jpg", got.Filename)
	assert.True(t, got.DoSwitch, "device still shows default.jpg")
	assert.Contains(t, f.resolved[5], model.ErrCodeWakeMissed)
}
