package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/inkfleet/inkfleet/internal/errtrack"
	"github.com/inkfleet/inkfleet/internal/model"
)

// Store is the persistence surface the admission service works against.
// The db package satisfies it through DBStore.
type Store interface {
	GetDisplayByMac(mac string) (*model.Display, error)
	SaveDisplay(d *model.Display) error
	SetDisplayNextEventTime(mac string, next *time.Time) error

	GetEventByID(id int) (*model.Event, error)
	FindEventsByDisplay(mac string) ([]model.Event, error)
	FindEventsByGroup(groupID string) ([]model.Event, error)
	FindOverlappingEvents(mac string, start, end time.Time, excludeGroup string) ([]model.Event, error)
	SaveEvents(events []model.Event) error
	UpdateEvent(e *model.Event) error
	DeleteEvent(id int) error
	DeleteEventsByGroup(groupID string) (int, error)

	SaveRecurringEvent(r *model.RecurringEvent) error
	DeleteRecurringEventByGroup(groupID string) error

	GetConfig() (*model.Config, error)
}

// EventRequest is one admission submission. A non-empty RRule expands the
// span into a recurring series; Assignments fan the series out across
// displays.
type EventRequest struct {
	Title       string               `json:"title"`
	AllDay      bool                 `json:"all_day"`
	Start       time.Time            `json:"start"`
	End         time.Time            `json:"end"`
	RRule       string               `json:"rrule,omitempty"`
	Assignments []model.DisplayImage `json:"assignments"`
}

// Result reports a successful admission. Warnings carries the macs of
// displays whose stored wake time falls after the event start (or lies in
// the past), meaning timely wake-up cannot be guaranteed; the events are
// saved regardless and the displays are flagged with a persistent error.
type Result struct {
	GroupID  string        `json:"group_id"`
	Saved    []model.Event `json:"saved"`
	Warnings []string      `json:"warnings,omitempty"`
}

// ValidationError rejects a submission before any storage access.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Service admits, updates and removes events, keeping display wake state
// consistent with the stored schedule.
type Service struct {
	store Store
	errs  *errtrack.Tracker
	now   func() time.Time
}

func NewService(store Store, errs *errtrack.Tracker) *Service {
	return &Service{store: store, errs: errs, now: time.Now}
}

// AddEvent validates, conflict-checks and stores a submission. All rows of
// the submission share one group id; any conflict on any target display
// aborts the whole batch.
func (s *Service) AddEvent(req EventRequest) (*Result, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	displays, err := s.resolveDisplays(req.Assignments)
	if err != nil {
		return nil, err
	}

	starts := []time.Time{req.Start}
	duration := req.End.Sub(req.Start)
	if req.RRule != "" {
		if starts, err = ExpandRule(req.RRule, req.Start, OccurrenceCap); err != nil {
			return nil, &ValidationError{Reason: err.Error()}
		}
	}

	groupID := uuid.NewString()
	var drafts []model.Event
	for _, a := range req.Assignments {
		for _, start := range starts {
			drafts = append(drafts, model.Event{
				Title:      req.Title,
				AllDay:     req.AllDay,
				Start:      start,
				End:        start.Add(duration),
				DisplayMac: a.DisplayMac,
				Image:      a.Image,
				GroupID:    groupID,
			})
		}
	}

	if conflicts, err := s.findConflicts(drafts, ""); err != nil {
		return nil, err
	} else if len(conflicts) > 0 {
		return nil, &ConflictError{Conflicts: conflicts}
	}

	if err := s.store.SaveEvents(drafts); err != nil {
		return nil, err
	}
	if req.RRule != "" {
		rec := &model.RecurringEvent{
			Title: req.Title, Start: req.Start, End: req.End,
			RRule: req.RRule, GroupID: groupID,
		}
		if err := s.store.SaveRecurringEvent(rec); err != nil {
			return nil, err
		}
	}

	res := &Result{GroupID: groupID, Saved: drafts}
	for _, d := range displays {
		warned, err := s.afterAdmission(d, req.Start)
		if err != nil {
			return nil, err
		}
		if warned {
			res.Warnings = append(res.Warnings, d.MacAddress)
		}
	}
	sort.Strings(res.Warnings)
	return res, nil
}

// UpdateEvent rewrites one stored event's span, title and image. Conflict
// checking excludes the event's own group so a series does not collide
// with itself.
func (s *Service) UpdateEvent(id int, req EventRequest) (*Result, error) {
	e, err := s.store.GetEventByID(id)
	if err != nil {
		return nil, err
	}
	if !req.End.After(req.Start) {
		return nil, &ValidationError{Reason: "event end must be after start"}
	}

	e.Title = req.Title
	e.AllDay = req.AllDay
	e.Start = req.Start
	e.End = req.End
	if req.AllDay {
		e.End = endOfDay(e.End)
	}
	if len(req.Assignments) > 0 {
		e.Image = req.Assignments[0].Image
	}

	overlaps, err := s.store.FindOverlappingEvents(e.DisplayMac, e.Start, e.End, e.GroupID)
	if err != nil {
		return nil, err
	}
	if len(overlaps) > 0 {
		return nil, &ConflictError{Conflicts: []Conflict{{DisplayMac: e.DisplayMac, Events: overlaps}}}
	}

	if err := s.store.UpdateEvent(e); err != nil {
		return nil, err
	}

	res := &Result{GroupID: e.GroupID, Saved: []model.Event{*e}}
	d, err := s.store.GetDisplayByMac(e.DisplayMac)
	if err != nil {
		return nil, err
	}
	warned, err := s.afterAdmission(d, e.Start)
	if err != nil {
		return nil, err
	}
	if warned {
		res.Warnings = append(res.Warnings, d.MacAddress)
	}
	return res, nil
}

// DeleteEvent removes one event. Deleting an event that is showing right
// now clears error codes 101 and 102 from its display: content missing
// because it was deleted is not a device fault. A stale next-event cache
// pointing at the deleted start is recomputed from the remaining events.
func (s *Service) DeleteEvent(id int) error {
	e, err := s.store.GetEventByID(id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteEvent(id); err != nil {
		return err
	}
	return s.afterRemoval(*e)
}

// DeleteGroup removes a whole submission or recurring series.
func (s *Service) DeleteGroup(groupID string) error {
	events, err := s.store.FindEventsByGroup(groupID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteRecurringEventByGroup(groupID); err != nil {
		return err
	}
	if _, err := s.store.DeleteEventsByGroup(groupID); err != nil {
		return err
	}
	for _, e := range events {
		if err := s.afterRemoval(e); err != nil {
			return err
		}
	}
	return nil
}

// ResolveWake recomputes the display's wake time and target filename from
// its stored events, persists both, and clears the missed-wake error: the
// device asking for its schedule is the proof that it woke.
func (s *Service) ResolveWake(mac string) (*model.Display, error) {
	d, err := s.store.GetDisplayByMac(mac)
	if err != nil {
		return nil, err
	}
	events, err := s.store.FindEventsByDisplay(mac)
	if err != nil {
		return nil, err
	}
	cfg, err := s.store.GetConfig()
	if err != nil {
		return nil, err
	}

	r := ComputeNextWake(d, events, cfg, s.now())
	d.WakeTime = r.WakeTime
	d.Filename = r.Filename
	d.DoSwitch = d.Filename != d.FilenameApp

	if err := s.store.SaveDisplay(d); err != nil {
		return nil, err
	}
	if err := s.errs.Resolve(d.ID, model.ErrCodeWakeMissed); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) validate(req *EventRequest) error {
	if req.Title == "" {
		return &ValidationError{Reason: "event title must not be empty"}
	}
	if len(req.Assignments) == 0 {
		return &ValidationError{Reason: "event needs at least one display assignment"}
	}
	seen := map[string]bool{}
	for _, a := range req.Assignments {
		if a.DisplayMac == "" {
			return &ValidationError{Reason: "assignment display mac must not be empty"}
		}
		if seen[a.DisplayMac] {
			return &ValidationError{Reason: fmt.Sprintf("display %s assigned twice", a.DisplayMac)}
		}
		seen[a.DisplayMac] = true
	}
	if req.AllDay {
		req.End = endOfDay(req.End)
	}
	if !req.End.After(req.Start) {
		return &ValidationError{Reason: "event end must be after start"}
	}
	return nil
}

// resolveDisplays loads every target display, rejecting the submission
// with the full list of unknown macs rather than the first one.
func (s *Service) resolveDisplays(assignments []model.DisplayImage) ([]*model.Display, error) {
	var displays []*model.Display
	var missing []string
	for _, a := range assignments {
		d, err := s.store.GetDisplayByMac(a.DisplayMac)
		switch {
		case err == nil:
			displays = append(displays, d)
		case isNotFound(err):
			missing = append(missing, a.DisplayMac)
		default:
			return nil, err
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Reason: "unknown displays: " + joinMacs(missing)}
	}
	return displays, nil
}

func (s *Service) findConflicts(drafts []model.Event, excludeGroup string) ([]Conflict, error) {
	byMac := map[string][]model.Event{}
	var macs []string
	for _, draft := range drafts {
		overlaps, err := s.store.FindOverlappingEvents(draft.DisplayMac, draft.Start, draft.End, excludeGroup)
		if err != nil {
			return nil, err
		}
		for _, o := range overlaps {
			if !containsEvent(byMac[draft.DisplayMac], o.ID) {
				if len(byMac[draft.DisplayMac]) == 0 {
					macs = append(macs, draft.DisplayMac)
				}
				byMac[draft.DisplayMac] = append(byMac[draft.DisplayMac], o)
			}
		}
	}
	sort.Strings(macs)
	var conflicts []Conflict
	for _, mac := range macs {
		conflicts = append(conflicts, Conflict{DisplayMac: mac, Events: byMac[mac]})
	}
	return conflicts, nil
}

// afterAdmission flags the missed-wake error when the display's stored
// wake time comes too late for the new event, and advances the cached
// next-event time when the new start is earlier.
func (s *Service) afterAdmission(d *model.Display, start time.Time) (warned bool, err error) {
	now := s.now()
	if d.WakeTime.After(start) || d.WakeTime.Before(now) {
		if err := s.errs.Flag(d.ID, model.ErrCodeWakeMissed); err != nil {
			return false, err
		}
		warned = true
	}
	if start.After(now) && (d.NextEventTime == nil || start.Before(*d.NextEventTime)) {
		next := start
		if err := s.store.SetDisplayNextEventTime(d.MacAddress, &next); err != nil {
			return warned, err
		}
	}
	return warned, nil
}

func (s *Service) afterRemoval(e model.Event) error {
	d, err := s.store.GetDisplayByMac(e.DisplayMac)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	if e.Active(s.now()) {
		if err := s.errs.ResolveAll(d.ID,
			model.ErrCodeContentNotConfirmed, model.ErrCodeWakeMissed); err != nil {
			return err
		}
	}

	if d.NextEventTime != nil && d.NextEventTime.Equal(e.Start) {
		next, err := s.earliestFutureStart(d.MacAddress)
		if err != nil {
			return err
		}
		if err := s.store.SetDisplayNextEventTime(d.MacAddress, next); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) earliestFutureStart(mac string) (*time.Time, error) {
	events, err := s.store.FindEventsByDisplay(mac)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var next *time.Time
	for i := range events {
		start := events[i].Start
		if start.After(now) && (next == nil || start.Before(*next)) {
			next = &start
		}
	}
	return next, nil
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

func containsEvent(events []model.Event, id int) bool {
	for _, e := range events {
		if e.ID == id {
			return true
		}
	}
	return false
}

func joinMacs(macs []string) string {
	sort.Strings(macs)
	out := ""
	for i, m := range macs {
		if i > 0 {
			out += ", "
		}
		out += m
	}
	return out
}
