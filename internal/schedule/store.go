package schedule

import (
	"errors"
	"time"

	"github.com/inkfleet/inkfleet/internal/db"
	"github.com/inkfleet/inkfleet/internal/model"
)

func isNotFound(err error) bool {
	return errors.Is(err, db.ErrNotFound)
}

// DBStore satisfies Store against the shared database connection.
type DBStore struct{}

func (DBStore) GetDisplayByMac(mac string) (*model.Display, error) { return db.GetDisplayByMac(mac) }
func (DBStore) SaveDisplay(d *model.Display) error                 { return db.SaveDisplay(d) }
func (DBStore) SetDisplayNextEventTime(mac string, next *time.Time) error {
	return db.SetDisplayNextEventTime(mac, next)
}

func (DBStore) GetEventByID(id int) (*model.Event, error)        { return db.GetEventByID(id) }
func (DBStore) FindEventsByDisplay(mac string) ([]model.Event, error) {
	return db.FindEventsByDisplay(mac)
}
func (DBStore) FindEventsByGroup(groupID string) ([]model.Event, error) {
	return db.FindEventsByGroup(groupID)
}
func (DBStore) FindOverlappingEvents(mac string, start, end time.Time, excludeGroup string) ([]model.Event, error) {
	return db.FindOverlappingEvents(mac, start, end, excludeGroup)
}
func (DBStore) SaveEvents(events []model.Event) error { return db.SaveEvents(events) }
func (DBStore) UpdateEvent(e *model.Event) error      { return db.UpdateEvent(e) }
func (DBStore) DeleteEvent(id int) error              { return db.DeleteEvent(id) }
func (DBStore) DeleteEventsByGroup(groupID string) (int, error) {
	return db.DeleteEventsByGroup(groupID)
}

func (DBStore) SaveRecurringEvent(r *model.RecurringEvent) error { return db.SaveRecurringEvent(r) }
func (DBStore) DeleteRecurringEventByGroup(groupID string) error {
	return db.DeleteRecurringEventByGroup(groupID)
}

func (DBStore) GetConfig() (*model.Config, error) { return db.GetConfig() }
