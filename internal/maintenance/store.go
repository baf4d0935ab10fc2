package maintenance

import (
	"time"

	"github.com/inkfleet/inkfleet/internal/db"
	"github.com/inkfleet/inkfleet/internal/model"
)

// DBStore satisfies Store against the shared database connection.
type DBStore struct{}

func (DBStore) FindExpiredDisplayContent(now time.Time) ([]model.DisplayContent, error) {
	return db.FindExpiredDisplayContent(now)
}
func (DBStore) FindContentWithExpiredSubItems(now time.Time) ([]model.DisplayContent, error) {
	return db.FindContentWithExpiredSubItems(now)
}
func (DBStore) DeleteDisplayContent(id int) error { return db.DeleteDisplayContent(id) }
func (DBStore) DeleteSubItem(id int) error        { return db.DeleteSubItem(id) }
func (DBStore) ResetSubItem(id int) error         { return db.ResetSubItem(id) }
func (DBStore) ArchiveSubItem(typeKey, mac string, s model.SubItem) error {
	return db.ArchiveSubItem(typeKey, mac, s)
}
func (DBStore) TrimSubItemHistory(keep int) (int, error) { return db.TrimSubItemHistory(keep) }
func (DBStore) GetConfig() (*model.Config, error)        { return db.GetConfig() }
func (DBStore) DeleteEventsEndedBefore(cutoff time.Time) (int, error) {
	return db.DeleteEventsEndedBefore(cutoff)
}
