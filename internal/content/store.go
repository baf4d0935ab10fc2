package content

import (
	"github.com/inkfleet/inkfleet/internal/db"
	"github.com/inkfleet/inkfleet/internal/model"
)

// DBStore satisfies Store against the shared database connection.
type DBStore struct{}

func (DBStore) GetDisplayByMac(mac string) (*model.Display, error) { return db.GetDisplayByMac(mac) }
func (DBStore) ResolveTemplate(typeKey string, width, height int) (*model.TemplateDefinition, error) {
	return db.ResolveTemplate(typeKey, width, height)
}
func (DBStore) GetDisplayContent(mac, typeKey string) (*model.DisplayContent, error) {
	return db.GetDisplayContent(mac, typeKey)
}
func (DBStore) UpsertDisplayContent(c *model.DisplayContent) error {
	return db.UpsertDisplayContent(c)
}
func (DBStore) ListAllDisplayContent() ([]model.DisplayContent, error) {
	return db.ListAllDisplayContent()
}
