package gateway

import (
	"github.com/inkfleet/inkfleet/internal/db"
	"github.com/inkfleet/inkfleet/internal/model"
)

// DBStore satisfies DisplayStore against the shared database connection.
type DBStore struct{}

func (DBStore) GetDisplayByMac(mac string) (*model.Display, error) { return db.GetDisplayByMac(mac) }
func (DBStore) CreateDisplay(d *model.Display) error               { return db.CreateDisplay(d) }
func (DBStore) SaveDisplay(d *model.Display) error                 { return db.SaveDisplay(d) }
