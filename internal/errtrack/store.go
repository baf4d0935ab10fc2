package errtrack

import "github.com/inkfleet/inkfleet/internal/db"

// DBStore satisfies Store against the shared database connection.
type DBStore struct{}

func (DBStore) AddDisplayError(displayID, code int, message string) error {
	return db.AddDisplayError(displayID, code, message)
}

func (DBStore) ClearDisplayError(displayID, code int) error {
	return db.ClearDisplayError(displayID, code)
}
