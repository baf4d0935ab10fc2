package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/inkfleet/inkfleet/internal/model"
)

// ErrNotFound is returned for single-entity lookups that match no row.
var ErrNotFound = errors.New("not found")

const displayColumns = `
	id, mac_address, name, brand, model, width, height, orientation,
	display_type, technology, filename, default_filename, filename_app,
	do_switch, battery_percentage, battery_reported_at, last_switch,
	running_since, wake_time, next_event_time`

func GetDisplayByMac(mac string) (*model.Display, error) {
	var d model.Display
	err := DB.Get(&d, `SELECT`+displayColumns+` FROM displays WHERE mac_address = $1`, mac)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("mac", mac).Msg("failed to get display by mac")
		return nil, err
	}
	if err := loadDisplayErrors(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

func ListDisplays() ([]model.Display, error) {
	var displays []model.Display
	err := DB.Select(&displays, `SELECT`+displayColumns+` FROM displays ORDER BY mac_address`)
	if err != nil {
		log.Error().Err(err).Msg("failed to list displays")
		return nil, err
	}
	for i := range displays {
		if err := loadDisplayErrors(&displays[i]); err != nil {
			return nil, err
		}
	}
	return displays, nil
}

// CreateDisplay inserts a bare record for a newly announced device.
func CreateDisplay(d *model.Display) error {
	const q = `
	INSERT INTO displays
	  (mac_address, name, brand, model, width, height, orientation,
	   display_type, technology, filename, default_filename, filename_app,
	   do_switch, wake_time, running_since)
	VALUES
	  (:mac_address, :name, :brand, :model, :width, :height, :orientation,
	   :display_type, :technology, :filename, :default_filename, :filename_app,
	   :do_switch, :wake_time, :running_since)
	RETURNING id`
	rows, err := DB.NamedQuery(q, d)
	if err != nil {
		log.Error().Err(err).Str("mac", d.MacAddress).Msg("failed to create display")
		return err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&d.ID); err != nil {
			return err
		}
	}
	return nil
}

// SaveDisplay writes every mutable column of the display row.
func SaveDisplay(d *model.Display) error {
	const q = `
	UPDATE displays SET
	  name = :name, brand = :brand, model = :model,
	  width = :width, height = :height, orientation = :orientation,
	  display_type = :display_type, technology = :technology,
	  filename = :filename, default_filename = :default_filename,
	  filename_app = :filename_app, do_switch = :do_switch,
	  battery_percentage = :battery_percentage,
	  battery_reported_at = :battery_reported_at,
	  last_switch = :last_switch, running_since = :running_since,
	  wake_time = :wake_time, next_event_time = :next_event_time
	WHERE id = :id`
	if _, err := DB.NamedExec(q, d); err != nil {
		log.Error().Err(err).Str("mac", d.MacAddress).Msg("failed to save display")
		return err
	}
	return nil
}

func DeleteDisplay(mac string) error {
	res, err := DB.Exec(`DELETE FROM displays WHERE mac_address = $1`, mac)
	if err != nil {
		log.Error().Err(err).Str("mac", mac).Msg("failed to delete display")
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func SetDisplayNextEventTime(mac string, next *time.Time) error {
	_, err := DB.Exec(`UPDATE displays SET next_event_time = $2 WHERE mac_address = $1`, mac, next)
	if err != nil {
		log.Error().Err(err).Str("mac", mac).Msg("failed to set next event time")
	}
	return err
}

func ListDistinctBrands() ([]string, error) {
	var brands []string
	err := DB.Select(&brands, `
		SELECT DISTINCT brand FROM displays WHERE brand IS NOT NULL ORDER BY brand`)
	if err != nil {
		log.Error().Err(err).Msg("failed to list display brands")
	}
	return brands, err
}

func ListDistinctModels() ([]string, error) {
	var models []string
	err := DB.Select(&models, `
		SELECT DISTINCT model FROM displays WHERE model IS NOT NULL ORDER BY model`)
	if err != nil {
		log.Error().Err(err).Msg("failed to list display models")
	}
	return models, err
}

// AddDisplayError attaches a coded error; adding an existing code is a no-op.
func AddDisplayError(displayID, code int, message string) error {
	_, err := DB.Exec(`
		INSERT INTO display_errors (display_id, code, message)
		VALUES ($1, $2, $3)
		ON CONFLICT (display_id, code) DO NOTHING`, displayID, code, message)
	if err != nil {
		log.Error().Err(err).Int("display_id", displayID).Int("code", code).
			Msg("failed to add display error")
	}
	return err
}

// ClearDisplayError removes a coded error; clearing an absent code is a no-op.
func ClearDisplayError(displayID, code int) error {
	_, err := DB.Exec(`
		DELETE FROM display_errors WHERE display_id = $1 AND code = $2`, displayID, code)
	if err != nil {
		log.Error().Err(err).Int("display_id", displayID).Int("code", code).
			Msg("failed to clear display error")
	}
	return err
}

func loadDisplayErrors(d *model.Display) error {
	err := DB.Select(&d.Errors, `
		SELECT display_id, code, message
		  FROM display_errors
		 WHERE display_id = $1
		 ORDER BY code`, d.ID)
	if err != nil {
		log.Error().Err(err).Str("mac", d.MacAddress).Msg("failed to load display errors")
	}
	return err
}
