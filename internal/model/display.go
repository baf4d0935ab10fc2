package model

import "time"

// Display represents one physical e-paper tag in the fleet. Identity is the
// MAC address reported by the gateway; events reference displays by MAC only.
type Display struct {
	ID                int        `db:"id"                 json:"id"`
	MacAddress        string     `db:"mac_address"        json:"mac_address"`
	Name              *string    `db:"name"               json:"name"`
	Brand             *string    `db:"brand"              json:"brand"`
	Model             *string    `db:"model"              json:"model"`
	Width             int        `db:"width"              json:"width"`
	Height            int        `db:"height"             json:"height"`
	Orientation       string     `db:"orientation"        json:"orientation"`
	DisplayType       *string    `db:"display_type"       json:"display_type"`
	Technology        *string    `db:"technology"         json:"technology"`
	Filename          string     `db:"filename"           json:"filename"`
	DefaultFilename   string     `db:"default_filename"   json:"default_filename"`
	// FilenameApp is the last filename the device itself confirmed showing.
	FilenameApp       string     `db:"filename_app"       json:"filename_app"`
	DoSwitch          bool       `db:"do_switch"          json:"do_switch"`
	BatteryPercentage *int       `db:"battery_percentage" json:"battery_percentage"`
	BatteryReportedAt *time.Time `db:"battery_reported_at" json:"battery_reported_at"`
	LastSwitch        *time.Time `db:"last_switch"        json:"last_switch"`
	RunningSince      *time.Time `db:"running_since"      json:"running_since"`
	WakeTime          time.Time  `db:"wake_time"          json:"wake_time"`
	NextEventTime     *time.Time `db:"next_event_time"    json:"next_event_time"`

	// Errors is loaded from display_errors alongside the row; it is not a
	// column. Unique by code.
	Errors []DisplayError `db:"-" json:"errors"`
}

// DisplayError is a coded health annotation on a display.
type DisplayError struct {
	DisplayID int    `db:"display_id" json:"-"`
	Code      int    `db:"code"       json:"code"`
	Message   string `db:"message"    json:"message"`
}

// Error codes attached to displays by the scheduling and maintenance paths.
const (
	ErrCodeContentNotConfirmed = 101 // device did not confirm the event image
	ErrCodeWakeMissed          = 102 // display cannot wake before an event start
	ErrCodeBatteryLow          = 121
)

// HasError reports whether an error with the given code is attached.
func (d *Display) HasError(code int) bool {
	for _, e := range d.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}
