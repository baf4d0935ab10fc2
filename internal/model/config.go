package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Weekday names used as keys of Config.WeekdayWindows.
var Weekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Config is the single fleet-wide scheduling configuration row. Reads and
// writes always target the one row, creating it with defaults if absent.
type Config struct {
	ID                int  `db:"id"                  json:"id"`
	WakeIntervalDay   int  `db:"wake_interval_day"   json:"wake_interval_day"`   // minutes
	WakeIntervalNight *int `db:"wake_interval_night" json:"wake_interval_night"` // minutes
	LeadTime          int  `db:"lead_time"           json:"lead_time"`           // minutes
	FollowUpTime      int  `db:"follow_up_time"      json:"follow_up_time"`      // minutes
	DeleteAfterDays   int  `db:"delete_after_days"   json:"delete_after_days"`

	// WeekdayWindows is loaded from config_weekday_windows keyed by weekday
	// name; it is not a column.
	WeekdayWindows map[string]WeekdayWindow `db:"-" json:"weekday_windows"`
}

// WeekdayWindow is the duty-cycle window for one weekday. Start and End hold
// only the time of day; the date part is ignored.
type WeekdayWindow struct {
	Enabled bool      `db:"enabled"    json:"enabled"`
	Start   TimeOfDay `db:"start_time" json:"start"`
	End     TimeOfDay `db:"end_time"   json:"end"`
}

// TimeOfDay is a clock time without a date, stored as a Postgres TIME column.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// At anchors the clock time on the given date in that date's location.
func (t TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour, t.Minute, t.Second, 0, date.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Value implements driver.Valuer so sqlx can bind TIME columns.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan implements sql.Scanner. lib/pq hands TIME columns over as either a
// string or a time.Time depending on the driver path.
func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = TimeOfDay{}
		return nil
	case time.Time:
		t.Hour, t.Minute, t.Second = v.Hour(), v.Minute(), v.Second()
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

func (t *TimeOfDay) parse(s string) error {
	parsed, err := time.Parse("15:04:05", s)
	if err != nil {
		return fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	t.Hour, t.Minute, t.Second = parsed.Hour(), parsed.Minute(), parsed.Second()
	return nil
}

// MarshalJSON emits the "HH:MM:SS" form instead of the struct fields.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON accepts "HH:MM:SS" and "HH:MM".
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid time of day %s", s)
	}
	s = s[1 : len(s)-1]
	if len(s) == 5 {
		s += ":00"
	}
	return t.parse(s)
}
