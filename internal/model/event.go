package model

import "time"

// Event is one scheduled booking of a display. A multi-display submission
// produces one Event row per (display, image) pair, all sharing a GroupID.
type Event struct {
	ID         int       `db:"id"          json:"id"`
	Title      string    `db:"title"       json:"title"`
	AllDay     bool      `db:"all_day"     json:"all_day"`
	Start      time.Time `db:"start_ts"    json:"start"`
	End        time.Time `db:"end_ts"      json:"end"`
	DisplayMac string    `db:"display_mac" json:"display_mac"`
	Image      string    `db:"image"       json:"image"`
	GroupID    string    `db:"group_id"    json:"group_id"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
}

// Active reports whether now falls inside [Start, End).
func (e Event) Active(now time.Time) bool {
	return !now.Before(e.Start) && now.Before(e.End)
}

// RecurringEvent stores the rule a batch of Events was expanded from.
// Deleting it cascades to every expanded Event via the shared GroupID.
type RecurringEvent struct {
	ID      int       `db:"id"       json:"id"`
	Title   string    `db:"title"    json:"title"`
	Start   time.Time `db:"start_ts" json:"start"`
	End     time.Time `db:"end_ts"   json:"end"`
	RRule   string    `db:"rrule"    json:"rrule"`
	GroupID string    `db:"group_id" json:"group_id"`
}

// DisplayImage is one (display, image) assignment within an event submission.
type DisplayImage struct {
	DisplayMac string `json:"display_mac"`
	Image      string `json:"image"`
}
