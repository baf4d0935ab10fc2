package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Template type keys known to the renderer. Anything else falls back to the
// passthrough strategy.
const (
	TemplateDoorSign    = "door-sign"
	TemplateEventBoard  = "event-board"
	TemplateNoticeBoard = "notice-board"
	TemplateRoomBooking = "room-booking"
	TemplateDefault     = "default"
)

// TemplateType is one entry of the template-type catalog.
type TemplateType struct {
	ID      int    `db:"id"       json:"id"`
	TypeKey string `db:"type_key" json:"type_key"`
	Label   string `db:"label"    json:"label"`
}

// TemplateDefinition is the raw SVG markup for one (type, size) variant.
// The same logical type may exist in several sizes; the key is immutable
// once created, the content fields are editable.
type TemplateDefinition struct {
	ID          int       `db:"id"           json:"id"`
	TypeKey     string    `db:"type_key"     json:"type_key"`
	Name        string    `db:"name"         json:"name"`
	Description string    `db:"description"  json:"description"`
	Orientation string    `db:"orientation"  json:"orientation"`
	Width       int       `db:"width"        json:"width"`
	Height      int       `db:"height"       json:"height"`
	SVGContent  string    `db:"svg_content"  json:"svg_content"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updated_at"`
}

// FieldMap is the free-form field payload of a DisplayContent row, stored
// as a jsonb column.
type FieldMap map[string]any

// DisplayContent is the current content of one display for one template
// type: a field map plus an ordered list of sub-items, optionally bounded
// by a validity window. One row per (display_mac, type_key).
type DisplayContent struct {
	ID         int        `db:"id"          json:"id"`
	TemplateID int        `db:"template_id" json:"template_id"`
	TypeKey    string     `db:"type_key"    json:"type_key"`
	DisplayMac string     `db:"display_mac" json:"display_mac"`
	EventStart *time.Time `db:"event_start" json:"event_start"`
	EventEnd   *time.Time `db:"event_end"   json:"event_end"`
	Fields     FieldMap   `db:"fields"      json:"fields"`
	UpdatedAt  time.Time  `db:"updated_at"  json:"updated_at"`

	// SubItems is loaded from display_content_items ordered by position;
	// it is not a column.
	SubItems []SubItem `db:"-" json:"sub_items"`
}

// SubItem is one entry of a display's content: a person on a door sign, an
// event on a board, a booking slot. Owned exclusively by its parent row.
type SubItem struct {
	ID          int        `db:"id"           json:"id"`
	ContentID   int        `db:"content_id"   json:"-"`
	Position    int        `db:"position"     json:"position"`
	Title       string     `db:"title"        json:"title"`
	Start       *time.Time `db:"start_ts"     json:"start"`
	End         *time.Time `db:"end_ts"       json:"end"`
	Highlighted bool       `db:"highlighted"  json:"highlighted"`
	Busy        bool       `db:"busy"         json:"busy"`
	AllDay      bool       `db:"all_day"      json:"all_day"`
	QRPayload   string     `db:"qr_payload"   json:"qr_payload"`
}

// Expired reports whether the sub-item's own end has elapsed.
func (s SubItem) Expired(now time.Time) bool {
	return s.End != nil && !s.End.After(now)
}

// SubItemHistory is an archived sub-item, written before event-board and
// room-booking entries are removed by the maintenance sweep.
type SubItemHistory struct {
	ID          int        `db:"id"           json:"id"`
	TypeKey     string     `db:"type_key"     json:"type_key"`
	DisplayMac  string     `db:"display_mac"  json:"display_mac"`
	Position    int        `db:"position"     json:"position"`
	Title       string     `db:"title"        json:"title"`
	Start       *time.Time `db:"start_ts"     json:"start"`
	End         *time.Time `db:"end_ts"       json:"end"`
	Highlighted bool       `db:"highlighted"  json:"highlighted"`
	Busy        bool       `db:"busy"         json:"busy"`
	QRPayload   string     `db:"qr_payload"   json:"qr_payload"`
	ExpiredAt   time.Time  `db:"expired_at"   json:"expired_at"`
}

// Value / Scan let sqlx move FieldMap through a jsonb column.
func (f FieldMap) Value() (driver.Value, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f)
}

func (f *FieldMap) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*f = FieldMap{}
		return nil
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("cannot scan %T into FieldMap", src)
	}
}
