package packets

import (
	"time"

	"github.com/inkfleet/inkfleet/internal/model"
)

// DisplayResponse mirrors model.Display but flattens times to RFC3339.
type DisplayResponse struct {
	ID                int                  `json:"id"`
	MacAddress        string               `json:"mac_address"`
	Name              *string              `json:"name"`
	Brand             *string              `json:"brand"`
	Model             *string              `json:"model"`
	Width             int                  `json:"width"`
	Height            int                  `json:"height"`
	Orientation       string               `json:"orientation"`
	DisplayType       *string              `json:"display_type"`
	Technology        *string              `json:"technology"`
	Filename          string               `json:"filename"`
	DefaultFilename   string               `json:"default_filename"`
	FilenameApp       string               `json:"filename_app"`
	DoSwitch          bool                 `json:"do_switch"`
	BatteryPercentage *int                 `json:"battery_percentage"`
	WakeTime          string               `json:"wake_time"`
	NextEventTime     *string              `json:"next_event_time"`
	LastSwitch        *string              `json:"last_switch"`
	Errors            []model.DisplayError `json:"errors"`
}

func NewDisplayResponse(d *model.Display) DisplayResponse {
	return DisplayResponse{
		ID:                d.ID,
		MacAddress:        d.MacAddress,
		Name:              d.Name,
		Brand:             d.Brand,
		Model:             d.Model,
		Width:             d.Width,
		Height:            d.Height,
		Orientation:       d.Orientation,
		DisplayType:       d.DisplayType,
		Technology:        d.Technology,
		Filename:          d.Filename,
		DefaultFilename:   d.DefaultFilename,
		FilenameApp:       d.FilenameApp,
		DoSwitch:          d.DoSwitch,
		BatteryPercentage: d.BatteryPercentage,
		WakeTime:          d.WakeTime.Format(time.RFC3339),
		NextEventTime:     formatOptional(d.NextEventTime),
		LastSwitch:        formatOptional(d.LastSwitch),
		Errors:            d.Errors,
	}
}

// AdmissionResponse reports a saved event batch; Warnings carries the macs
// that got a wake-collision flag.
type AdmissionResponse struct {
	GroupID  string        `json:"group_id"`
	Saved    []model.Event `json:"saved"`
	Warnings []string      `json:"warnings,omitempty"`
}

type UploadResponse struct {
	URL string `json:"url"`
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
