package packets

import (
	"time"

	"github.com/inkfleet/inkfleet/internal/model"
)

type CreateDisplayRequest struct {
	MacAddress      string  `json:"mac_address" binding:"required"`
	Name            *string `json:"name"`
	Brand           *string `json:"brand"`
	Model           *string `json:"model"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	Orientation     string  `json:"orientation"`
	DisplayType     *string `json:"display_type"`
	DefaultFilename string  `json:"default_filename"`
}

type UpdateDisplayRequest struct {
	Name            *string `json:"name"`
	Brand           *string `json:"brand"`
	Model           *string `json:"model"`
	Width           *int    `json:"width"`
	Height          *int    `json:"height"`
	Orientation     *string `json:"orientation"`
	DisplayType     *string `json:"display_type"`
	DefaultFilename *string `json:"default_filename"`
}

type SaveConfigRequest struct {
	WakeIntervalDay   int                            `json:"wake_interval_day" binding:"required"`
	WakeIntervalNight *int                           `json:"wake_interval_night"`
	LeadTime          int                            `json:"lead_time"`
	FollowUpTime      int                            `json:"follow_up_time"`
	DeleteAfterDays   int                            `json:"delete_after_days"`
	WeekdayWindows    map[string]model.WeekdayWindow `json:"weekday_windows"`
}

type SubmitContentRequest struct {
	DisplayMac string          `json:"display_mac" binding:"required"`
	TypeKey    string          `json:"type_key"    binding:"required"`
	EventStart *time.Time      `json:"event_start"`
	EventEnd   *time.Time      `json:"event_end"`
	Fields     model.FieldMap  `json:"fields"`
	SubItems   []model.SubItem `json:"sub_items"`
}

type CreateTemplateRequest struct {
	TypeKey     string `json:"type_key"    binding:"required"`
	Name        string `json:"name"        binding:"required"`
	Description string `json:"description"`
	Orientation string `json:"orientation"`
	Width       int    `json:"width"       binding:"required"`
	Height      int    `json:"height"      binding:"required"`
	SVGContent  string `json:"svg_content" binding:"required"`
}

type UpdateTemplateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Orientation *string `json:"orientation"`
	SVGContent  *string `json:"svg_content"`
}

type UpsertTemplateTypeRequest struct {
	TypeKey string `json:"type_key" binding:"required"`
	Label   string `json:"label"    binding:"required"`
}
