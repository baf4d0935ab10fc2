package packets

// InitiateRequest is the first call of an app-based display after boot.
type InitiateRequest struct {
	Mac         string `json:"mac" binding:"required"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Orientation string `json:"orientation"`
}

// SwitchRequest confirms which image the device is actually showing.
type SwitchRequest struct {
	Filename string `json:"filename" binding:"required"`
}

type BatteryRequest struct {
	Percentage int `json:"percentage" binding:"min=0,max=100"`
}
