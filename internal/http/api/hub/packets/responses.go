package packets

// WakeResponse tells the device when to check in again and what to show
// until then. CurrentTime lets clockless devices sleep relative durations.
type WakeResponse struct {
	WakeTime    string `json:"wake_time"`
	Filename    string `json:"filename"`
	DoSwitch    bool   `json:"do_switch"`
	CurrentTime string `json:"current_time"`
}

type TimeResponse struct {
	CurrentTime string `json:"current_time"`
}
