package models

import "time"

// Event types recorded in the device history.
const (
	EventProbeFailed   = "PROBE_FAILED"
	EventStatusChange  = "STATUS_CHANGE"
	EventPower         = "POWER"
	EventPowerRejected = "POWER_REJECTED"
	EventReconnect     = "RECONNECT"
	EventFallback      = "FALLBACK"
	EventNotify        = "NOTIFY"
	EventConfig        = "CONFIG"
)

// DeviceEvent is a single log entry.
type DeviceEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
