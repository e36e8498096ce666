package models

import "time"

// Snapshot is the immutable status aggregate pushed to real-time subscribers.
type Snapshot struct {
	PcStatus    DeviceStatus `json:"pcStatus"`
	DailyUptime int64        `json:"dailyUptime"` // seconds
	Logs        string       `json:"logs"`
}

// DeviceRecord is the persisted row used for power recovery.
type DeviceRecord struct {
	ID        int          `json:"id"`
	PcStatus  DeviceStatus `json:"pc_status"`
	PcPower   bool         `json:"pc_power"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// DeviceState is the full status view served by the REST API.
type DeviceState struct {
	PcStatus          DeviceStatus      `json:"pc_status"`
	PcPower           bool              `json:"pc_power"`      // last accepted power level
	PowerCommand      bool              `json:"power_command"` // last requested power level
	MaintenanceMode   bool              `json:"maintenance_mode"`
	Connectivity      ConnectivityState `json:"connectivity"`
	Indicator         IndicatorSignal   `json:"indicator"`
	UptimeSeconds     int64             `json:"uptime_seconds"`
	ProbeFailures     int               `json:"probe_failures"`
	BackoffIntervalMs int64             `json:"backoff_interval_ms"`
	FallbackActive    bool              `json:"fallback_active"`
	LastChangedAt     time.Time         `json:"last_changed_at,omitempty"`
}
