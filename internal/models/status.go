package models

import "fmt"

// DeviceStatus is the reachability status of the controlled PC.
type DeviceStatus int32

const (
	StatusOff DeviceStatus = iota
	StatusOn
	// StatusError is reserved for fatal conditions raised outside the engine.
	StatusError
)

func (s DeviceStatus) String() string {
	switch s {
	case StatusOn:
		return "ON"
	case StatusError:
		return "Error"
	default:
		return "OFF"
	}
}

func (s DeviceStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *DeviceStatus) UnmarshalText(b []byte) error {
	v, err := ParseDeviceStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseDeviceStatus accepts the wire names ON, OFF and Error.
func ParseDeviceStatus(s string) (DeviceStatus, error) {
	switch s {
	case "ON":
		return StatusOn, nil
	case "OFF", "":
		return StatusOff, nil
	case "Error":
		return StatusError, nil
	}
	return StatusOff, fmt.Errorf("unknown device status %q", s)
}

// ConnectivityState is derived from the network link.
type ConnectivityState int32

const (
	Disconnected ConnectivityState = iota
	Connecting
	Connected
)

func (c ConnectivityState) String() string {
	switch c {
	case Connecting:
		return "CONNECTING"
	case Connected:
		return "CONNECTED"
	default:
		return "DISCONNECTED"
	}
}

func (c ConnectivityState) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ParseConnectivityState is the inverse of ConnectivityState.String.
func ParseConnectivityState(s string) (ConnectivityState, error) {
	switch s {
	case "DISCONNECTED":
		return Disconnected, nil
	case "CONNECTING":
		return Connecting, nil
	case "CONNECTED":
		return Connected, nil
	}
	return Disconnected, fmt.Errorf("unknown connectivity state %q", s)
}

// IndicatorSignal is the single visual signal shown by the status indicator.
type IndicatorSignal string

const (
	SignalOff         IndicatorSignal = "off"
	SignalAlert       IndicatorSignal = "alert"
	SignalMaintenance IndicatorSignal = "maintenance"
	SignalBlink       IndicatorSignal = "blink"
	SignalConnected   IndicatorSignal = "connected"
)
