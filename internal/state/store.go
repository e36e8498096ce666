// Package state is the single source of truth for the device status shared
// by the engine workers. Every field is an atomic holder; readers tolerate
// staleness and writers are last-write-wins. Status transitions are published
// to subscribers instead of being polled.
package state

import (
	"sync"
	"sync/atomic"

	"zenith_pc_control/internal/models"
)

// StatusListener is called after a status transition, outside any lock.
type StatusListener func(prev, next models.DeviceStatus)

type Store struct {
	status       atomic.Int32
	powerCommand atomic.Bool
	maintenance  atomic.Bool
	connectivity atomic.Int32

	mu        sync.RWMutex
	listeners []StatusListener
}

// New returns the boot defaults: OFF, no power command, no maintenance,
// disconnected.
func New() *Store {
	s := &Store{}
	s.status.Store(int32(models.StatusOff))
	s.connectivity.Store(int32(models.Disconnected))
	return s
}

func (s *Store) Status() models.DeviceStatus {
	return models.DeviceStatus(s.status.Load())
}

// SetStatus stores next and reports whether it changed the value. Exactly one
// caller observes each transition because the swap is atomic.
func (s *Store) SetStatus(next models.DeviceStatus) bool {
	prev := models.DeviceStatus(s.status.Swap(int32(next)))
	if prev == next {
		return false
	}

	s.mu.RLock()
	listeners := make([]StatusListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(prev, next)
	}
	return true
}

// Subscribe registers fn for every future status transition.
func (s *Store) Subscribe(fn StatusListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) PowerCommand() bool          { return s.powerCommand.Load() }
func (s *Store) SetPowerCommand(on bool)     { s.powerCommand.Store(on) }
func (s *Store) Maintenance() bool           { return s.maintenance.Load() }
func (s *Store) SetMaintenance(enabled bool) { s.maintenance.Store(enabled) }

func (s *Store) Connectivity() models.ConnectivityState {
	return models.ConnectivityState(s.connectivity.Load())
}

// SetConnectivity stores next and returns the previous state.
func (s *Store) SetConnectivity(next models.ConnectivityState) models.ConnectivityState {
	return models.ConnectivityState(s.connectivity.Swap(int32(next)))
}
