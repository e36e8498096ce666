package service

import (
	"context"
	"time"

	"zenith_pc_control/internal/models"
	"zenith_pc_control/internal/repository"
	"zenith_pc_control/internal/state"
)

// MonitoringService composes the read-only device view from the live engine
// state and the persisted record.
type MonitoringService struct {
	stateRepo    repository.StateRepo
	store        *state.Store
	health       *HealthMonitor
	connectivity *ConnectivitySupervisor
	power        *PowerActuator
	aggregator   *StatusAggregator
	indicator    *Indicator
}

func NewMonitoringService(stateRepo repository.StateRepo, store *state.Store, health *HealthMonitor, connectivity *ConnectivitySupervisor, power *PowerActuator, aggregator *StatusAggregator, indicator *Indicator) *MonitoringService {
	return &MonitoringService{
		stateRepo:    stateRepo,
		store:        store,
		health:       health,
		connectivity: connectivity,
		power:        power,
		aggregator:   aggregator,
		indicator:    indicator,
	}
}

// GetState returns the current device view. LastChangedAt comes from the
// persisted record and stays zero until something was saved.
func (s *MonitoringService) GetState(ctx context.Context) (models.DeviceState, error) {
	rec, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.DeviceState{}, err
	}

	return models.DeviceState{
		PcStatus:          s.store.Status(),
		PcPower:           s.power.Desired(),
		PowerCommand:      s.store.PowerCommand(),
		MaintenanceMode:   s.store.Maintenance(),
		Connectivity:      s.store.Connectivity(),
		Indicator:         s.indicator.Current(),
		UptimeSeconds:     int64(s.aggregator.Uptime() / time.Second),
		ProbeFailures:     s.health.Failures(),
		BackoffIntervalMs: s.connectivity.Interval().Milliseconds(),
		FallbackActive:    s.connectivity.FallbackActive(),
		LastChangedAt:     toUTC(rec.UpdatedAt),
	}, nil
}

// Snapshot returns the same payload the real-time stream carries.
func (s *MonitoringService) Snapshot() models.Snapshot {
	return s.aggregator.Snapshot()
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
