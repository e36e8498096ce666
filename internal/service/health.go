package service

import (
	"context"
	"sync/atomic"
	"time"

	"zenith_pc_control/internal/logger"
	"zenith_pc_control/internal/metrics"
	"zenith_pc_control/internal/models"
	"zenith_pc_control/internal/probe"
	"zenith_pc_control/internal/state"
)

// FailureThreshold is the number of consecutive probe failures that turns the
// status OFF.
const FailureThreshold = 3

// HealthMonitor probes the PC on a fixed cadence. Recovery is immediate on one
// success; failure needs FailureThreshold misses in a row.
type HealthMonitor struct {
	prober   probe.Prober
	store    *state.Store
	events   EventRecorder
	metrics  *metrics.Metrics
	log      *logger.Logger
	interval time.Duration

	failures atomic.Int32
}

func NewHealthMonitor(p probe.Prober, store *state.Store, events EventRecorder, m *metrics.Metrics, log *logger.Logger, interval time.Duration) *HealthMonitor {
	return &HealthMonitor{
		prober:   p,
		store:    store,
		events:   events,
		metrics:  m,
		log:      log,
		interval: interval,
	}
}

func (h *HealthMonitor) Run(ctx context.Context) {
	runLoop(ctx, h.interval, true, h.Tick)
}

// Tick runs one probe and applies its result.
func (h *HealthMonitor) Tick(ctx context.Context) {
	if err := h.prober.Probe(ctx); err != nil {
		n := h.failures.Add(1)
		h.metrics.Probes.WithLabelValues(metrics.ResultFailure).Inc()
		h.metrics.ProbeFailures.Set(float64(n))
		h.log.Debugw("probe_failed", "failures", n, "err", err)
		h.events.LogEvent(ctx, models.EventProbeFailed, "probe failed", map[string]any{
			"failures": n,
			"error":    err.Error(),
		})
		if n >= FailureThreshold {
			h.store.SetStatus(models.StatusOff)
		}
		return
	}

	h.failures.Store(0)
	h.metrics.Probes.WithLabelValues(metrics.ResultSuccess).Inc()
	h.metrics.ProbeFailures.Set(0)
	h.store.SetStatus(models.StatusOn)
}

// Failures is the current consecutive failure count.
func (h *HealthMonitor) Failures() int {
	return int(h.failures.Load())
}
