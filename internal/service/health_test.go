package service

import (
	"context"
	"testing"

	"zenith_pc_control/internal/logger"
	"zenith_pc_control/internal/metrics"
	"zenith_pc_control/internal/models"
	"zenith_pc_control/internal/state"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHealth(p *scriptedProber, store *state.Store, rec *fakeRecorder) (*HealthMonitor, *metrics.Metrics) {
	m := newTestMetrics()
	return NewHealthMonitor(p, store, rec, m, logger.NewNop(), 0), m
}

func TestHealthMonitor_SuccessTurnsOnImmediately(t *testing.T) {
	store := state.New()
	h, _ := newHealth(&scriptedProber{}, store, &fakeRecorder{})

	h.Tick(context.Background())

	assert.Equal(t, models.StatusOn, store.Status())
	assert.Equal(t, 0, h.Failures())
}

func TestHealthMonitor_OffAfterThreeConsecutiveFailures(t *testing.T) {
	store := state.New()
	store.SetStatus(models.StatusOn)
	rec := &fakeRecorder{}
	h, m := newHealth(&scriptedProber{results: []error{errNoReply, errNoReply, errNoReply}}, store, rec)
	ctx := context.Background()

	h.Tick(ctx)
	h.Tick(ctx)
	assert.Equal(t, models.StatusOn, store.Status(), "two misses keep the status")
	assert.Equal(t, 2, h.Failures())

	h.Tick(ctx)
	assert.Equal(t, models.StatusOff, store.Status())
	assert.Equal(t, 3, h.Failures())
	assert.Equal(t, 3, rec.count(models.EventProbeFailed))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.ProbeFailures))
}

func TestHealthMonitor_SuccessResetsCounter(t *testing.T) {
	store := state.New()
	h, m := newHealth(&scriptedProber{results: []error{errNoReply, errNoReply, nil, errNoReply, errNoReply}}, store, &fakeRecorder{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		h.Tick(ctx)
	}
	require.Equal(t, 0, h.Failures())
	require.Equal(t, models.StatusOn, store.Status())

	h.Tick(ctx)
	h.Tick(ctx)
	assert.Equal(t, models.StatusOn, store.Status(), "counter restarted from zero")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Probes.WithLabelValues(metrics.ResultSuccess)))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.Probes.WithLabelValues(metrics.ResultFailure)))
}

func TestHealthMonitor_OffTransitionObservedOnce(t *testing.T) {
	store := state.New()
	store.SetStatus(models.StatusOn)

	offs := 0
	store.Subscribe(func(_, next models.DeviceStatus) {
		if next == models.StatusOff {
			offs++
		}
	})

	misses := make([]error, 6)
	for i := range misses {
		misses[i] = errNoReply
	}
	h, _ := newHealth(&scriptedProber{results: misses}, store, &fakeRecorder{})
	for range misses {
		h.Tick(context.Background())
	}

	assert.Equal(t, 1, offs)
	assert.Equal(t, 6, h.Failures())
}
