package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"zenith_pc_control/internal/clock"
	"zenith_pc_control/internal/logger"
	"zenith_pc_control/internal/metrics"
	"zenith_pc_control/internal/models"
	"zenith_pc_control/internal/state"
)

// Publisher fans a payload out to real-time subscribers.
type Publisher interface {
	Publish(payload []byte) int
}

// LogTail reads the end of the text log.
type LogTail interface {
	Tail(n int) (string, error)
}

// StatusAggregator accumulates PC uptime and publishes status snapshots.
//
// Only contiguous ON observations accumulate: an observation that is not ON
// forgets the previous timestamp, so the next ON period starts a fresh delta.
// The total is never reset while the process runs.
type StatusAggregator struct {
	store     *state.Store
	clock     clock.Clock
	logs      LogTail
	pub       Publisher
	metrics   *metrics.Metrics
	log       *logger.Logger
	interval  time.Duration
	tailBytes int

	mu       sync.Mutex
	uptime   time.Duration
	lastObs  time.Duration
	observed bool
}

func NewStatusAggregator(store *state.Store, clk clock.Clock, logs LogTail, pub Publisher, m *metrics.Metrics, log *logger.Logger, interval time.Duration, tailBytes int) *StatusAggregator {
	return &StatusAggregator{
		store:     store,
		clock:     clk,
		logs:      logs,
		pub:       pub,
		metrics:   m,
		log:       log,
		interval:  interval,
		tailBytes: tailBytes,
	}
}

func (a *StatusAggregator) Run(ctx context.Context) {
	runLoop(ctx, a.interval, false, a.Tick)
}

// Tick observes uptime and publishes one snapshot.
func (a *StatusAggregator) Tick(ctx context.Context) {
	a.Observe()

	snap := a.Snapshot()
	payload, err := json.Marshal(snap)
	if err != nil {
		a.log.Errorw("snapshot_encode_failed", "err", err)
		return
	}
	n := a.pub.Publish(payload)
	a.metrics.Broadcasts.Inc()
	a.log.Debugw("snapshot_published", "subscribers", n, "status", snap.PcStatus)
}

// Observe samples the status at the current clock reading.
func (a *StatusAggregator) Observe() {
	now := a.clock.Now()
	on := a.store.Status() == models.StatusOn

	a.mu.Lock()
	defer a.mu.Unlock()
	if !on {
		a.observed = false
		return
	}
	if a.observed {
		a.uptime += now - a.lastObs
	}
	a.lastObs = now
	a.observed = true
	a.metrics.UptimeSeconds.Set(a.uptime.Seconds())
}

// Uptime is the accumulated ON time.
func (a *StatusAggregator) Uptime() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.uptime
}

// Snapshot builds the broadcast payload from current state. The log tail is
// left empty when the log cannot be read.
func (a *StatusAggregator) Snapshot() models.Snapshot {
	tail, err := a.logs.Tail(a.tailBytes)
	if err != nil {
		a.log.Warnw("log_tail_failed", "err", err)
		tail = ""
	}
	return models.Snapshot{
		PcStatus:    a.store.Status(),
		DailyUptime: int64(a.Uptime() / time.Second),
		Logs:        tail,
	}
}
