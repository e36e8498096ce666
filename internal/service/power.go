package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"zenith_pc_control/internal/clock"
	"zenith_pc_control/internal/gpio"
	"zenith_pc_control/internal/logger"
	"zenith_pc_control/internal/metrics"
	"zenith_pc_control/internal/models"
	"zenith_pc_control/internal/repository"
	"zenith_pc_control/internal/state"
)

// DebounceInterval is the minimum spacing between two physical pulses.
const DebounceInterval = 2 * time.Second

var (
	ErrMaintenanceMode = errors.New("power command rejected: maintenance mode active")
	ErrDebounced       = errors.New("power command rejected: debounce interval not elapsed")
)

// PowerActuator drives the power line. Every caller (REST, cloud, boot
// recovery) goes through SetPower, which serializes the debounce gate.
type PowerActuator struct {
	out       gpio.Output
	store     *state.Store
	clock     clock.Clock
	stateRepo repository.StateRepo
	events    EventRecorder
	metrics   *metrics.Metrics
	log       *logger.Logger

	mu        sync.Mutex
	lastPulse time.Duration
	pulsed    bool

	desired atomic.Bool

	hooksMu   sync.RWMutex
	onApplied []func(on bool)
}

func NewPowerActuator(out gpio.Output, store *state.Store, clk clock.Clock, stateRepo repository.StateRepo, events EventRecorder, m *metrics.Metrics, log *logger.Logger) *PowerActuator {
	return &PowerActuator{
		out:       out,
		store:     store,
		clock:     clk,
		stateRepo: stateRepo,
		events:    events,
		metrics:   m,
		log:       log,
	}
}

// Command records the requested level as the power command and applies it.
func (p *PowerActuator) Command(ctx context.Context, on bool) error {
	p.store.SetPowerCommand(on)
	return p.SetPower(ctx, on)
}

// SetPower drives the output to on unless maintenance mode is active or the
// last accepted pulse is younger than DebounceInterval.
func (p *PowerActuator) SetPower(ctx context.Context, on bool) error {
	if p.store.Maintenance() {
		p.reject(ctx, on, metrics.OutcomeMaintenance, ErrMaintenanceMode)
		return ErrMaintenanceMode
	}

	p.mu.Lock()
	now := p.clock.Now()
	if p.pulsed && now-p.lastPulse < DebounceInterval {
		p.mu.Unlock()
		p.reject(ctx, on, metrics.OutcomeDebounced, ErrDebounced)
		return ErrDebounced
	}
	p.lastPulse = now
	p.pulsed = true
	err := p.out.Set(on)
	if err == nil {
		p.desired.Store(on)
	}
	p.mu.Unlock()

	if err != nil {
		p.metrics.PowerCommands.WithLabelValues(metrics.OutcomeOutputError).Inc()
		p.log.Errorw("power_output_failed", "on", on, "err", err)
		return fmt.Errorf("drive power line: %w", err)
	}

	p.metrics.PowerCommands.WithLabelValues(metrics.OutcomeAccepted).Inc()
	p.log.Infow("power_applied", "on", on)
	p.events.LogEvent(ctx, models.EventPower, fmt.Sprintf("power %s", onOff(on)), map[string]any{"on": on})

	rec := models.DeviceRecord{PcStatus: p.store.Status(), PcPower: on}
	if err := p.stateRepo.Save(ctx, rec); err != nil {
		p.log.Warnw("power_persist_failed", "err", err)
	}

	p.hooksMu.RLock()
	hooks := append([]func(bool){}, p.onApplied...)
	p.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn(on)
	}
	return nil
}

func (p *PowerActuator) reject(ctx context.Context, on bool, outcome string, reason error) {
	p.metrics.PowerCommands.WithLabelValues(outcome).Inc()
	p.log.Infow("power_rejected", "on", on, "reason", outcome)
	p.events.LogEvent(ctx, models.EventPowerRejected, reason.Error(), map[string]any{"on": on, "reason": outcome})
}

// Desired is the last level actually applied to the output.
func (p *PowerActuator) Desired() bool {
	return p.desired.Load()
}

// OnApplied registers fn to run after every accepted command.
func (p *PowerActuator) OnApplied(fn func(on bool)) {
	p.hooksMu.Lock()
	p.onApplied = append(p.onApplied, fn)
	p.hooksMu.Unlock()
}

// Recover re-applies the last persisted power level. It is a no-op when
// nothing was persisted.
func (p *PowerActuator) Recover(ctx context.Context) error {
	rec, err := p.stateRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load power state: %w", err)
	}
	if rec.ID == 0 {
		return nil
	}
	p.log.Infow("power_recovery", "on", rec.PcPower)
	return p.Command(ctx, rec.PcPower)
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
