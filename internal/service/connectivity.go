package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"zenith_pc_control/internal/clock"
	"zenith_pc_control/internal/logger"
	"zenith_pc_control/internal/metrics"
	"zenith_pc_control/internal/models"
	"zenith_pc_control/internal/state"

	"github.com/cenkalti/backoff/v5"
	"github.com/looplab/fsm"
)

const (
	BackoffFloor = 1 * time.Second
	BackoffCap   = 60 * time.Second

	// FallbackAfter is how long the link may stay unconnected after boot
	// before the local access point is started.
	FallbackAfter = 10 * time.Minute
)

// Link events.
const (
	evLinkUp        = "link_up"
	evLinkLost      = "link_lost"
	evAttempt       = "attempt"
	evAttemptFailed = "attempt_failed"
)

// Link is the network uplink being supervised.
type Link interface {
	Connected(ctx context.Context) (bool, error)
	Connect(ctx context.Context, ssid, password string) error
	StartFallback(ctx context.Context, name string) error
}

// ConnectivitySupervisor keeps the uplink connected with exponential backoff
// and starts the fallback access point once if the link never came up.
type ConnectivitySupervisor struct {
	link     Link
	settings SettingsReader
	store    *state.Store
	clock    clock.Clock
	events   EventRecorder
	metrics  *metrics.Metrics
	log      *logger.Logger
	interval time.Duration

	mu            sync.Mutex
	machine       *fsm.FSM
	backoff       *backoff.ExponentialBackOff
	lastAttempt   time.Duration
	retryInterval time.Duration

	everConnected atomic.Bool
	fallbackFired atomic.Bool
}

func NewConnectivitySupervisor(link Link, settings SettingsReader, store *state.Store, clk clock.Clock, events EventRecorder, m *metrics.Metrics, log *logger.Logger, interval time.Duration) *ConnectivitySupervisor {
	s := &ConnectivitySupervisor{
		link:     link,
		settings: settings,
		store:    store,
		clock:    clk,
		events:   events,
		metrics:  m,
		log:      log,
		interval: interval,
		backoff: &backoff.ExponentialBackOff{
			InitialInterval:     BackoffFloor,
			RandomizationFactor: 0,
			Multiplier:          2,
			MaxInterval:         BackoffCap,
		},
	}

	disconnected := models.Disconnected.String()
	connecting := models.Connecting.String()
	connected := models.Connected.String()

	s.machine = fsm.NewFSM(
		disconnected,
		fsm.Events{
			{Name: evLinkUp, Src: []string{disconnected, connecting}, Dst: connected},
			{Name: evLinkLost, Src: []string{connected, connecting}, Dst: disconnected},
			{Name: evAttempt, Src: []string{disconnected}, Dst: connecting},
			{Name: evAttemptFailed, Src: []string{connecting}, Dst: disconnected},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				next, err := models.ParseConnectivityState(e.Dst)
				if err != nil {
					return
				}
				s.store.SetConnectivity(next)
				s.log.Debugw("link_state", "from", e.Src, "to", e.Dst, "event", e.Event)
			},
		},
	)
	s.resetBackoffLocked()
	return s
}

func (s *ConnectivitySupervisor) Run(ctx context.Context) {
	runLoop(ctx, s.interval, true, s.Tick)
}

// Tick observes the link once and acts on it.
func (s *ConnectivitySupervisor) Tick(ctx context.Context) {
	now := s.clock.Now()

	up, err := s.link.Connected(ctx)
	if err != nil {
		s.log.Debugw("link_status_failed", "err", err)
		up = false
	}

	if up {
		s.everConnected.Store(true)
	}
	s.checkFallback(ctx, now)

	if up {
		s.onConnected(ctx)
		return
	}
	s.onDisconnected(ctx, now)
}

func (s *ConnectivitySupervisor) onConnected(ctx context.Context) {
	s.mu.Lock()
	changed := s.fire(ctx, evLinkUp)
	s.resetBackoffLocked()
	s.mu.Unlock()

	if changed {
		s.log.Infow("link_connected")
	}
}

func (s *ConnectivitySupervisor) onDisconnected(ctx context.Context, now time.Duration) {
	s.mu.Lock()
	if s.machine.Is(models.Connected.String()) {
		s.fire(ctx, evLinkLost)
		s.log.Warnw("link_lost")
	}
	due := now-s.lastAttempt >= s.retryInterval
	if s.machine.Is(models.Connecting.String()) && due {
		// the previous attempt did not come up within its window
		s.fire(ctx, evAttemptFailed)
	}
	if !due || !s.machine.Is(models.Disconnected.String()) {
		s.mu.Unlock()
		return
	}

	s.lastAttempt = now
	s.retryInterval = s.backoff.NextBackOff()
	next := s.retryInterval
	s.fire(ctx, evAttempt)
	s.mu.Unlock()

	s.metrics.ReconnectAttempts.Inc()
	s.metrics.BackoffInterval.Set(next.Seconds())

	cfg := s.settings.Get()
	s.events.LogEvent(ctx, models.EventReconnect, "reconnect attempt", map[string]any{
		"ssid":             cfg.WifiSSID,
		"next_interval_ms": next.Milliseconds(),
	})

	if err := s.link.Connect(ctx, cfg.WifiSSID, cfg.WifiPass); err != nil {
		s.log.Warnw("reconnect_failed", "err", err, "next_interval", next)
		s.mu.Lock()
		s.fire(ctx, evAttemptFailed)
		s.mu.Unlock()
	}
}

// checkFallback starts the access point once per boot when the link has
// never been connected and uptime passed FallbackAfter.
func (s *ConnectivitySupervisor) checkFallback(ctx context.Context, now time.Duration) {
	if s.everConnected.Load() || now <= FallbackAfter {
		return
	}
	if !s.fallbackFired.CompareAndSwap(false, true) {
		return
	}

	name := s.settings.Get().DeviceName
	s.metrics.FallbackActivations.Inc()
	s.log.Warnw("fallback_started", "ap_name", name, "uptime", now)
	s.events.LogEvent(ctx, models.EventFallback, "fallback access point started", map[string]any{
		"ap_name":   name,
		"uptime_ms": now.Milliseconds(),
	})

	if err := s.link.StartFallback(ctx, name); err != nil {
		s.log.Errorw("fallback_failed", "err", err)
	}
}

// fire applies event if the current state allows it. Caller holds s.mu.
func (s *ConnectivitySupervisor) fire(ctx context.Context, event string) bool {
	if s.machine.Cannot(event) {
		return false
	}
	if err := s.machine.Event(ctx, event); err != nil {
		s.log.Debugw("link_event_failed", "event", event, "err", err)
		return false
	}
	return true
}

func (s *ConnectivitySupervisor) resetBackoffLocked() {
	s.backoff.Reset()
	s.retryInterval = s.backoff.NextBackOff()
	s.metrics.BackoffInterval.Set(s.retryInterval.Seconds())
}

// Interval is the wait required before the next reconnect attempt.
func (s *ConnectivitySupervisor) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retryInterval
}

// State is the supervisor's view of the link.
func (s *ConnectivitySupervisor) State() models.ConnectivityState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, _ := models.ParseConnectivityState(s.machine.Current())
	return st
}

// FallbackActive reports whether the fallback access point was started.
func (s *ConnectivitySupervisor) FallbackActive() bool {
	return s.fallbackFired.Load()
}
