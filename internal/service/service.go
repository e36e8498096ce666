package service

import (
	"context"
	"fmt"
	"time"

	"zenith_pc_control/internal/clock"
	"zenith_pc_control/internal/gpio"
	"zenith_pc_control/internal/logger"
	"zenith_pc_control/internal/metrics"
	"zenith_pc_control/internal/models"
	"zenith_pc_control/internal/notify"
	"zenith_pc_control/internal/probe"
	"zenith_pc_control/internal/repository"
	"zenith_pc_control/internal/state"
)

// EventRecorder writes one entry to the device history. It never fails from
// the caller's point of view.
type EventRecorder interface {
	LogEvent(ctx context.Context, typ, message string, meta any)
}

// SettingsReader returns the current device settings.
type SettingsReader interface {
	Get() models.Settings
}

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
	Claimed() (bool, error)
}

// Power accepts power commands from the API and the cloud.
type Power interface {
	Command(ctx context.Context, on bool) error
	Desired() bool
}

// Monitoring exposes read-only device state.
type Monitoring interface {
	GetState(ctx context.Context) (models.DeviceState, error)
	Snapshot() models.Snapshot
}

// EventLog exposes the text log and the filtered event history.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.DeviceEvent, error)
	ReadLog() (string, error)
	ReadOldLog() (string, error)
}

// Settings edits the persisted device settings.
type Settings interface {
	Redacted() models.Settings
	Update(ctx context.Context, p SettingsPatch) (models.Settings, error)
	Backup() ([]byte, error)
	Restore(ctx context.Context, payload []byte) (models.Settings, error)
}

// Worker is a periodic engine task. Stop it by canceling ctx.
type Worker interface {
	Run(ctx context.Context)
}

// Intervals are the worker cadences.
type Intervals struct {
	Health       time.Duration
	Connectivity time.Duration
	Indicator    time.Duration
	Aggregator   time.Duration
	Notifier     time.Duration
}

// Deps are the collaborators built by main.
type Deps struct {
	Store     *state.Store
	Clock     clock.Clock
	Settings  SettingsStore
	Prober    probe.Prober
	Link      Link
	PowerLine gpio.Output
	Display   Display
	Channels  []notify.Channel
	Publisher Publisher
	Metrics   *metrics.Metrics
	Log       *logger.Logger

	SigningKey string
	TokenTTL   time.Duration
	Intervals  Intervals
	TailBytes  int
}

// Service aggregates the API-facing services and the engine workers.
type Service struct {
	Authorization
	Power
	Monitoring
	EventLog
	Settings

	Health       *HealthMonitor
	Connectivity *ConnectivitySupervisor
	Actuator     *PowerActuator
	Aggregator   *StatusAggregator
	Indicator    *Indicator
	Notifier     *NotificationDispatcher

	store     *state.Store
	stateRepo repository.StateRepo
	events    EventRecorder
	settings  *SettingsService
	metrics   *metrics.Metrics
	log       *logger.Logger
}

// NewService wires the repository layer and the hardware adapters into the
// engine. The settings are applied to the shared state before returning.
func NewService(repos *repository.Repository, d Deps) *Service {
	events := NewEventLogService(repos.EventRepo, repos.Logs, d.Log.Named("events"))
	settings := NewSettingsService(d.Settings, d.Store, events, d.Log.Named("settings"))
	settings.Apply()

	health := NewHealthMonitor(d.Prober, d.Store, events, d.Metrics, d.Log.Named("health"), d.Intervals.Health)
	conn := NewConnectivitySupervisor(d.Link, d.Settings, d.Store, d.Clock, events, d.Metrics, d.Log.Named("link"), d.Intervals.Connectivity)
	power := NewPowerActuator(d.PowerLine, d.Store, d.Clock, repos.StateRepo, events, d.Metrics, d.Log.Named("power"))
	agg := NewStatusAggregator(d.Store, d.Clock, repos.Logs, d.Publisher, d.Metrics, d.Log.Named("status"), d.Intervals.Aggregator, d.TailBytes)
	ind := NewIndicator(d.Store, d.Display, d.Log.Named("indicator"), d.Intervals.Indicator)
	notifier := NewNotificationDispatcher(d.Store, d.Settings, d.Channels, d.Clock, events, d.Metrics, d.Log.Named("notify"), d.Intervals.Notifier)

	s := &Service{
		Authorization: NewAuthService(repos.Auth, d.SigningKey, d.TokenTTL),
		Power:         power,
		Monitoring:    NewMonitoringService(repos.StateRepo, d.Store, health, conn, power, agg, ind),
		EventLog:      events,
		Settings:      settings,

		Health:       health,
		Connectivity: conn,
		Actuator:     power,
		Aggregator:   agg,
		Indicator:    ind,
		Notifier:     notifier,

		store:     d.Store,
		stateRepo: repos.StateRepo,
		events:    events,
		settings:  settings,
		metrics:   d.Metrics,
		log:       d.Log,
	}
	d.Store.Subscribe(s.onStatusChange)
	return s
}

// Workers returns the periodic tasks in start order.
func (s *Service) Workers() []Worker {
	return []Worker{s.Health, s.Connectivity, s.Indicator, s.Aggregator, s.Notifier}
}

// RecoverPower re-applies the last accepted power level when power recovery
// is enabled in the settings.
func (s *Service) RecoverPower(ctx context.Context) error {
	if !s.settings.Get().PowerRecoveryEnabled {
		return nil
	}
	return s.Actuator.Recover(ctx)
}

func (s *Service) onStatusChange(prev, next models.DeviceStatus) {
	ctx := context.Background()
	s.metrics.StatusTransitions.WithLabelValues(next.String()).Inc()
	s.log.Infow("status_changed", "from", prev, "to", next)
	s.events.LogEvent(ctx, models.EventStatusChange, fmt.Sprintf("PC status %s -> %s", prev, next), map[string]any{
		"from": prev.String(),
		"to":   next.String(),
	})

	if err := s.stateRepo.SaveStatus(ctx, next, time.Now()); err != nil {
		s.log.Warnw("status_persist_failed", "err", err)
	}
}
