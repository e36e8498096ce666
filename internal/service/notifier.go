package service

import (
	"context"
	"sync"
	"time"

	"zenith_pc_control/internal/clock"
	"zenith_pc_control/internal/logger"
	"zenith_pc_control/internal/metrics"
	"zenith_pc_control/internal/models"
	"zenith_pc_control/internal/notify"
	"zenith_pc_control/internal/state"
)

// RateLimitWindow is the minimum spacing between two dispatches, shared by
// all channels.
const RateLimitWindow = 10 * time.Second

// NotificationDispatcher announces the PC status to every configured channel.
type NotificationDispatcher struct {
	store    *state.Store
	settings SettingsReader
	channels []notify.Channel
	clock    clock.Clock
	events   EventRecorder
	metrics  *metrics.Metrics
	log      *logger.Logger
	interval time.Duration

	mu       sync.Mutex
	lastSent time.Duration
	sent     bool
}

func NewNotificationDispatcher(store *state.Store, settings SettingsReader, channels []notify.Channel, clk clock.Clock, events EventRecorder, m *metrics.Metrics, log *logger.Logger, interval time.Duration) *NotificationDispatcher {
	return &NotificationDispatcher{
		store:    store,
		settings: settings,
		channels: channels,
		clock:    clk,
		events:   events,
		metrics:  m,
		log:      log,
		interval: interval,
	}
}

func (n *NotificationDispatcher) Run(ctx context.Context) {
	runLoop(ctx, n.interval, false, func(ctx context.Context) { n.Tick(ctx) })
}

// Tick announces the current status.
func (n *NotificationDispatcher) Tick(ctx context.Context) bool {
	return n.Dispatch(ctx, StatusMessage(n.store.Status()))
}

func StatusMessage(st models.DeviceStatus) string {
	return "PC status: " + st.String()
}

// Dispatch sends message to every channel with credentials, unless the last
// dispatch is within RateLimitWindow. It reports whether a dispatch happened.
func (n *NotificationDispatcher) Dispatch(ctx context.Context, message string) bool {
	n.mu.Lock()
	now := n.clock.Now()
	if n.sent && now-n.lastSent <= RateLimitWindow {
		n.mu.Unlock()
		n.metrics.NotificationsLimited.Inc()
		return false
	}
	n.lastSent = now
	n.sent = true
	n.mu.Unlock()

	s := n.settings.Get()
	delivered := 0
	for _, ch := range n.channels {
		if !ch.Enabled(s) {
			continue
		}
		if err := ch.Send(ctx, s, message); err != nil {
			n.metrics.Notifications.WithLabelValues(ch.Name(), metrics.ResultFailure).Inc()
			n.log.Warnw("notification_failed", "channel", ch.Name(), "err", err)
			continue
		}
		delivered++
		n.metrics.Notifications.WithLabelValues(ch.Name(), metrics.ResultSuccess).Inc()
	}

	if delivered > 0 {
		n.events.LogEvent(ctx, models.EventNotify, message, map[string]any{"channels": delivered})
	}
	return true
}
