// Package metrics holds the prometheus collectors of the status engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zpc"

// Label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"

	OutcomeAccepted    = "accepted"
	OutcomeDebounced   = "debounced"
	OutcomeMaintenance = "maintenance"
	OutcomeOutputError = "output_error"
)

type Metrics struct {
	Probes               *prometheus.CounterVec
	ProbeFailures        prometheus.Gauge
	StatusTransitions    *prometheus.CounterVec
	PowerCommands        *prometheus.CounterVec
	ReconnectAttempts    prometheus.Counter
	BackoffInterval      prometheus.Gauge
	FallbackActivations  prometheus.Counter
	Notifications        *prometheus.CounterVec
	NotificationsLimited prometheus.Counter
	Broadcasts           prometheus.Counter
	UptimeSeconds        prometheus.Gauge
}

// New registers every collector on reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Probes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "probes_total",
			Help:      "Reachability probes by result.",
		}, []string{"result"}),
		ProbeFailures: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "consecutive_failures",
			Help:      "Consecutive probe failures since the last success.",
		}),
		StatusTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "status_transitions_total",
			Help:      "Device status transitions by target status.",
		}, []string{"to"}),
		PowerCommands: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "power",
			Name:      "commands_total",
			Help:      "Power commands by outcome.",
		}, []string{"outcome"}),
		ReconnectAttempts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "link",
			Name:      "reconnect_attempts_total",
			Help:      "Link reconnect attempts.",
		}),
		BackoffInterval: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "link",
			Name:      "backoff_interval_seconds",
			Help:      "Current reconnect backoff interval.",
		}),
		FallbackActivations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "link",
			Name:      "fallback_activations_total",
			Help:      "Local access-point fallback activations.",
		}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Notification deliveries by channel and result.",
		}, []string{"channel", "result"}),
		NotificationsLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "rate_limited_total",
			Help:      "Dispatch cycles skipped by the rate limiter.",
		}),
		Broadcasts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "status",
			Name:      "broadcasts_total",
			Help:      "Status snapshots published to real-time subscribers.",
		}),
		UptimeSeconds: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "status",
			Name:      "pc_uptime_seconds",
			Help:      "Accumulated time the PC was observed ON since boot.",
		}),
	}
}

// Handler serves the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
