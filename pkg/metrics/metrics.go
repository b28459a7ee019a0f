// Package metrics exposes Prometheus metrics for vbind: notification
// traffic of the reactive graph (as a reactive.Probe) and live server
// activity.
//
// Metrics collected (namespace "vbind" by default):
//   - notifications_total: cell changes by path
//   - notification_fanout: subscribers notified per change
//   - reactions_total: watcher reactions
//   - events_total: dispatched client events by type and status
//   - event_duration_seconds: event handling duration by type
//   - patches_sent_total: patches sent to clients
//   - active_sessions: open live sessions
//   - websocket_errors_total: WebSocket failures by type
//
// Every method is safe on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-go/vbind/pkg/reactive"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "vbind").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for event duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the event duration buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// Metrics holds the collectors.
type Metrics struct {
	notifications  *prometheus.CounterVec
	fanout         prometheus.Histogram
	reactions      prometheus.Counter
	events         *prometheus.CounterVec
	eventDuration  *prometheus.HistogramVec
	patchesSent    prometheus.Counter
	activeSessions prometheus.Gauge
	wsErrors       *prometheus.CounterVec
}

var _ reactive.Probe = (*Metrics)(nil)

// New registers the collectors.
func New(opts ...Option) *Metrics {
	config := Config{
		Namespace: "vbind",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "notifications_total",
			Help:        "Total number of cell changes that notified subscribers",
			ConstLabels: config.ConstLabels,
		}, []string{"path"}),

		fanout: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "notification_fanout",
			Help:        "Subscribers notified per cell change",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}),

		reactions: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "reactions_total",
			Help:        "Total number of watcher reactions",
			ConstLabels: config.ConstLabels,
		}),

		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "events_total",
			Help:        "Total number of client events dispatched",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "status"}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "event_duration_seconds",
			Help:        "Client event handling duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"type"}),

		patchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "patches_sent_total",
			Help:        "Total number of patches sent to clients",
			ConstLabels: config.ConstLabels,
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "active_sessions",
			Help:        "Number of open live sessions",
			ConstLabels: config.ConstLabels,
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Notified implements reactive.Probe.
func (m *Metrics) Notified(path string, subscribers int) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(path).Inc()
	m.fanout.Observe(float64(subscribers))
}

// Reacted implements reactive.Probe.
func (m *Metrics) Reacted(string) {
	if m == nil {
		return
	}
	m.reactions.Inc()
}

// RecordEvent records one dispatched client event.
func (m *Metrics) RecordEvent(eventType string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.events.WithLabelValues(eventType, status).Inc()
	m.eventDuration.WithLabelValues(eventType).Observe(d.Seconds())
}

// RecordPatches adds n sent patches.
func (m *Metrics) RecordPatches(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.patchesSent.Add(float64(n))
}

// SessionOpened increments the active session gauge.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

// SessionClosed decrements the active session gauge.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}

// RecordWSError counts a WebSocket failure of the given kind
// ("upgrade", "read", "write", "decode").
func (m *Metrics) RecordWSError(kind string) {
	if m == nil {
		return
	}
	m.wsErrors.WithLabelValues(kind).Inc()
}
