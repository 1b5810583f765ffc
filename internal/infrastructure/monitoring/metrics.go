// Package monitoring provides Prometheus metrics for pipeline activity.
//
// Metrics register against an injectable prometheus.Registerer so several
// pipelines (and tests) can coexist in one process without duplicate
// registration panics.
package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Error reasons recorded against the errors counter.
const (
	ReasonStrategy      = "strategy"
	ReasonPanic         = "panic"
	ReasonOutputTimeout = "output_timeout"
	ReasonNoStrategy    = "no_strategy"
)

// Queue labels for the depth gauge.
const (
	QueueInput  = "input"
	QueueOutput = "output"
)

// Metrics holds all Prometheus metrics for one pipeline.
type Metrics struct {
	ItemsSubmitted prometheus.Counter
	ItemsProcessed prometheus.Counter
	Errors         *prometheus.CounterVec
	ApplyDuration  *prometheus.HistogramVec
	QueueDepth     *prometheus.GaugeVec
	WorkersActive  prometheus.Gauge
	Uptime         prometheus.Gauge

	startTime time.Time

	// Running totals for the JSON snapshot.
	mu       sync.RWMutex
	snapshot Snapshot
}

// Snapshot holds current metric values for the JSON API.
type Snapshot struct {
	ItemsSubmitted uint64  `json:"items_submitted"`
	ItemsProcessed uint64  `json:"items_processed"`
	TotalErrors    uint64  `json:"total_errors"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
}

// New creates a metrics collector registered against reg. A nil reg gets a
// private registry, which keeps the metrics collectable but unexported.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		startTime: time.Now(),

		ItemsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "procflow_items_submitted_total",
			Help: "Total number of items accepted into the input queue",
		}),
		ItemsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "procflow_items_processed_total",
			Help: "Total number of items transformed and delivered to the output queue",
		}),
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "procflow_errors_total",
				Help: "Total number of per-item processing errors",
			},
			[]string{"reason"},
		),
		ApplyDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "procflow_apply_duration_seconds",
				Help:    "Strategy apply duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"strategy"},
		),
		QueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "procflow_queue_depth",
				Help: "Current number of items in each pipeline queue",
			},
			[]string{"queue"},
		),
		WorkersActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "procflow_workers_active",
			Help: "Number of live worker goroutines",
		}),
		Uptime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "procflow_uptime_seconds",
			Help: "Seconds since the metrics collector was created",
		}),
	}
}

// RecordSubmit records an item accepted into the input queue.
func (m *Metrics) RecordSubmit() {
	m.ItemsSubmitted.Inc()
	m.mu.Lock()
	m.snapshot.ItemsSubmitted++
	m.mu.Unlock()
}

// RecordProcessed records a successful transform and delivery.
func (m *Metrics) RecordProcessed(strategy string, duration time.Duration) {
	m.ItemsProcessed.Inc()
	m.ApplyDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	m.mu.Lock()
	m.snapshot.ItemsProcessed++
	m.mu.Unlock()
}

// RecordError records a per-item processing error.
func (m *Metrics) RecordError(reason string) {
	m.Errors.WithLabelValues(reason).Inc()
	m.mu.Lock()
	m.snapshot.TotalErrors++
	m.mu.Unlock()
}

// SetQueueDepth sets the depth gauge for the named queue.
func (m *Metrics) SetQueueDepth(queue string, depth int) {
	m.QueueDepth.WithLabelValues(queue).Set(float64(depth))
}

// SetWorkersActive sets the live worker count.
func (m *Metrics) SetWorkersActive(count int) {
	m.WorkersActive.Set(float64(count))
}

// GetSnapshot returns current totals for the JSON API and refreshes the
// uptime gauge.
func (m *Metrics) GetSnapshot() Snapshot {
	uptime := time.Since(m.startTime).Seconds()
	m.Uptime.Set(uptime)

	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := m.snapshot
	snap.UptimeSeconds = uptime
	return snap
}
