// Package metrics provides Prometheus instrumentation for the tracking pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/artemis-hunt/artemis-go/pkg/artemis/event"
)

// Identification outcomes.
const (
	OutcomeIdentified   = "identified"
	OutcomeUnidentified = "unidentified"
)

// Manager owns the pipeline metrics. A nil *Manager is valid and records
// nothing, so callers need not guard every call.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	registry       *prometheus.Registry

	// Ingestion
	bytesRead   prometheus.Counter
	linesRead   prometheus.Counter
	readErrors  prometheus.Counter
	truncations prometheus.Counter

	// Batching and parsing
	batches      prometheus.Counter
	batchSize    prometheus.Histogram
	events       *prometheus.CounterVec
	skippedLines prometheus.Counter

	// Aggregation
	patches         prometheus.Counter
	identifications *prometheus.CounterVec
	identifyLatency prometheus.Histogram
	saves           *prometheus.CounterVec
	sessionEvents   prometheus.Gauge
}

// NewManager creates a Manager with its own registry unless one is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "artemis",
		subsystem:      "tracker",
		latencyBuckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	f := promauto.With(m.registry)
	opts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}
	}

	m.bytesRead = f.NewCounter(opts("bytes_read_total", "Bytes read from the chat log."))
	m.linesRead = f.NewCounter(opts("lines_read_total", "Non-blank lines read from the chat log."))
	m.readErrors = f.NewCounter(opts("read_errors_total", "Failed reads of the chat log."))
	m.truncations = f.NewCounter(opts("truncations_total", "Detected truncations or rotations of the chat log."))

	m.batches = f.NewCounter(opts("batches_total", "Line batches flushed to the parser."))
	m.batchSize = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_size_lines",
		Help:      "Lines per flushed batch.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})
	m.events = f.NewCounterVec(opts("events_total", "Events parsed, by type."), []string{"type"})
	m.skippedLines = f.NewCounter(opts("skipped_lines_total", "Lines that matched a grammar but failed field parsing."))

	m.patches = f.NewCounter(opts("patched_events_total", "Events back-filled after a GPS fix."))
	m.identifications = f.NewCounterVec(opts("identifications_total", "Identification attempts, by outcome."), []string{"outcome"})
	m.identifyLatency = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "identify_duration_seconds",
		Help:      "Time spent identifying one kill.",
		Buckets:   m.latencyBuckets,
	})
	m.saves = f.NewCounterVec(opts("saves_total", "Session saves, by result."), []string{"result"})
	m.sessionEvents = f.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "session_events",
		Help:      "Events in the current session.",
	})
}

// Registry returns the registry the metrics are registered with.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRead records one successful read.
func (m *Manager) ObserveRead(bytes, lines int, truncated bool) {
	if m == nil {
		return
	}
	m.bytesRead.Add(float64(bytes))
	m.linesRead.Add(float64(lines))
	if truncated {
		m.truncations.Inc()
	}
}

// IncReadError records one failed read.
func (m *Manager) IncReadError() {
	if m == nil {
		return
	}
	m.readErrors.Inc()
}

// ObserveBatch records one parsed batch.
func (m *Manager) ObserveBatch(lines int, events []event.Event, skipped int) {
	if m == nil {
		return
	}
	m.batches.Inc()
	m.batchSize.Observe(float64(lines))
	for _, e := range events {
		m.events.WithLabelValues(string(e.Type())).Inc()
	}
	m.skippedLines.Add(float64(skipped))
}

// ObserveAggregate records the outcome of one AddEvents call.
func (m *Manager) ObserveAggregate(sessionEvents, patched int) {
	if m == nil {
		return
	}
	m.sessionEvents.Set(float64(sessionEvents))
	m.patches.Add(float64(patched))
}

// ObserveIdentify records one identification attempt.
func (m *Manager) ObserveIdentify(identified bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeUnidentified
	if identified {
		outcome = OutcomeIdentified
	}
	m.identifications.WithLabelValues(outcome).Inc()
	m.identifyLatency.Observe(d.Seconds())
}

// ObserveSave records one session save.
func (m *Manager) ObserveSave(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.saves.WithLabelValues(result).Inc()
}
