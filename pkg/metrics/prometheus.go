// Package metrics provides Prometheus metrics for the matchpulse pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingest
	ticksIngested  prometheus.Counter
	ticksMalformed prometheus.Counter

	// Composition and publication
	snapshotsComposed prometheus.Counter
	snapshotsEmitted  prometheus.Counter
	snapshotsDropped  prometheus.Counter
	emitRatio         prometheus.Gauge
	composeLatency    prometheus.Histogram

	// Event windowing
	eventsEmitted   prometheus.Counter
	eventsDuplicate prometheus.Counter
	eventsInvalid   prometheus.Counter
	ledgerSize      prometheus.Gauge

	// Transport
	transportResets prometheus.Counter
	playbackSpeed   prometheus.Gauge

	// Analytics
	insightFrames     prometheus.Counter
	transitionsByKind *prometheus.CounterVec

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global manager on a custom registry so default Go collectors stay out.
var globalManager *Manager                     //nolint:gochecknoglobals // singleton metrics manager
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "matchpulse",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.ticksIngested = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ticks_ingested_total",
		Help:      "Total number of simulator ticks accepted into the ring buffers",
	})
	m.ticksMalformed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ticks_malformed_total",
		Help:      "Total number of ticks dropped as malformed or empty",
	})

	m.snapshotsComposed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshots_composed_total",
		Help:      "Total number of snapshots assembled from ring buffers",
	})
	m.snapshotsEmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshots_emitted_total",
		Help:      "Total number of snapshots published past the delta filter",
	})
	m.snapshotsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshots_dropped_total",
		Help:      "Total number of snapshots suppressed by the delta filter",
	})
	m.emitRatio = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_emit_ratio",
		Help:      "emit / (emit + drop) for the delta filter",
	})
	m.composeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "compose_latency_milliseconds",
		Help:      "Snapshot composition latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.eventsEmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_emitted_total",
		Help:      "Total number of windowed events attached to snapshots",
	})
	m.eventsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_duplicate_total",
		Help:      "Total number of events suppressed by the identity ledger",
	})
	m.eventsInvalid = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_invalid_total",
		Help:      "Total number of degenerate events dropped during validation",
	})
	m.ledgerSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "event_ledger_size",
		Help:      "Current number of identity keys retained by the dedup ledger",
	})

	m.transportResets = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "transport_resets_total",
		Help:      "Total number of full pipeline resets (stop, regression, backward scrub)",
	})
	m.playbackSpeed = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "playback_speed",
		Help:      "Current playback speed multiplier",
	})

	m.insightFrames = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "insight_frames_total",
		Help:      "Total number of insight frames derived from snapshots",
	})
	m.transitionsByKind = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "zone_transitions_total",
			Help:      "Total classified zone transitions by kind",
		},
		[]string{"kind"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by endpoint, method and status",
		},
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// GetRegistry returns the registry backing the global manager, for promhttp.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers against the global manager.

func RecordTickIngested()  { globalManager.ticksIngested.Inc() }
func RecordTickMalformed() { globalManager.ticksMalformed.Inc() }

func RecordSnapshotComposed()         { globalManager.snapshotsComposed.Inc() }
func RecordSnapshotEmitted()          { globalManager.snapshotsEmitted.Inc() }
func RecordSnapshotDropped()          { globalManager.snapshotsDropped.Inc() }
func UpdateEmitRatio(ratio float64)   { globalManager.emitRatio.Set(ratio) }
func RecordComposeLatency(ms float64) { globalManager.composeLatency.Observe(ms) }

func RecordEventEmitted()    { globalManager.eventsEmitted.Inc() }
func RecordEventDuplicate()  { globalManager.eventsDuplicate.Inc() }
func RecordEventInvalid()    { globalManager.eventsInvalid.Inc() }
func UpdateLedgerSize(n int) { globalManager.ledgerSize.Set(float64(n)) }

func RecordTransportReset()         { globalManager.transportResets.Inc() }
func UpdatePlaybackSpeed(s float64) { globalManager.playbackSpeed.Set(s) }

func RecordInsightFrame() { globalManager.insightFrames.Inc() }

func RecordZoneTransition(kind string) {
	globalManager.transitionsByKind.WithLabelValues(kind).Inc()
}

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}
