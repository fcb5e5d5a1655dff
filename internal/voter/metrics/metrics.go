package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the voter module.
// Tracks which tier resolved each lookup, source latency and import outcomes.
type Metrics struct {
	ResolveTotal     *prometheus.CounterVec
	ResolveDuration  *prometheus.HistogramVec
	SourceDuration   *prometheus.HistogramVec
	SourceFailures   *prometheus.CounterVec
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	StoreConflicts   prometheus.Counter
	ImportRows       *prometheus.CounterVec
	ImportDuration   prometheus.Histogram
	LifecycleChanges *prometheus.CounterVec
}

var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// New creates a Metrics instance registered with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the voter metrics with reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration panics.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ResolveTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voterdata_resolve_total",
			Help: "Lookups by resolving tier (cache, database, api, static) or outcome (not_found, error)",
		}, []string{"outcome"}),
		ResolveDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voterdata_resolve_duration_seconds",
			Help:    "Duration of single-identifier resolution by outcome",
			Buckets: latencyBuckets,
		}, []string{"outcome"}),
		SourceDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voterdata_source_duration_seconds",
			Help:    "Duration of external source lookups",
			Buckets: latencyBuckets,
		}, []string{"source"}),
		SourceFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voterdata_source_failures_total",
			Help: "External source failures by category",
		}, []string{"source", "category"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "voterdata_cache_hits_total",
			Help: "Accelerator cache hits",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "voterdata_cache_misses_total",
			Help: "Accelerator cache misses",
		}),
		StoreConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "voterdata_store_conflicts_total",
			Help: "Concurrent inserts resolved by re-reading the stored record",
		}),
		ImportRows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voterdata_import_rows_total",
			Help: "Imported spreadsheet rows by outcome (successful, duplicate, error)",
		}, []string{"outcome"}),
		ImportDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voterdata_import_duration_seconds",
			Help:    "Duration of spreadsheet imports",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		LifecycleChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voterdata_lifecycle_changes_total",
			Help: "Disable, enable and delete operations",
		}, []string{"action"}),
	}
}

// ObserveResolve records the outcome and duration of one resolution.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveResolve(outcome string, start time.Time) {
	m.ResolveTotal.WithLabelValues(outcome).Inc()
	m.ResolveDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

// ObserveSource records the duration of an external source call.
func (m *Metrics) ObserveSource(source string, start time.Time) {
	m.SourceDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementSourceFailure(source, category string) {
	m.SourceFailures.WithLabelValues(source, category).Inc()
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHits.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.CacheMisses.Inc()
}

func (m *Metrics) IncrementStoreConflict() {
	m.StoreConflicts.Inc()
}

// ObserveImport records row outcomes and the duration of one import.
func (m *Metrics) ObserveImport(successful, duplicates, errored int, start time.Time) {
	m.ImportRows.WithLabelValues("successful").Add(float64(successful))
	m.ImportRows.WithLabelValues("duplicate").Add(float64(duplicates))
	m.ImportRows.WithLabelValues("error").Add(float64(errored))
	m.ImportDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementLifecycle(action string) {
	m.LifecycleChanges.WithLabelValues(action).Inc()
}
