package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements the dashboard Metrics port using Prometheus.
type Recorder struct {
	fetchesStarted *prometheus.CounterVec
	fetchesSettled *prometheus.CounterVec
	fetchesDeduped *prometheus.CounterVec
	invalidations  *prometheus.CounterVec
	fetchLatency   *prometheus.HistogramVec
	ledgerSize     prometheus.Gauge
	cacheEntries   prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetchesStarted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_fetches_started_total",
				Help: "Total number of resource fetches issued to insight backends",
			},
			[]string{"kind"},
		),
		fetchesSettled: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_fetches_settled_total",
				Help: "Total number of fetches settled, by terminal status",
			},
			[]string{"kind", "status"},
		),
		fetchesDeduped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_fetches_deduped_total",
				Help: "Requests coalesced onto an already in-flight fetch",
			},
			[]string{"kind"},
		),
		invalidations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpulse_invalidations_total",
				Help: "Cache entries invalidated, by reason",
			},
			[]string{"reason"},
		),
		fetchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockpulse_fetch_duration_seconds",
				Help:    "Duration of backend fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		ledgerSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "stockpulse_recent_symbols",
				Help: "Number of symbols in the recent-symbol ledger",
			},
		),
		cacheEntries: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "stockpulse_cache_entries",
				Help: "Number of entries held by the query cache",
			},
		),
	}
}

// RecordFetchStarted records a fetch issued for a resource kind.
func (r *Recorder) RecordFetchStarted(kind string) {
	r.fetchesStarted.WithLabelValues(kind).Inc()
}

// RecordFetchSettled records a fetch reaching success or error status.
func (r *Recorder) RecordFetchSettled(kind, status string) {
	r.fetchesSettled.WithLabelValues(kind, status).Inc()
}

// RecordFetchDeduped records a request coalesced onto an in-flight fetch.
func (r *Recorder) RecordFetchDeduped(kind string) {
	r.fetchesDeduped.WithLabelValues(kind).Inc()
}

// RecordInvalidation records invalidated entries with the trigger reason.
func (r *Recorder) RecordInvalidation(reason string) {
	r.invalidations.WithLabelValues(reason).Inc()
}

// RecordFetchLatency records backend fetch latency in seconds.
func (r *Recorder) RecordFetchLatency(kind string, seconds float64) {
	r.fetchLatency.WithLabelValues(kind).Observe(seconds)
}

// RecordLedgerSize records the current ledger length.
func (r *Recorder) RecordLedgerSize(n int) {
	r.ledgerSize.Set(float64(n))
}

// RecordCacheEntries records the current entry count of the query cache.
func (r *Recorder) RecordCacheEntries(n int) {
	r.cacheEntries.Set(float64(n))
}
