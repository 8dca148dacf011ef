package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup results.
const (
	CacheMiss  = "miss"
	CacheHit   = "hit"
	CacheStale = "stale"
)

// Conversion outcomes, mirroring the CLI exit outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeInvalidArgs = "invalid_args"
	OutcomeError       = "error"
)

// ConverterMetrics holds the counters of one run. Every method is safe on a nil receiver
// so callers that do not export metrics can pass nil.
type ConverterMetrics struct {
	registry *prometheus.Registry

	RatesFetchTotal    *prometheus.CounterVec
	RatesFetchDuration prometheus.Histogram
	CacheLookupsTotal  *prometheus.CounterVec
	CacheWriteErrors   prometheus.Counter
	ConversionsTotal   *prometheus.CounterVec
	LastRunTimestamp   prometheus.Gauge
}

// NewConverterMetrics registers the metrics on a private registry.
func NewConverterMetrics() *ConverterMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &ConverterMetrics{
		registry: reg,

		RatesFetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_converter_fetch_total",
				Help: "Requests made to the NBU rates endpoint",
			},
			[]string{"result"},
		),

		RatesFetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rate_converter_fetch_duration_seconds",
				Help:    "Duration of NBU rates requests in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 8),
			},
		),

		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_converter_cache_lookups_total",
				Help: "Cached snapshot lookups by result (hit, miss, stale)",
			},
			[]string{"result"},
		),

		CacheWriteErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_converter_cache_write_errors_total",
				Help: "Fetched snapshots that could not be persisted",
			},
		),

		ConversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_converter_conversions_total",
				Help: "Conversions by outcome",
			},
			[]string{"outcome"},
		),

		LastRunTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rate_converter_last_run_timestamp_seconds",
				Help: "Unix time of the last run",
			},
		),
	}
}

func (m *ConverterMetrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *ConverterMetrics) ObserveFetch(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.RatesFetchTotal.WithLabelValues(result).Inc()
	m.RatesFetchDuration.Observe(d.Seconds())
}

func (m *ConverterMetrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

func (m *ConverterMetrics) CacheWriteFailed() {
	if m == nil {
		return
	}
	m.CacheWriteErrors.Inc()
}

func (m *ConverterMetrics) Conversion(outcome string) {
	if m == nil {
		return
	}
	m.ConversionsTotal.WithLabelValues(outcome).Inc()
	m.LastRunTimestamp.SetToCurrentTime()
}

// WriteTextfile dumps the registry in the node-exporter textfile collector format.
func (m *ConverterMetrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
