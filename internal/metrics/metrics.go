// Package metrics holds the Prometheus collectors exported by leadscout.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	MessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_messages_total",
			Help: "Total number of messages routed through the pipeline, by result (count)",
		},
		[]string{"mode", "result"},
	)

	FilteredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_filtered_total",
			Help: "Total number of messages rejected before classification, by reason (count)",
		},
		[]string{"reason"},
	)

	ClassifyFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_classify_failures_total",
			Help: "Total number of classification failures, by reason (count)",
		},
		[]string{"reason"},
	)

	RejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_lead_rejections_total",
			Help: "Total number of oracle leads rejected by acceptance checks, by reason (count)",
		},
		[]string{"reason"},
	)

	LeadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_leads_total",
			Help: "Total number of persist attempts, by outcome (count)",
		},
		[]string{"outcome"},
	)

	JoinsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_joins_total",
			Help: "Total number of source join attempts, by outcome (count)",
		},
		[]string{"outcome"},
	)

	DedupCacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "leadscout_dedup_cache_size",
			Help: "Number of lead identities held in the dedup cache (count)",
		},
	)

	OracleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leadscout_oracle_duration_ms",
			Help:    "Duration of oracle completions in milliseconds",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		},
		[]string{"provider", "status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "leadscout_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	IngestState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "leadscout_ingest_state",
			Help: "Ingestion controller state (0=idle, 1=backfilling, 2=listening, 3=shutting down, 4=stopped) (state code)",
		},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			MessagesTotal,
			FilteredTotal,
			ClassifyFailuresTotal,
			RejectionsTotal,
			LeadsTotal,
			JoinsTotal,
			DedupCacheSize,
			OracleDuration,
			CircuitBreakerState,
			IngestState,
		)
	})
}
