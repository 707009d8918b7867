package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the metadata service,
// organized by subsystem: provider searches, aggregation, and conflict
// detection. All collectors are registered via promauto with the default
// registry.
type Metrics struct {
	// SearchesStarted counts provider searches initiated, labeled by provider.
	SearchesStarted *prometheus.CounterVec

	// SearchesCompleted counts successful provider searches, labeled by provider.
	SearchesCompleted *prometheus.CounterVec

	// SearchesFailed counts failed provider searches, labeled by provider.
	SearchesFailed *prometheus.CounterVec

	// SearchDuration observes provider search duration in seconds, labeled by provider.
	SearchDuration *prometheus.HistogramVec

	// RecordsPerSearch observes records returned per provider search.
	RecordsPerSearch *prometheus.HistogramVec

	// AggregationsStarted counts aggregation calls by operation (isbn, title, multi).
	AggregationsStarted *prometheus.CounterVec

	// AggregationsFailed counts aggregation calls that failed the quorum check.
	AggregationsFailed *prometheus.CounterVec

	// AggregationDuration observes end-to-end aggregation duration in seconds.
	AggregationDuration prometheus.Histogram

	// RecordsMerged counts raw records collapsed into merged results.
	RecordsMerged prometheus.Counter

	// ConsensusConfidence observes the final consensus confidence per call.
	ConsensusConfidence prometheus.Histogram

	// ConflictsDetected counts detected conflicts, labeled by severity.
	ConflictsDetected *prometheus.CounterVec
}

// NewMetrics creates and registers all service metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		SearchesStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metadata",
			Subsystem: "provider",
			Name:      "searches_started_total",
			Help:      "Provider searches initiated.",
		}, []string{"provider"}),
		SearchesCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metadata",
			Subsystem: "provider",
			Name:      "searches_completed_total",
			Help:      "Provider searches that returned successfully.",
		}, []string{"provider"}),
		SearchesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metadata",
			Subsystem: "provider",
			Name:      "searches_failed_total",
			Help:      "Provider searches that returned an error or timed out.",
		}, []string{"provider"}),
		SearchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "metadata",
			Subsystem: "provider",
			Name:      "search_duration_seconds",
			Help:      "Provider search duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		RecordsPerSearch: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "metadata",
			Subsystem: "provider",
			Name:      "records_per_search",
			Help:      "Records returned per provider search.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}, []string{"provider"}),
		AggregationsStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metadata",
			Subsystem: "aggregation",
			Name:      "started_total",
			Help:      "Aggregation calls initiated, by operation.",
		}, []string{"operation"}),
		AggregationsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metadata",
			Subsystem: "aggregation",
			Name:      "failed_total",
			Help:      "Aggregation calls that failed the provider quorum.",
		}, []string{"operation"}),
		AggregationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "metadata",
			Subsystem: "aggregation",
			Name:      "duration_seconds",
			Help:      "End-to-end aggregation duration.",
			Buckets:   prometheus.DefBuckets,
		}),
		RecordsMerged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "metadata",
			Subsystem: "aggregation",
			Name:      "records_merged_total",
			Help:      "Raw provider records collapsed into merged results.",
		}),
		ConsensusConfidence: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "metadata",
			Subsystem: "aggregation",
			Name:      "consensus_confidence",
			Help:      "Final consensus confidence per aggregation call.",
			Buckets:   []float64{0.3, 0.5, 0.65, 0.8, 0.9, 0.95, 0.98},
		}),
		ConflictsDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metadata",
			Subsystem: "conflict",
			Name:      "detected_total",
			Help:      "Conflicts detected, by severity.",
		}, []string{"severity"}),
	}
}
