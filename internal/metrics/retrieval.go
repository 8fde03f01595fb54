package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval Prometheus metrics.
var (
	IndexedDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "resumeforge",
			Name:      "indexed_documents",
			Help:      "Number of documents in the vector index",
		},
	)

	RetrievalSearchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "resumeforge",
			Name:      "retrieval_searches_total",
			Help:      "Total similarity searches executed",
		},
	)

	RetrievalSearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "resumeforge",
			Name:      "retrieval_search_duration_seconds",
			Help:      "Similarity search duration in seconds, embedding included",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers Prometheus retrieval metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexedDocuments)
	prometheus.MustRegister(RetrievalSearchesTotal)
	prometheus.MustRegister(RetrievalSearchDuration)
	retrievalMetricsRegistered = true
}
