package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibecheck_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vibecheck_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PersonasIndexedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vibecheck_personas_indexed_total",
			Help: "Total number of personas set up and indexed.",
		},
	)

	PairsIndexedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vibecheck_pairs_indexed_total",
			Help: "Total number of context/response pairs upserted into the vector index.",
		},
	)

	EmbeddingsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibecheck_embeddings_created_total",
			Help: "Total number of embeddings created, by backend.",
		},
		[]string{"backend"},
	)

	TurnsGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibecheck_turns_generated_total",
			Help: "Total number of conversation turns generated, by mode (llm, retrieval, greeting).",
		},
		[]string{"mode"},
	)

	SimulationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vibecheck_simulations_total",
			Help: "Total number of completed conversation simulations.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		PersonasIndexedTotal,
		PairsIndexedTotal,
		EmbeddingsCreatedTotal,
		TurnsGeneratedTotal,
		SimulationsTotal,
	)
}
