// Package metrics defines Prometheus metrics for the graph handler engine.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphengine_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphengine_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphengine_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	// HandlerDuration times a single engine operation call end-to-end,
	// distinct from RequestDuration which times the HTTP round trip.
	HandlerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphengine_handler_duration_seconds",
			Help:    "Engine handler call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// GuardDecisionsTotal counts the Guard's recommended_action outcomes.
	GuardDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphengine_guard_decisions_total",
			Help: "Guard.Check decisions by recommended action",
		},
		[]string{"action"},
	)

	// SamplerInvocationsTotal counts sampling BFS runs, split by whether the
	// sample terminated (fully explored within the sample depth) or not.
	SamplerInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphengine_sampler_invocations_total",
			Help: "Sampler.Sample invocations by termination outcome",
		},
		[]string{"terminated"},
	)

	// SubgraphNodesLoaded observes the node count loaded into memGraph per
	// pathfinding/network call, for capacity planning against MAX_NODES.
	SubgraphNodesLoaded = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphengine_subgraph_nodes_loaded",
			Help:    "Nodes loaded into an in-memory subgraph per call",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000},
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		HandlerDuration, GuardDecisionsTotal, SamplerInvocationsTotal,
		SubgraphNodesLoaded,
	)
}
