package engine

import (
	"time"

	"github.com/relgraph/graphengine/internal/metrics"
)

// observeHandlerDuration records how long a single engine operation took,
// called via defer at the top of each public handler method.
func observeHandlerDuration(operation string, start time.Time) {
	metrics.HandlerDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// observeGuardDecision records the Guard's recommended action.
func observeGuardDecision(result GuardResult) {
	metrics.GuardDecisionsTotal.WithLabelValues(string(result.RecommendedAction)).Inc()
}

// observeSamplerInvocation records a completed Sampler.Sample call.
func observeSamplerInvocation(sample SampleResult) {
	terminated := "false"
	if sample.Terminated {
		terminated = "true"
	}

	metrics.SamplerInvocationsTotal.WithLabelValues(terminated).Inc()
}

// observeSubgraphLoad records the size of an in-memory subgraph loaded for a
// pathfinding or network-analysis call.
func observeSubgraphLoad(operation string, nodeCount int) {
	metrics.SubgraphNodesLoaded.WithLabelValues(operation).Observe(float64(nodeCount))
}
