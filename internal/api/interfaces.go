package api

import (
	"context"

	"github.com/relgraph/graphengine/internal/engine"
)

// TraversalService is the subset of *engine.TraversalHandler the API depends
// on, named so handlers can be exercised against a fake in tests.
type TraversalService interface {
	Traverse(ctx context.Context, schema engine.SchemaRef, start engine.NodeID, direction engine.Direction, maxDepth int, opts engine.CallOptions) (*engine.TraverseResult, error)
	TraverseCollecting(ctx context.Context, schema engine.SchemaRef, start engine.NodeID, direction engine.Direction, maxDepth int, opts engine.CallOptions, targetPredicate string) (*engine.TraverseResult, error)
}

// PathAggregateService is the subset of *engine.PathAggregateHandler the API depends on.
type PathAggregateService interface {
	PathAggregate(ctx context.Context, schema engine.SchemaRef, start engine.NodeID, valueCol string, op engine.AggregateOperation, direction engine.Direction, maxDepth int, opts engine.CallOptions) (*engine.PathAggregateResult, error)
}

// PathfindingService is the subset of *engine.PathfindingHandler the API depends on.
type PathfindingService interface {
	ShortestPath(ctx context.Context, schema engine.SchemaRef, start, end engine.NodeID, weightCol string, maxDepth int, opts engine.CallOptions) (*engine.ShortestPathResult, error)
	AllShortestPaths(ctx context.Context, schema engine.SchemaRef, start, end engine.NodeID, weightCol string, maxDepth, maxPaths int, opts engine.CallOptions) (*engine.AllShortestPathsResult, error)
}

// NetworkService is the subset of *engine.NetworkHandler the API depends on.
type NetworkService interface {
	Centrality(ctx context.Context, schema engine.SchemaRef, kind engine.CentralityKind, topN int, weightCol string) (*engine.CentralityResult, error)
	ConnectedComponents(ctx context.Context, schema engine.SchemaRef, minSize int) (*engine.ConnectedComponentsResult, error)
	GraphDensity(ctx context.Context, schema engine.SchemaRef, weightCol string) (*engine.DensityResult, error)
	Neighbors(ctx context.Context, schema engine.SchemaRef, nodeID engine.NodeID, direction engine.Direction) (*engine.NeighborsResult, error)
	ResilienceAnalysis(ctx context.Context, schema engine.SchemaRef, nodeToRemove engine.NodeID) (*engine.ResilienceResult, error)
}
