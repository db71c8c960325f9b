package api_test

import (
	"context"

	"github.com/relgraph/graphengine/internal/engine"
)

// fakeTraversalService is a stand-in TraversalService driven entirely by the
// fields below, letting handler tests exercise request binding/response
// shaping without a database.
type fakeTraversalService struct {
	result *engine.TraverseResult
	err    error

	collecting bool
}

func (f *fakeTraversalService) Traverse(context.Context, engine.SchemaRef, engine.NodeID, engine.Direction, int, engine.CallOptions) (*engine.TraverseResult, error) {
	return f.result, f.err
}

func (f *fakeTraversalService) TraverseCollecting(context.Context, engine.SchemaRef, engine.NodeID, engine.Direction, int, engine.CallOptions, string) (*engine.TraverseResult, error) {
	f.collecting = true

	return f.result, f.err
}

type fakePathAggregateService struct {
	result *engine.PathAggregateResult
	err    error
}

func (f *fakePathAggregateService) PathAggregate(context.Context, engine.SchemaRef, engine.NodeID, string, engine.AggregateOperation, engine.Direction, int, engine.CallOptions) (*engine.PathAggregateResult, error) {
	return f.result, f.err
}

type fakePathfindingService struct {
	shortestResult *engine.ShortestPathResult
	allResult      *engine.AllShortestPathsResult
	err            error

	maxPaths int
}

func (f *fakePathfindingService) ShortestPath(context.Context, engine.SchemaRef, engine.NodeID, engine.NodeID, string, int, engine.CallOptions) (*engine.ShortestPathResult, error) {
	return f.shortestResult, f.err
}

func (f *fakePathfindingService) AllShortestPaths(_ context.Context, _ engine.SchemaRef, _, _ engine.NodeID, _ string, _, maxPaths int, _ engine.CallOptions) (*engine.AllShortestPathsResult, error) {
	f.maxPaths = maxPaths

	return f.allResult, f.err
}

type fakeNetworkService struct {
	centrality *engine.CentralityResult
	components *engine.ConnectedComponentsResult
	density    *engine.DensityResult
	neighbors  *engine.NeighborsResult
	resilience *engine.ResilienceResult
	err        error

	topN int
}

func (f *fakeNetworkService) Centrality(_ context.Context, _ engine.SchemaRef, _ engine.CentralityKind, topN int, _ string) (*engine.CentralityResult, error) {
	f.topN = topN

	return f.centrality, f.err
}

func (f *fakeNetworkService) ConnectedComponents(context.Context, engine.SchemaRef, int) (*engine.ConnectedComponentsResult, error) {
	return f.components, f.err
}

func (f *fakeNetworkService) GraphDensity(context.Context, engine.SchemaRef, string) (*engine.DensityResult, error) {
	return f.density, f.err
}

func (f *fakeNetworkService) Neighbors(context.Context, engine.SchemaRef, engine.NodeID, engine.Direction) (*engine.NeighborsResult, error) {
	return f.neighbors, f.err
}

func (f *fakeNetworkService) ResilienceAnalysis(context.Context, engine.SchemaRef, engine.NodeID) (*engine.ResilienceResult, error) {
	return f.resilience, f.err
}

// testSchemaJSON is a minimal valid schemaParam JSON fragment shared by
// handler tests that don't care about schema specifics.
const testSchemaJSON = `{"nodes_table":"demo_nodes","edges_table":"demo_edges","edge_from_cols":["from_id"],"edge_to_cols":["to_id"],"id_cols":["id"]}`
