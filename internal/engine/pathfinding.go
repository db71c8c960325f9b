package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ShortestPathResult is the pathfinding handler's return value. Path is nil
// and Error is set when no path exists — a normal result, not a thrown error.
type ShortestPathResult struct {
	Path          []NodeID
	PathNodes     []Record
	Distance      *float64
	Edges         []Edge
	NodesExplored int
	ExcludedNodes []NodeID
	Error         string
}

// PathfindingHandler finds shortest (and all shortest) paths between two
// nodes via a bounded bidirectional load into an in-memory graph followed by
// Dijkstra or BFS, grounded on pathfinding.py's algorithm shape and a
// parent-map reconstruction / trail reversal query pattern, extended to
// genuine bidirectional frontier expansion using errgroup to expand both
// frontiers concurrently each round.
type PathfindingHandler struct {
	ex  Executor
	log *logrus.Entry
}

// NewPathfindingHandler constructs a PathfindingHandler.
func NewPathfindingHandler(ex Executor, log *logrus.Entry) *PathfindingHandler {
	return &PathfindingHandler{ex: ex, log: log}
}

// ShortestPath implements §4.H's bounded bidirectional load plus in-memory
// shortest path.
func (h *PathfindingHandler) ShortestPath(ctx context.Context, schema SchemaRef, start, end NodeID, weightCol string, maxDepth int, opts CallOptions) (*ShortestPathResult, error) {
	defer observeHandlerDuration("shortest_path", time.Now())

	if maxDepth > MaxDepth {
		maxDepth = MaxDepth
	}

	graph, explored, err := h.loadBidirectional(ctx, schema, start, end, weightCol, maxDepth, opts)
	if err != nil {
		return nil, err
	}

	observeSubgraphLoad("shortest_path", graph.nodeCount())

	if !graph.has(start) || !graph.has(end) {
		return &ShortestPathResult{
			NodesExplored: explored,
			ExcludedNodes: opts.ExcludedNodes,
			Error:         "start or end node not present in the loaded subgraph",
		}, nil
	}

	var path []NodeID

	var distance float64

	var found bool

	if weightCol != "" {
		path, distance, found = graph.dijkstraShortestPath(start, end)
	} else {
		path, found = graph.bfsShortestPath(start, end)
		distance = float64(len(path) - 1)
	}

	if !found {
		return &ShortestPathResult{
			NodesExplored: explored,
			ExcludedNodes: opts.ExcludedNodes,
			Error:         "no path found between start and end",
		}, nil
	}

	pathNodes, edges, err := h.hydratePath(ctx, schema, graph, path)
	if err != nil {
		return nil, err
	}

	return &ShortestPathResult{
		Path:          path,
		PathNodes:     pathNodes,
		Distance:      &distance,
		Edges:         edges,
		NodesExplored: explored,
		ExcludedNodes: opts.ExcludedNodes,
	}, nil
}

// AllShortestPathsResult bundles every path sharing the minimal length/weight.
type AllShortestPathsResult struct {
	Paths         [][]NodeID
	Distance      *float64
	NodesExplored int
}

// AllShortestPaths re-enumerates every path of equal length between start
// and end on a subgraph loaded the same way ShortestPath loads it, truncated
// to maxPaths.
func (h *PathfindingHandler) AllShortestPaths(ctx context.Context, schema SchemaRef, start, end NodeID, weightCol string, maxDepth, maxPaths int, opts CallOptions) (*AllShortestPathsResult, error) {
	defer observeHandlerDuration("all_shortest_paths", time.Now())

	graph, explored, err := h.loadBidirectional(ctx, schema, start, end, weightCol, maxDepth, opts)
	if err != nil {
		return nil, err
	}

	if !graph.has(start) || !graph.has(end) {
		return &AllShortestPathsResult{NodesExplored: explored}, nil
	}

	var distance float64

	var found bool

	if weightCol != "" {
		_, distance, found = graph.dijkstraShortestPath(start, end)
	} else {
		var path []NodeID
		path, found = graph.bfsShortestPath(start, end)
		distance = float64(len(path) - 1)
	}

	if !found {
		return &AllShortestPathsResult{NodesExplored: explored}, nil
	}

	paths := enumerateEqualPaths(graph, start, end, distance, weightCol != "", maxPaths)

	return &AllShortestPathsResult{Paths: paths, Distance: &distance, NodesExplored: explored}, nil
}

// loadBidirectional maintains a forward frontier from start and a backward
// frontier from end, expanding both each round via errgroup, adding edges
// into an in-memory graph, and dropping any edge touching an excluded node
// at insertion time. Stops when the visited sets intersect, depth is
// exhausted, or the combined visited set exceeds MAX_NODES.
func (h *PathfindingHandler) loadBidirectional(ctx context.Context, schema SchemaRef, start, end NodeID, weightCol string, maxDepth int, opts CallOptions) (*memGraph, int, error) {
	schema.WeightCol = weightCol

	graph := newMemGraph()
	graph.addNode(start)
	graph.addNode(end)

	excluded := newVisited()
	for _, id := range opts.ExcludedNodes {
		excluded.add(id)
	}

	forwardFrontier := newFrontier(start)
	backwardFrontier := newFrontier(end)
	forwardVisited := newVisited()
	forwardVisited.add(start)
	backwardVisited := newVisited()
	backwardVisited.add(end)

	maxNodes := opts.effectiveMaxNodes()

	for depth := 0; depth < maxDepth; depth++ {
		if len(forwardFrontier) == 0 && len(backwardFrontier) == 0 {
			break
		}

		if intersects(forwardVisited, backwardVisited) {
			break
		}

		var forwardEdges, backwardEdges []rawEdge

		group, gctx := errgroup.WithContext(ctx)

		group.Go(func() error {
			if len(forwardFrontier) == 0 {
				return nil
			}

			edges, err := fetchEdges(gctx, h.ex, schema, forwardFrontier.slice(), DirectionOutbound)
			forwardEdges = edges

			return err
		})

		group.Go(func() error {
			if len(backwardFrontier) == 0 {
				return nil
			}

			edges, err := fetchEdges(gctx, h.ex, schema, backwardFrontier.slice(), DirectionInbound)
			backwardEdges = edges

			return err
		})

		if err := group.Wait(); err != nil {
			return nil, 0, err
		}

		nextForward := newFrontier()

		for _, e := range forwardEdges {
			if excluded.has(e.From) || excluded.has(e.To) {
				continue
			}

			graph.addEdge(e.From, e.To, e.WeightOrDefault())

			if !forwardVisited.has(e.To) {
				forwardVisited.add(e.To)
				nextForward.add(e.To)
			}
		}

		nextBackward := newFrontier()

		for _, e := range backwardEdges {
			// e.From/e.To came from an inbound fetch: From is the edge's
			// declared source, To its declared target; the backward
			// frontier walks against edge direction, so its newly
			// discovered node is e.From.
			if excluded.has(e.From) || excluded.has(e.To) {
				continue
			}

			graph.addEdge(e.From, e.To, e.WeightOrDefault())

			if !backwardVisited.has(e.From) {
				backwardVisited.add(e.From)
				nextBackward.add(e.From)
			}
		}

		forwardFrontier = nextForward
		backwardFrontier = nextBackward

		if len(forwardVisited)+len(backwardVisited) > maxNodes {
			return nil, 0, &SubgraphTooLargeError{
				Reason:    "bidirectional load exceeded max_nodes before convergence",
				Estimated: len(forwardVisited) + len(backwardVisited),
				Limit:     maxNodes,
			}
		}
	}

	return graph, len(forwardVisited) + len(backwardVisited), nil
}

func intersects(a, b VisitedSet) bool {
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}

	return false
}

// hydratePath fetches node records for path and, for each consecutive pair,
// reconstructs the Edge (with weight, when available from the graph).
func (h *PathfindingHandler) hydratePath(ctx context.Context, schema SchemaRef, graph *memGraph, path []NodeID) ([]Record, []Edge, error) {
	nodes, err := fetchNodes(ctx, h.ex, schema, path)
	if err != nil {
		return nil, nil, err
	}

	edges := make([]Edge, 0, len(path)-1)

	for i := 0; i < len(path)-1; i++ {
		from, to := path[i], path[i+1]

		weight := 1.0

		for _, e := range graph.neighbors(from, DirectionOutbound) {
			if e.To.Key() == to.Key() {
				weight = e.Weight
				break
			}
		}

		edges = append(edges, Edge{From: from, To: to, Weight: &weight})
	}

	return nodes, edges, nil
}

// enumerateEqualPaths performs a bounded DFS over the loaded subgraph,
// collecting every start->end path whose length/weight equals targetDist.
func enumerateEqualPaths(graph *memGraph, start, end NodeID, targetDist float64, weighted bool, maxPaths int) [][]NodeID {
	var results [][]NodeID

	var walk func(cur NodeID, path []NodeID, acc float64, visited VisitedSet)

	walk = func(cur NodeID, path []NodeID, acc float64, visited VisitedSet) {
		if len(results) >= maxPaths {
			return
		}

		if cur.Key() == end.Key() {
			if acc == targetDist {
				results = append(results, append([]NodeID{}, path...))
			}

			return
		}

		if weighted && acc > targetDist {
			return
		}

		if !weighted && float64(len(path)-1) >= targetDist {
			return
		}

		for _, e := range graph.neighbors(cur, DirectionOutbound) {
			if visited.has(e.To) {
				continue
			}

			step := 1.0
			if weighted {
				step = e.Weight
			}

			next := newVisited()
			for k, v := range visited {
				next[k] = v
			}

			next.add(e.To)

			walk(e.To, append(path, e.To), acc+step, next)

			if len(results) >= maxPaths {
				return
			}
		}
	}

	initialVisited := newVisited()
	initialVisited.add(start)

	walk(start, []NodeID{start}, 0, initialVisited)

	return results
}
