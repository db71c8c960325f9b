package engine

import (
	"container/heap"
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// CentralityKind selects which centrality algorithm to run.
type CentralityKind string

const (
	CentralityDegree      CentralityKind = "degree"
	CentralityBetweenness CentralityKind = "betweenness"
	CentralityCloseness   CentralityKind = "closeness"
	CentralityPageRank    CentralityKind = "pagerank"
)

// NodeScore pairs a NodeId with a centrality score.
type NodeScore struct {
	ID    NodeID
	Score float64
}

// CentralityResult is the top-N scored result plus graph-wide statistics.
type CentralityResult struct {
	Kind       CentralityKind
	TopNodes   []NodeScore
	NodeCount  int
	EdgeCount  int
}

// ComponentInfo describes one weakly-connected component.
type ComponentInfo struct {
	Size    int
	Sample  []Record
}

// ConnectedComponentsResult is the connected_components operation's return.
type ConnectedComponentsResult struct {
	Components       []ComponentInfo
	IsolatedNodes     []NodeID
	LargestComponent  int
}

// DensityResult is the graph_density operation's return.
type DensityResult struct {
	Nodes                int
	Edges                int
	Density              float64
	IsDirected           bool
	IsWeaklyConnected    bool
	IsStronglyConnected  *bool
	AvgDegree            float64
	MaxDegree            int
	MinDegree            int
}

// NeighborsResult is the neighbors operation's return.
type NeighborsResult struct {
	Neighbors      []Record
	OutboundCount  int
	InboundCount   int
	TotalDegree    int
}

// ResilienceResult is the resilience_analysis operation's return.
type ResilienceResult struct {
	NodeRemoved        NodeID
	NodeRemovedInfo    *Record
	DisconnectedPairs  [][2]NodeID
	ComponentsBefore   int
	ComponentsAfter    int
	ComponentIncrease  int
	IsolatedNodes      []NodeID
	AffectedNodeCount  int
	IsCritical         bool
	Error              string
}

// NetworkHandler loads a whole (sub)graph into memory and runs
// centrality/components/density/resilience analyses on it, grounded on
// network.py's algorithm shapes and a Neighbors/GraphContext UNION-ALL
// query pattern, generalized to an arbitrary schema.
type NetworkHandler struct {
	ex  Executor
	log *logrus.Entry
}

// NewNetworkHandler constructs a NetworkHandler.
func NewNetworkHandler(ex Executor, log *logrus.Entry) *NetworkHandler {
	return &NetworkHandler{ex: ex, log: log}
}

// loadWholeGraph loads every edge of the table into an in-memory directed
// graph, refusing when the discovered node count would exceed MAX_NODES.
func (h *NetworkHandler) loadWholeGraph(ctx context.Context, schema SchemaRef, weightCol string) (*memGraph, error) {
	schema.WeightCol = weightCol

	bounds := NewBoundsIntrospector(h.ex)

	bound, err := bounds.TableBound(ctx, schema.EdgesTable, colOrFirst(schema.EdgeFromCols), colOrFirst(schema.EdgeToCols))
	if err == nil && bound > MaxNodes {
		return nil, &SubgraphTooLargeError{Reason: "table bound exceeds max_nodes for whole-graph load", Estimated: bound, Limit: MaxNodes}
	}

	ctx, cancel := withStatementTimeout(ctx)
	defer cancel()

	selectCols := schema.EdgeFromCols[0] + ", " + schema.EdgeToCols[0]
	if weightCol != "" {
		selectCols += ", " + weightCol
	}

	sql := "SELECT " + selectCols + " FROM " + schema.EdgesTable

	if filter, _ := buildEdgeFilter(schema, 1); filter != "" {
		sql += " WHERE " + filter
	}

	rows, err := h.ex.Query(ctx, sql)
	if err != nil {
		return nil, wrapBackend("load_whole_graph", err)
	}
	defer rows.Close()

	graph := newMemGraph()

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, wrapBackend("load_whole_graph scan", err)
		}

		from := NodeID{vals[0]}
		to := NodeID{vals[1]}
		weight := 1.0

		if weightCol != "" {
			if w, err := toFloat64(vals[2]); err == nil {
				weight = w
			}
		}

		graph.addEdge(from, to, weight)

		if graph.nodeCount() > MaxNodes {
			return nil, &SafetyLimitExceededError{Reason: "whole-graph load exceeded max_nodes", Value: graph.nodeCount(), Limit: MaxNodes}
		}
	}

	if err := rows.Err(); err != nil {
		return nil, wrapBackend("load_whole_graph iterate", err)
	}

	return graph, nil
}

// Centrality computes the requested centrality kind over the whole graph.
func (h *NetworkHandler) Centrality(ctx context.Context, schema SchemaRef, kind CentralityKind, topN int, weightCol string) (*CentralityResult, error) {
	defer observeHandlerDuration("centrality", time.Now())

	graph, err := h.loadWholeGraph(ctx, schema, weightCol)
	if err != nil {
		return nil, err
	}

	observeSubgraphLoad("centrality", graph.nodeCount())

	var scores map[string]float64

	nodes := graph.allNodes()

	switch kind {
	case CentralityBetweenness:
		scores = betweennessCentrality(graph, nodes, weightCol != "")
	case CentralityCloseness:
		scores = closenessCentrality(graph, nodes)
	case CentralityPageRank:
		scores = pageRankCentrality(graph, nodes)
	default:
		scores = degreeCentrality(graph, nodes)
	}

	edgeCount := 0
	for _, id := range nodes {
		edgeCount += len(graph.neighbors(id, DirectionOutbound))
	}

	top := rankTop(graph, scores, topN)

	return &CentralityResult{Kind: kind, TopNodes: top, NodeCount: len(nodes), EdgeCount: edgeCount}, nil
}

func rankTop(graph *memGraph, scores map[string]float64, topN int) []NodeScore {
	out := make([]NodeScore, 0, len(scores))

	for _, id := range graph.allNodes() {
		if s, ok := scores[id.Key()]; ok {
			out = append(out, NodeScore{ID: id, Score: s})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })

	if topN > 0 && topN < len(out) {
		out = out[:topN]
	}

	return out
}

func degreeCentrality(graph *memGraph, nodes []NodeID) map[string]float64 {
	scores := make(map[string]float64, len(nodes))
	n := float64(len(nodes))

	for _, id := range nodes {
		degree := len(graph.neighbors(id, DirectionBoth))
		if n > 1 {
			scores[id.Key()] = float64(degree) / (n - 1)
		} else {
			scores[id.Key()] = 0
		}
	}

	return scores
}

// closenessCentrality: inverse of the average shortest-path distance from
// each node to every other reachable node.
func closenessCentrality(graph *memGraph, nodes []NodeID) map[string]float64 {
	scores := make(map[string]float64, len(nodes))

	for _, src := range nodes {
		dist := bfsDistances(graph, src)

		var sum float64

		reached := 0

		for _, d := range dist {
			if d > 0 {
				sum += float64(d)
				reached++
			}
		}

		if sum > 0 && reached > 0 {
			scores[src.Key()] = float64(reached) / sum
		} else {
			scores[src.Key()] = 0
		}
	}

	return scores
}

func bfsDistances(graph *memGraph, src NodeID) map[string]int {
	dist := map[string]int{src.Key(): 0}
	queue := []NodeID{src}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, e := range graph.neighbors(cur, DirectionOutbound) {
			if _, ok := dist[e.To.Key()]; !ok {
				dist[e.To.Key()] = dist[cur.Key()] + 1
				queue = append(queue, e.To)
			}
		}
	}

	return dist
}

// betweennessCentrality runs Brandes' algorithm from every source node,
// counting shortest paths with a plain BFS when weighted is false and with
// Dijkstra (via the same priorityQueue pathfinding.go/memgraph.go use for
// shortest-path search) when true, so a weight_col supplied by the caller
// changes which paths count as shortest.
func betweennessCentrality(graph *memGraph, nodes []NodeID, weighted bool) map[string]float64 {
	scores := make(map[string]float64, len(nodes))
	for _, id := range nodes {
		scores[id.Key()] = 0
	}

	for _, s := range nodes {
		var stack []NodeID

		predecessors := make(map[string][]NodeID)
		sigma := map[string]float64{s.Key(): 1}

		if weighted {
			stack = dijkstraBasedPaths(graph, s, sigma, predecessors)
		} else {
			stack = bfsBasedPaths(graph, s, sigma, predecessors)
		}

		delta := make(map[string]float64)

		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range predecessors[w.Key()] {
				if sigma[w.Key()] != 0 {
					delta[v.Key()] += (sigma[v.Key()] / sigma[w.Key()]) * (1 + delta[w.Key()])
				}
			}

			if w.Key() != s.Key() {
				scores[w.Key()] += delta[w.Key()]
			}
		}
	}

	return scores
}

// bfsBasedPaths performs the unweighted single-source shortest-path pass of
// Brandes' algorithm, filling sigma/predecessors and returning nodes in
// non-decreasing distance order (the order Brandes' accumulation phase
// requires).
func bfsBasedPaths(graph *memGraph, s NodeID, sigma map[string]float64, predecessors map[string][]NodeID) []NodeID {
	stack := make([]NodeID, 0, graph.nodeCount())
	dist := map[string]int{s.Key(): 0}
	queue := []NodeID{s}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		stack = append(stack, v)

		for _, e := range graph.neighbors(v, DirectionOutbound) {
			w := e.To

			if _, ok := dist[w.Key()]; !ok {
				dist[w.Key()] = dist[v.Key()] + 1
				queue = append(queue, w)
			}

			if dist[w.Key()] == dist[v.Key()]+1 {
				sigma[w.Key()] += sigma[v.Key()]
				predecessors[w.Key()] = append(predecessors[w.Key()], v)
			}
		}
	}

	return stack
}

// dijkstraBasedPaths is the weighted counterpart of bfsBasedPaths: a node is
// finalized (pushed onto the returned stack) the first time it's popped off
// the priority queue with its shortest distance, matching networkx's
// _single_source_dijkstra_path_basic.
func dijkstraBasedPaths(graph *memGraph, s NodeID, sigma map[string]float64, predecessors map[string][]NodeID) []NodeID {
	stack := make([]NodeID, 0, graph.nodeCount())
	dist := map[string]float64{s.Key(): 0}
	finalized := newVisited()

	pq := &priorityQueue{{id: s, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(pqItem)
		v := item.id

		if finalized.has(v) {
			continue
		}

		finalized.add(v)
		stack = append(stack, v)

		for _, e := range graph.neighbors(v, DirectionOutbound) {
			w := e.To
			if finalized.has(w) {
				continue
			}

			vw := dist[v.Key()] + e.Weight

			cur, seen := dist[w.Key()]

			switch {
			case !seen || vw < cur:
				dist[w.Key()] = vw
				heap.Push(pq, pqItem{id: w, dist: vw})
				sigma[w.Key()] = sigma[v.Key()]
				predecessors[w.Key()] = []NodeID{v}
			case vw == cur:
				sigma[w.Key()] += sigma[v.Key()]
				predecessors[w.Key()] = append(predecessors[w.Key()], v)
			}
		}
	}

	return stack
}

// pageRankCentrality runs the classic power-iteration PageRank with damping
// 0.85, honoring edge weights as transition-probability multipliers.
func pageRankCentrality(graph *memGraph, nodes []NodeID) map[string]float64 {
	const damping = 0.85

	const iterations = 50

	n := len(nodes)
	if n == 0 {
		return nil
	}

	rank := make(map[string]float64, n)
	for _, id := range nodes {
		rank[id.Key()] = 1.0 / float64(n)
	}

	outWeight := make(map[string]float64, n)

	for _, id := range nodes {
		var total float64
		for _, e := range graph.neighbors(id, DirectionOutbound) {
			total += e.Weight
		}

		outWeight[id.Key()] = total
	}

	for iter := 0; iter < iterations; iter++ {
		next := make(map[string]float64, n)
		for _, id := range nodes {
			next[id.Key()] = (1 - damping) / float64(n)
		}

		for _, id := range nodes {
			share := rank[id.Key()]

			total := outWeight[id.Key()]
			if total == 0 {
				continue
			}

			for _, e := range graph.neighbors(id, DirectionOutbound) {
				next[e.To.Key()] += damping * share * (e.Weight / total)
			}
		}

		rank = next
	}

	return rank
}

// ConnectedComponents lists weakly-connected components sorted by size
// descending, filtered by minSize, each with a small hydrated node sample.
func (h *NetworkHandler) ConnectedComponents(ctx context.Context, schema SchemaRef, minSize int) (*ConnectedComponentsResult, error) {
	defer observeHandlerDuration("connected_components", time.Now())

	graph, err := h.loadWholeGraph(ctx, schema, "")
	if err != nil {
		return nil, err
	}

	observeSubgraphLoad("connected_components", graph.nodeCount())

	components := graph.weaklyConnectedComponents()

	sort.Slice(components, func(i, j int) bool { return len(components[i]) > len(components[j]) })

	var result ConnectedComponentsResult

	largest := 0

	for _, comp := range components {
		if len(comp) > largest {
			largest = len(comp)
		}

		if len(comp) == 1 {
			result.IsolatedNodes = append(result.IsolatedNodes, comp[0])
		}

		if len(comp) < minSize {
			continue
		}

		sampleIDs := comp
		if len(sampleIDs) > 5 {
			sampleIDs = sampleIDs[:5]
		}

		sample, err := fetchNodes(ctx, h.ex, schema, sampleIDs)
		if err != nil {
			return nil, err
		}

		result.Components = append(result.Components, ComponentInfo{Size: len(comp), Sample: sample})
	}

	result.LargestComponent = largest

	return &result, nil
}

// GraphDensity reports graph-wide structural statistics.
func (h *NetworkHandler) GraphDensity(ctx context.Context, schema SchemaRef, weightCol string) (*DensityResult, error) {
	defer observeHandlerDuration("graph_density", time.Now())

	graph, err := h.loadWholeGraph(ctx, schema, weightCol)
	if err != nil {
		return nil, err
	}

	observeSubgraphLoad("graph_density", graph.nodeCount())

	nodes := graph.allNodes()
	n := len(nodes)

	edgeCount := 0
	maxDegree, minDegree := 0, -1

	for _, id := range nodes {
		degree := len(graph.neighbors(id, DirectionOutbound))
		edgeCount += degree

		total := len(graph.neighbors(id, DirectionBoth))
		if total > maxDegree {
			maxDegree = total
		}

		if minDegree < 0 || total < minDegree {
			minDegree = total
		}
	}

	if minDegree < 0 {
		minDegree = 0
	}

	density := 0.0
	if n > 1 {
		density = float64(edgeCount) / (float64(n) * float64(n-1))
	}

	avgDegree := 0.0
	if n > 0 {
		avgDegree = float64(edgeCount*2) / float64(n)
	}

	components := graph.weaklyConnectedComponents()
	isWeaklyConnected := len(components) <= 1

	var isStronglyConnected *bool

	if isWeaklyConnected {
		strong := graph.isStronglyConnected()
		isStronglyConnected = &strong
	}

	return &DensityResult{
		Nodes:                n,
		Edges:                edgeCount,
		Density:              density,
		IsDirected:           true,
		IsWeaklyConnected:    isWeaklyConnected,
		IsStronglyConnected:  isStronglyConnected,
		AvgDegree:            avgDegree,
		MaxDegree:            maxDegree,
		MinDegree:            minDegree,
	}, nil
}

// Neighbors returns 1-hop neighbors of nodeID along with degree counts.
func (h *NetworkHandler) Neighbors(ctx context.Context, schema SchemaRef, nodeID NodeID, direction Direction) (*NeighborsResult, error) {
	defer observeHandlerDuration("neighbors", time.Now())

	rawOut, err := fetchEdges(ctx, h.ex, schema, []NodeID{nodeID}, DirectionOutbound)
	if err != nil {
		return nil, err
	}

	rawIn, err := fetchEdges(ctx, h.ex, schema, []NodeID{nodeID}, DirectionInbound)
	if err != nil {
		return nil, err
	}

	neighborSet := newVisited()

	switch direction {
	case DirectionOutbound:
		for _, e := range rawOut {
			neighborSet.add(e.To)
		}
	case DirectionInbound:
		for _, e := range rawIn {
			neighborSet.add(e.From)
		}
	default:
		for _, e := range rawOut {
			neighborSet.add(e.To)
		}

		for _, e := range rawIn {
			neighborSet.add(e.From)
		}
	}

	records, err := fetchNodes(ctx, h.ex, schema, neighborSet.slice())
	if err != nil {
		return nil, err
	}

	total := newVisited()
	for _, e := range rawOut {
		total.add(e.To)
	}

	for _, e := range rawIn {
		total.add(e.From)
	}

	return &NeighborsResult{
		Neighbors:     records,
		OutboundCount: len(rawOut),
		InboundCount:  len(rawIn),
		TotalDegree:   len(total),
	}, nil
}

// ResilienceAnalysis loads the full subgraph, removes nodeToRemove, and
// compares weakly-connected component counts before and after.
func (h *NetworkHandler) ResilienceAnalysis(ctx context.Context, schema SchemaRef, nodeToRemove NodeID) (*ResilienceResult, error) {
	defer observeHandlerDuration("resilience_analysis", time.Now())

	graph, err := h.loadWholeGraph(ctx, schema, "")
	if err != nil {
		return nil, err
	}

	observeSubgraphLoad("resilience_analysis", graph.nodeCount())

	if !graph.has(nodeToRemove) {
		return &ResilienceResult{NodeRemoved: nodeToRemove, Error: "node_to_remove not present in the loaded subgraph"}, nil
	}

	neighbors := graph.neighbors(nodeToRemove, DirectionBoth)

	before := graph.weaklyConnectedComponents()
	componentOf := make(map[string]int, len(before))

	for i, comp := range before {
		for _, id := range comp {
			componentOf[id.Key()] = i
		}
	}

	nodeRecords, err := fetchNodes(ctx, h.ex, schema, []NodeID{nodeToRemove})
	if err != nil {
		return nil, err
	}

	var nodeInfo *Record
	if len(nodeRecords) > 0 {
		nodeInfo = &nodeRecords[0]
	}

	graph.removeNode(nodeToRemove)

	after := graph.weaklyConnectedComponents()
	componentOfAfter := make(map[string]int, len(after))

	for i, comp := range after {
		for _, id := range comp {
			componentOfAfter[id.Key()] = i
		}
	}

	var disconnectedPairs [][2]NodeID

	var isolated []NodeID

	seen := newVisited()

	for _, e := range neighbors {
		if seen.has(e.To) {
			continue
		}

		seen.add(e.To)

		if len(graph.neighbors(e.To, DirectionBoth)) == 0 {
			isolated = append(isolated, e.To)
		}
	}

	neighborIDs := seen.slice()

	for i := 0; i < len(neighborIDs); i++ {
		for j := i + 1; j < len(neighborIDs); j++ {
			a, b := neighborIDs[i], neighborIDs[j]
			if componentOf[a.Key()] == componentOf[b.Key()] && componentOfAfter[a.Key()] != componentOfAfter[b.Key()] {
				disconnectedPairs = append(disconnectedPairs, [2]NodeID{a, b})
			}
		}
	}

	componentIncrease := len(after) - len(before)

	return &ResilienceResult{
		NodeRemoved:       nodeToRemove,
		NodeRemovedInfo:   nodeInfo,
		DisconnectedPairs: disconnectedPairs,
		ComponentsBefore:  len(before),
		ComponentsAfter:   len(after),
		ComponentIncrease: componentIncrease,
		IsolatedNodes:     isolated,
		AffectedNodeCount: len(neighborIDs),
		IsCritical:        componentIncrease > 0 || len(isolated) > 0,
	}, nil
}
