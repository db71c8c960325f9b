package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// TraverseResult is the canonical BFS handler's return value: discovered
// nodes, the breadth-first spanning tree of paths from start, the edges
// actually traversed, and the depth actually reached.
type TraverseResult struct {
	Nodes         []Record
	Paths         PathMap
	Edges         []Edge
	DepthReached  int
	NodesVisited  int
	TerminatedAt  []NodeID
}

// TraversalHandler runs the frontier-batched BFS with safety gating,
// grounded on traversal.py's control flow (sample → estimate → guard →
// iterate) and a frontier/visited/UNION-query loop shape, generalized from
// a fixed kg_nodes/kg_edges schema to an arbitrary caller-supplied SchemaRef.
type TraversalHandler struct {
	ex     Executor
	guard  *Guard
	bounds *BoundsIntrospector
	log    *logrus.Entry
}

// NewTraversalHandler constructs a TraversalHandler.
func NewTraversalHandler(ex Executor, log *logrus.Entry) *TraversalHandler {
	return &TraversalHandler{
		ex:     ex,
		guard:  NewGuard(NewEstimator()),
		bounds: NewBoundsIntrospector(ex),
		log:    log,
	}
}

// Traverse executes the BFS described in §4.F.
func (h *TraversalHandler) Traverse(ctx context.Context, schema SchemaRef, start NodeID, direction Direction, maxDepth int, opts CallOptions) (*TraverseResult, error) {
	defer observeHandlerDuration("traverse", time.Now())

	if maxDepth > MaxDepth {
		maxDepth = MaxDepth
	}

	maxNodes := opts.effectiveMaxNodes()

	if !opts.SkipEstimation {
		if err := h.checkGuard(ctx, schema, start, direction, maxDepth, maxNodes, opts); err != nil {
			return nil, err
		}
	}

	frontier := newFrontier(start)
	visited := newVisited()
	visited.add(start)

	paths := PathMap{start.Key(): []NodeID{start}}

	terminated := newVisited()
	if opts.StopPredicate != "" {
		match, err := matchesPredicate(ctx, h.ex, schema, start, opts.StopPredicate)
		if err != nil {
			return nil, err
		}

		if match {
			terminated.add(start)
		}
	}

	var edgesTraversed []Edge

	depthReached := 0

	for depth := 0; depth < maxDepth; depth++ {
		if len(frontier) == 0 {
			break
		}

		if len(visited) > maxNodes {
			return nil, &SafetyLimitExceededError{Reason: "live visited count exceeded max_nodes during traversal", Value: len(visited), Limit: maxNodes}
		}

		expandable := subtractVisited(frontier, terminated)
		if len(expandable) == 0 {
			break
		}

		rawEdges, err := fetchEdges(ctx, h.ex, schema, expandable, direction)
		if err != nil {
			return nil, err
		}

		nextFrontier := newFrontier()

		for _, re := range rawEdges {
			source, target, ok := resolveSourceTarget(re, direction, frontier)
			if !ok {
				continue
			}

			if visited.has(target) {
				continue
			}

			visited.add(target)
			nextFrontier.add(target)

			sourcePath := paths[source.Key()]
			childPath := make([]NodeID, len(sourcePath)+1)
			copy(childPath, sourcePath)
			childPath[len(sourcePath)] = target
			paths[target.Key()] = childPath

			edgesTraversed = append(edgesTraversed, Edge{From: source, To: target})

			if opts.StopPredicate != "" {
				match, err := matchesPredicate(ctx, h.ex, schema, target, opts.StopPredicate)
				if err != nil {
					return nil, err
				}

				if match {
					terminated.add(target)
				}
			}

			if len(visited) > maxNodes {
				return nil, &SafetyLimitExceededError{Reason: "live visited count exceeded max_nodes during traversal", Value: len(visited), Limit: maxNodes}
			}
		}

		frontier = nextFrontier
		depthReached = depth + 1
	}

	hydrateIDs := visited.slice()
	if !opts.IncludeStart {
		hydrateIDs = removeID(hydrateIDs, start)
	}

	nodes, err := fetchNodes(ctx, h.ex, schema, hydrateIDs)
	if err != nil {
		return nil, err
	}

	return &TraverseResult{
		Nodes:        nodes,
		Paths:        paths,
		Edges:        edgesTraversed,
		DepthReached: depthReached,
		NodesVisited: len(visited),
		TerminatedAt: terminated.slice(),
	}, nil
}

// TraverseCollecting runs a full traversal and post-filters by a relational
// predicate, returning only nodes matching it along with their paths. It
// never short-circuits on first match.
func (h *TraversalHandler) TraverseCollecting(ctx context.Context, schema SchemaRef, start NodeID, direction Direction, maxDepth int, opts CallOptions, targetPredicate string) (*TraverseResult, error) {
	result, err := h.Traverse(ctx, schema, start, direction, maxDepth, opts)
	if err != nil {
		return nil, err
	}

	filtered := make([]Record, 0, len(result.Nodes))

	for _, rec := range result.Nodes {
		match, err := matchesPredicate(ctx, h.ex, schema, rec.ID, targetPredicate)
		if err != nil {
			return nil, err
		}

		if match {
			filtered = append(filtered, rec)
		}
	}

	result.Nodes = filtered

	return result, nil
}

func (h *TraversalHandler) checkGuard(ctx context.Context, schema SchemaRef, start NodeID, direction Direction, maxDepth, maxNodes int, opts CallOptions) error {
	config := opts.EstimationConfig
	if config == nil {
		def := DefaultEstimationConfig()
		config = &def
	}

	sampleDepth := config.SampleDepth
	if maxDepth < sampleDepth {
		sampleDepth = maxDepth
	}

	sampler := NewSampler(h.ex, schema, direction, opts.hubThreshold(), h.log)

	sample, err := sampler.Sample(ctx, start, sampleDepth)
	if err != nil {
		return err
	}

	observeSamplerInvocation(sample)

	var tableBound *int

	bound, err := h.bounds.TableBound(ctx, schema.EdgesTable, colOrFirst(schema.EdgeFromCols), colOrFirst(schema.EdgeToCols))
	if err == nil {
		tableBound = &bound
	}

	guardResult := h.guard.Check(sample, maxDepth, maxNodes, nil, tableBound, config)
	observeGuardDecision(guardResult)

	if h.log != nil {
		for _, w := range guardResult.Warnings {
			h.log.Warn(w)
		}
	}

	if guardResult.RecommendedAction == ActionAbort {
		return &SubgraphTooLargeError{Reason: guardResult.Reason, Estimated: guardResult.EstimatedNodes, Limit: maxNodes}
	}

	return nil
}

func colOrFirst(cols []string) string {
	if len(cols) == 0 {
		return ""
	}

	return cols[0]
}

// resolveSourceTarget determines which endpoint of a fetched edge is the
// "source" (already in the expandable frontier) and which is the "target"
// (the newly discovered node), per the direction-dependent pairing rule.
func resolveSourceTarget(re rawEdge, direction Direction, frontier Frontier) (source, target NodeID, ok bool) {
	switch direction {
	case DirectionOutbound:
		return re.From, re.To, true
	case DirectionInbound:
		return re.To, re.From, true
	default: // both: whichever endpoint was in the frontier this round is the source
		if frontier.has(re.From) {
			return re.From, re.To, true
		}

		if frontier.has(re.To) {
			return re.To, re.From, true
		}

		return nil, nil, false
	}
}

func subtractVisited(frontier Frontier, terminated VisitedSet) []NodeID {
	out := make([]NodeID, 0, len(frontier))

	for k, id := range frontier {
		if _, ok := terminated[k]; !ok {
			out = append(out, id)
		}
	}

	return out
}

func removeID(ids []NodeID, target NodeID) []NodeID {
	out := make([]NodeID, 0, len(ids))

	for _, id := range ids {
		if id.Key() != target.Key() {
			out = append(out, id)
		}
	}

	return out
}

func (v VisitedSet) slice() []NodeID {
	out := make([]NodeID, 0, len(v))
	for _, id := range v {
		out = append(out, id)
	}

	return out
}
