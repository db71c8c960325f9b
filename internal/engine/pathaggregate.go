package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// AggregateOperation is the along-path accumulation / across-paths
// reduction rule applied by PathAggregateHandler.
type AggregateOperation string

const (
	OpSum      AggregateOperation = "sum"
	OpMax      AggregateOperation = "max"
	OpMin      AggregateOperation = "min"
	OpMultiply AggregateOperation = "multiply"
	OpCount    AggregateOperation = "count"
)

// PathAggregateResult is the path-aggregation handler's return value.
type PathAggregateResult struct {
	Nodes            []Record
	AggregatedValues map[string]float64
	Operation        AggregateOperation
	ValueColumn      string
	MaxDepth         int
	NodesVisited     int
}

// PathAggregateHandler computes an aggregated numeric value for every node
// reachable from a start node via a single recursive relational query,
// grounded on §4.G: the accumulation rule compounds along each path, then
// reduces across alternative paths to a single value per node.
type PathAggregateHandler struct {
	ex     Executor
	guard  *Guard
	bounds *BoundsIntrospector
	log    *logrus.Entry
}

// NewPathAggregateHandler constructs a PathAggregateHandler.
func NewPathAggregateHandler(ex Executor, log *logrus.Entry) *PathAggregateHandler {
	return &PathAggregateHandler{
		ex:     ex,
		guard:  NewGuard(NewEstimator()),
		bounds: NewBoundsIntrospector(ex),
		log:    log,
	}
}

// accumulatorSQL and reducerSQL return the per-path accumulation expression
// and the across-paths SQL aggregate function for each operation.
func accumulatorSQL(op AggregateOperation, accumCol, edgeValCol string) string {
	switch op {
	case OpMax:
		return fmt.Sprintf("GREATEST(%s, %s)", accumCol, edgeValCol)
	case OpMin:
		return fmt.Sprintf("LEAST(%s, %s)", accumCol, edgeValCol)
	case OpMultiply:
		return fmt.Sprintf("%s * %s", accumCol, edgeValCol)
	case OpCount:
		return fmt.Sprintf("%s + 1", accumCol)
	default: // sum
		return fmt.Sprintf("%s + %s", accumCol, edgeValCol)
	}
}

func reducerSQL(op AggregateOperation) string {
	switch op {
	case OpMax:
		return "MAX"
	case OpMin:
		return "MIN"
	case OpMultiply:
		return "SUM" // across-paths reduction for multiply is sum, per §4.G (BOM-style)
	case OpCount:
		return "MIN" // across-paths reduction for count is min (shortest distance)
	default: // sum
		return "SUM"
	}
}

// PathAggregate issues the recursive CTE described in §4.G: anchor on edges
// leaving (or entering) start, recurse while growing a path array with a
// cycle guard, then group by reached node applying the across-paths
// reduction. Numerics flow through the database as arbitrary-precision and
// are returned as float64, never truncated to 32-bit integers.
func (h *PathAggregateHandler) PathAggregate(ctx context.Context, schema SchemaRef, start NodeID, valueCol string, op AggregateOperation, direction Direction, maxDepth int, opts CallOptions) (*PathAggregateResult, error) {
	defer observeHandlerDuration("path_aggregate", time.Now())

	if maxDepth > MaxDepth {
		maxDepth = MaxDepth
	}

	if !opts.SkipEstimation {
		sampler := NewSampler(h.ex, schema, direction, opts.hubThreshold(), h.log)

		sampleDepth := DefaultEstimationConfig().SampleDepth
		if maxDepth < sampleDepth {
			sampleDepth = maxDepth
		}

		sample, err := sampler.Sample(ctx, start, sampleDepth)
		if err != nil {
			return nil, err
		}

		observeSamplerInvocation(sample)

		maxNodes := opts.effectiveMaxNodes()

		bound, boundErr := h.bounds.TableBound(ctx, schema.EdgesTable, colOrFirst(schema.EdgeFromCols), colOrFirst(schema.EdgeToCols))

		var tableBound *int
		if boundErr == nil {
			tableBound = &bound
		}

		guardResult := h.guard.Check(sample, maxDepth, maxNodes, nil, tableBound, opts.EstimationConfig)
		observeGuardDecision(guardResult)

		if guardResult.RecommendedAction == ActionAbort {
			return nil, &SubgraphTooLargeError{Reason: guardResult.Reason, Estimated: guardResult.EstimatedNodes, Limit: maxNodes}
		}
	}

	ctx, cancel := withStatementTimeout(ctx)
	defer cancel()

	fromCol, toCol := schema.EdgeFromCols[0], schema.EdgeToCols[0]

	anchorFromCol, anchorToCol := fromCol, toCol
	if direction == DirectionInbound {
		anchorFromCol, anchorToCol = toCol, fromCol
	}

	initialValue := "e." + valueCol + "::numeric"
	if op == OpCount {
		initialValue = "1::numeric"
	}

	accumExpr := accumulatorSQL(op, "r.accum", "e."+valueCol+"::numeric")
	if op == OpCount {
		accumExpr = accumulatorSQL(op, "r.accum", "")
	}

	reducer := reducerSQL(op)

	filterFragment, filterArgs := edgeFilterFragment(schema, 3)

	sql := fmt.Sprintf(`
		WITH RECURSIVE paths(node_id, accum, depth, path) AS (
			SELECT e.%[2]s, %[4]s AS accum, 1 AS depth, ARRAY[$1::text, e.%[2]s::text] AS path
			FROM %[1]s e
			WHERE e.%[3]s = $1
			%[8]s

			UNION ALL

			SELECT e.%[2]s, %[5]s AS accum, r.depth + 1, r.path || e.%[2]s::text
			FROM paths r
			JOIN %[1]s e ON e.%[3]s = r.node_id
			WHERE r.depth < $2
				AND NOT (e.%[2]s::text = ANY(r.path))
				%[8]s
		)
		SELECT node_id, %[6]s(accum) AS aggregated
		FROM paths
		GROUP BY node_id
		%[7]s
	`,
		schema.EdgesTable, anchorToCol, anchorFromCol,
		initialValue, accumExpr, reducer,
		"", // no HAVING clause needed
		filterFragment,
	)

	args := append([]any{start.Single(), maxDepth}, filterArgs...)

	rows, err := h.ex.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapBackend("path_aggregate", err)
	}
	defer rows.Close()

	aggregated := make(map[string]float64)
	ids := make([]NodeID, 0, 64)

	for rows.Next() {
		var rawID any

		var value float64

		if err := rows.Scan(&rawID, &value); err != nil {
			return nil, wrapBackend("path_aggregate scan", err)
		}

		id := NodeID{rawID}
		aggregated[id.Key()] = value
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapBackend("path_aggregate iterate", err)
	}

	nodes, err := fetchNodes(ctx, h.ex, schema, ids)
	if err != nil {
		return nil, err
	}

	return &PathAggregateResult{
		Nodes:            nodes,
		AggregatedValues: aggregated,
		Operation:        op,
		ValueColumn:      valueCol,
		MaxDepth:         maxDepth,
		NodesVisited:     len(ids),
	}, nil
}

// edgeFilterFragment renders an "AND (...)" clause for the soft-delete,
// temporal, and sql_filter predicates on the edges table, applied identically
// to the anchor and the recursive step so a row can only enter or extend a
// path while it is current. start is the 1-based placeholder index to use for
// the temporal bound arguments it returns.
func edgeFilterFragment(schema SchemaRef, start int) (string, []any) {
	var parts []string

	var args []any

	idx := start

	if schema.SoftDeleteColumn != "" {
		parts = append(parts, "e."+schema.SoftDeleteColumn+" IS NULL")
	}

	if schema.TemporalStartCol != "" || schema.TemporalEndCol != "" {
		var bounds []string

		if schema.TemporalStartCol != "" {
			bounds = append(bounds, fmt.Sprintf("e.%s <= $%d", schema.TemporalStartCol, idx))
			args = append(args, time.Now())
			idx++
		}

		if schema.TemporalEndCol != "" {
			bounds = append(bounds, fmt.Sprintf("(e.%s IS NULL OR e.%s >= $%d)", schema.TemporalEndCol, schema.TemporalEndCol, idx))
			args = append(args, time.Now())
			idx++
		}

		parts = append(parts, "("+strings.Join(bounds, " AND ")+")")
	}

	if schema.SQLFilter != "" {
		parts = append(parts, "("+schema.SQLFilter+")")
	}

	if len(parts) == 0 {
		return "", nil
	}

	return "AND " + strings.Join(parts, " AND "), args
}
