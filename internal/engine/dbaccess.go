package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Executor is the minimal database capability the engine requires: issue a
// parameterized statement and get rows or a single row back. *dbpool.Pool and
// pgx.Tx both satisfy this without an adapter.
type Executor interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// withStatementTimeout bounds a single call at QueryTimeout seconds.
func withStatementTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(QueryTimeout)*time.Second)
}

// rawEdge is a single (from, to[, weight]) row shape shared by fetchEdges and
// the sampler's own frontier expansion query.
type rawEdge struct {
	From   NodeID
	To     NodeID
	Weight *float64
}

// WeightOrDefault returns the fetched weight, or 1.0 when no weight column
// was requested, matching the unset-weight default used throughout network
// analysis.
func (e rawEdge) WeightOrDefault() float64 {
	if e.Weight == nil {
		return 1.0
	}

	return *e.Weight
}

// fetchEdges returns edges adjacent to frontier in the given direction,
// applying soft-delete, temporal, and caller sql_filter predicates in that
// fixed order, composed with AND. Composite frontier keys are pushed down as
// a tuple-membership VALUES list rather than one round trip per node. When
// schema.WeightCol is set, the weight column is selected and carried on each
// returned rawEdge.
func fetchEdges(ctx context.Context, ex Executor, schema SchemaRef, frontier []NodeID, direction Direction) ([]rawEdge, error) {
	if len(frontier) == 0 {
		return nil, nil
	}

	ctx, cancel := withStatementTimeout(ctx)
	defer cancel()

	selectCols := strings.Join(schema.EdgeFromCols, ", ") + ", " + strings.Join(schema.EdgeToCols, ", ")
	if schema.WeightCol != "" {
		selectCols += ", " + schema.WeightCol
	}

	var sql string

	var args []any

	switch direction {
	case DirectionInbound:
		pred, predArgs := tupleMembership(schema.EdgeToCols, frontier, 1)
		filter, filterArgs := buildEdgeFilter(schema, len(predArgs)+1)
		args = append(predArgs, filterArgs...)
		sql = fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, selectCols, schema.EdgesTable, appendFilter(pred, filter))
	case DirectionBoth:
		// Build each branch with its own independently-numbered placeholders
		// and concatenate argument lists in branch order; pgx numbers
		// placeholders per-statement, so each branch's SQL is rendered with
		// its own starting offset.
		outPred, outArgs := tupleMembership(schema.EdgeFromCols, frontier, 1)
		outFilter, outFilterArgs := buildEdgeFilter(schema, len(outArgs)+1)
		outArgs = append(outArgs, outFilterArgs...)

		inStart := len(outArgs) + 1
		inPred, inArgs := tupleMembership(schema.EdgeToCols, frontier, inStart)
		inFilter, inFilterArgs := buildEdgeFilter(schema, inStart+len(inArgs))
		inArgs = append(inArgs, inFilterArgs...)

		sql = fmt.Sprintf(
			`(SELECT %s FROM %s WHERE %s) UNION (SELECT %s FROM %s WHERE %s)`,
			selectCols, schema.EdgesTable, appendFilter(outPred, outFilter),
			selectCols, schema.EdgesTable, appendFilter(inPred, inFilter),
		)
		args = append(outArgs, inArgs...)
	default: // DirectionOutbound
		pred, predArgs := tupleMembership(schema.EdgeFromCols, frontier, 1)
		filter, filterArgs := buildEdgeFilter(schema, len(predArgs)+1)
		args = append(predArgs, filterArgs...)
		sql = fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, selectCols, schema.EdgesTable, appendFilter(pred, filter))
	}

	rows, err := ex.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapBackend("fetch_edges", err)
	}
	defer rows.Close()

	fromArity, toArity := len(schema.EdgeFromCols), len(schema.EdgeToCols)

	out := make([]rawEdge, 0, 64)

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, wrapBackend("fetch_edges scan", err)
		}

		edge := rawEdge{
			From: NodeID(vals[:fromArity]),
			To:   NodeID(vals[fromArity : fromArity+toArity]),
		}

		if schema.WeightCol != "" {
			w, err := toFloat64(vals[fromArity+toArity])
			if err != nil {
				return nil, &InvalidArgumentError{Reason: "weight_col value is not numeric: " + err.Error()}
			}

			if w < 0 {
				return nil, &InvalidArgumentError{Reason: "negative edge weight is not permitted"}
			}

			edge.Weight = &w
		}

		out = append(out, edge)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapBackend("fetch_edges iterate", err)
	}

	return out, nil
}

// tupleMembership renders `(c1,c2) IN (VALUES ($n,$n+1), ...)` for a
// composite key, or `c1 = ANY($n)` for a single-column key, returning the
// predicate and the flattened argument list starting at placeholder index
// `start` (1-based, pgx convention).
func tupleMembership(cols []string, ids []NodeID, start int) (string, []any) {
	if len(cols) == 1 {
		args := make([]any, len(ids))
		for i, id := range ids {
			args[i] = id.Single()
		}

		return fmt.Sprintf("%s = ANY($%d)", cols[0], start), []any{args}
	}

	colList := "(" + strings.Join(cols, ", ") + ")"

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)*len(cols))
	idx := start

	for i, id := range ids {
		ph := make([]string, len(cols))
		for j := range cols {
			ph[j] = fmt.Sprintf("$%d", idx)
			idx++

			if j < len(id) {
				args = append(args, id[j])
			} else {
				args = append(args, nil)
			}
		}

		placeholders[i] = "(" + strings.Join(ph, ", ") + ")"
	}

	return colList + " IN (VALUES " + strings.Join(placeholders, ", ") + ")", args
}

// buildEdgeFilter composes the soft-delete, temporal, and sql_filter clauses
// on the edges table in the fixed order the contract specifies.
func buildEdgeFilter(schema SchemaRef, start int) (string, []any) {
	var parts []string

	var args []any

	idx := start

	if schema.SoftDeleteColumn != "" {
		parts = append(parts, schema.SoftDeleteColumn+" IS NULL")
	}

	if schema.TemporalStartCol != "" || schema.TemporalEndCol != "" {
		var bounds []string

		if schema.TemporalStartCol != "" {
			bounds = append(bounds, fmt.Sprintf("%s <= $%d", schema.TemporalStartCol, idx))
			args = append(args, time.Now())
			idx++
		}

		if schema.TemporalEndCol != "" {
			bounds = append(bounds, fmt.Sprintf("(%s IS NULL OR %s >= $%d)", schema.TemporalEndCol, schema.TemporalEndCol, idx))
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

	return strings.Join(parts, " AND "), args
}

func appendFilter(base, filter string) string {
	if filter == "" {
		return base
	}

	return base + " AND " + filter
}

// fetchNodes hydrates node records for ids, applying the soft-delete filter
// and caller-requested column projection, ordering, and a hard cap at
// MAX_RESULTS.
func fetchNodes(ctx context.Context, ex Executor, schema SchemaRef, ids []NodeID) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	if len(ids) > MaxResults {
		ids = ids[:MaxResults]
	}

	ctx, cancel := withStatementTimeout(ctx)
	defer cancel()

	cols := schema.CollectColumns
	selectCols := strings.Join(schema.IDCols, ", ")

	if len(cols) > 0 {
		selectCols += ", " + strings.Join(cols, ", ")
	}

	pred, args := tupleMembership(schema.IDCols, ids, 1)

	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, selectCols, schema.NodesTable, pred)

	if schema.SoftDeleteColumn != "" {
		sql += " AND " + schema.SoftDeleteColumn + " IS NULL"
	}

	if schema.OrderBy != "" {
		sql += " ORDER BY " + schema.OrderBy
	}

	sql += fmt.Sprintf(" LIMIT %d", MaxResults)

	rows, err := ex.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapBackend("fetch_nodes", err)
	}
	defer rows.Close()

	idArity := len(schema.IDCols)

	out := make([]Record, 0, len(ids))

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, wrapBackend("fetch_nodes scan", err)
		}

		rec := Record{
			ID:     NodeID(append([]any{}, vals[:idArity]...)),
			Values: make(map[string]any, len(cols)),
		}

		fields := rows.FieldDescriptions()
		for i := idArity; i < len(vals); i++ {
			rec.Values[string(fields[i].Name)] = normalizeNumeric(vals[i])
		}

		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapBackend("fetch_nodes iterate", err)
	}

	return out, nil
}

// normalizeNumeric coerces database numeric types of arbitrary precision
// (pgtype.Numeric et al. arrive as strings or big.Rat-backed values under
// pgx's default type map when not explicitly scanned) to float64, per the
// contract that hydrated records never leak arbitrary-precision values.
func normalizeNumeric(v any) any {
	switch t := v.(type) {
	case int32:
		return float64(t)
	case int16:
		return float64(t)
	case pgtype.Numeric:
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}

		return f.Float64
	default:
		return t
	}
}

// toFloat64 coerces a scanned weight column value to float64, accepting the
// numeric shapes pgx's default type map produces for int2/int4/int8/float4/
// float8/numeric columns.
func toFloat64(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int16:
		return float64(t), nil
	case int:
		return float64(t), nil
	case pgtype.Numeric:
		f, err := t.Float64Value()
		if err != nil {
			return 0, err
		}

		if !f.Valid {
			return 0, fmt.Errorf("unsupported weight value %v", v)
		}

		return f.Float64, nil
	default:
		return 0, fmt.Errorf("unsupported weight type %T", v)
	}
}

// matchesPredicate implements `SELECT 1 WHERE id = … AND (predicate) LIMIT 1`.
// The predicate fragment is trusted caller input, per the documented contract
// that integrations supply safe fragments; the engine does not escape it.
func matchesPredicate(ctx context.Context, ex Executor, schema SchemaRef, id NodeID, predicate string) (bool, error) {
	ctx, cancel := withStatementTimeout(ctx)
	defer cancel()

	pred, args := tupleMembership(schema.IDCols, []NodeID{id}, 1)

	sql := fmt.Sprintf(`SELECT 1 FROM %s WHERE %s AND (%s) LIMIT 1`, schema.NodesTable, pred, predicate)

	var dummy int

	err := ex.QueryRow(ctx, sql, args...).Scan(&dummy)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}

		return false, wrapBackend("matches_predicate", err)
	}

	return true, nil
}
