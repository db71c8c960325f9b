package engine

import (
	"context"
	"fmt"
)

// BoundsIntrospector derives hard upper bounds and table metadata from
// catalog/statistics views, independent of any sampling. Grounded on
// bounds.py's get_table_stats / get_table_bound / get_cardinality_stats,
// translated from psycopg2 cursor calls to pgx Executor calls.
type BoundsIntrospector struct {
	ex Executor
}

// NewBoundsIntrospector constructs a BoundsIntrospector over ex.
func NewBoundsIntrospector(ex Executor) *BoundsIntrospector {
	return &BoundsIntrospector{ex: ex}
}

// TableStats introspects table to fill a TableStats. fromCol/toCol are
// optional; when both are supplied, unique endpoint counts and density are
// also computed.
func (b *BoundsIntrospector) TableStats(ctx context.Context, table, fromCol, toCol string) (TableStats, error) {
	ctx, cancel := withStatementTimeout(ctx)
	defer cancel()

	var stats TableStats

	var rowCount int64

	err := b.ex.QueryRow(ctx, `SELECT COALESCE(n_live_tup, 0) FROM pg_stat_user_tables WHERE relname = $1`, table).Scan(&rowCount)
	if err != nil {
		return TableStats{}, wrapBackend("table_stats live-tuple count", err)
	}

	if rowCount == 0 {
		countSQL := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table) //nolint:gosec // table name is a trusted caller-supplied identifier, per contract.
		if err := b.ex.QueryRow(ctx, countSQL).Scan(&rowCount); err != nil {
			return TableStats{}, wrapBackend("table_stats exact count", err)
		}
	}

	stats.RowCount = rowCount

	var pkCols int

	err = b.ex.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.table_constraints tc
			ON kcu.constraint_name = tc.constraint_name
		WHERE tc.table_name = $1 AND tc.constraint_type = 'PRIMARY KEY'
	`, table).Scan(&pkCols)
	if err != nil {
		return TableStats{}, wrapBackend("table_stats pk introspection", err)
	}

	stats.IsJunction = pkCols >= 2

	err = b.ex.QueryRow(ctx, `
		SELECT COUNT(*) > 0
		FROM information_schema.referential_constraints rc
		JOIN information_schema.constraint_column_usage ccu
			ON rc.constraint_name = ccu.constraint_name
		WHERE rc.unique_constraint_catalog = ccu.constraint_catalog AND ccu.table_name = $1
	`, table).Scan(&stats.HasSelfRef)
	if err != nil {
		return TableStats{}, wrapBackend("table_stats self-ref introspection", err)
	}

	rows, err := b.ex.Query(ctx, `
		SELECT a.attname
		FROM pg_index i
		JOIN pg_class c ON c.oid = i.indrelid
		JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = ANY(i.indkey)
		WHERE c.relname = $1
	`, table)
	if err != nil {
		return TableStats{}, wrapBackend("table_stats indexed columns", err)
	}

	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			rows.Close()

			return TableStats{}, wrapBackend("table_stats indexed columns scan", err)
		}

		stats.IndexedColumns = append(stats.IndexedColumns, col)
	}

	rowsErr := rows.Err()
	rows.Close()

	if rowsErr != nil {
		return TableStats{}, wrapBackend("table_stats indexed columns iterate", rowsErr)
	}

	if fromCol != "" && toCol != "" {
		var uniqueFrom, uniqueTo int64

		if err := b.ex.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(DISTINCT %s) FROM %s`, fromCol, table)).Scan(&uniqueFrom); err != nil { //nolint:gosec // trusted identifiers
			return TableStats{}, wrapBackend("table_stats unique from", err)
		}

		if err := b.ex.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(DISTINCT %s) FROM %s`, toCol, table)).Scan(&uniqueTo); err != nil { //nolint:gosec // trusted identifiers
			return TableStats{}, wrapBackend("table_stats unique to", err)
		}

		stats.UniqueFromNodes = &uniqueFrom
		stats.UniqueToNodes = &uniqueTo

		if uniqueFrom > 0 && uniqueTo > 0 {
			total := float64(uniqueFrom + uniqueTo)
			density := float64(rowCount) / (total * total)
			stats.Density = &density
		}
	}

	return stats, nil
}

// TableBound computes COUNT(DISTINCT) over the union of both endpoint
// columns: the theoretical maximum of nodes reachable via this edge table.
func (b *BoundsIntrospector) TableBound(ctx context.Context, edgesTable, fromCol, toCol string) (int, error) {
	ctx, cancel := withStatementTimeout(ctx)
	defer cancel()

	sql := fmt.Sprintf(`
		SELECT COUNT(*) FROM (
			SELECT %s AS node_id FROM %s
			UNION
			SELECT %s AS node_id FROM %s
		) nodes
	`, fromCol, edgesTable, toCol, edgesTable) //nolint:gosec // trusted identifiers

	var bound int

	if err := b.ex.QueryRow(ctx, sql).Scan(&bound); err != nil {
		return 0, wrapBackend("table_bound", err)
	}

	return bound, nil
}

// CardinalityStats reports average/max out-degree and in-degree. Advisory
// only; the Guard does not require it.
func (b *BoundsIntrospector) CardinalityStats(ctx context.Context, edgesTable, fromCol, toCol string) (CardinalityStats, error) {
	ctx, cancel := withStatementTimeout(ctx)
	defer cancel()

	var stats CardinalityStats

	outSQL := fmt.Sprintf(`
		SELECT AVG(cnt)::float8, MAX(cnt)::float8 FROM (
			SELECT %s, COUNT(*) AS cnt FROM %s GROUP BY %s
		) degree_counts
	`, fromCol, edgesTable, fromCol) //nolint:gosec // trusted identifiers

	var avgOut, maxOut, avgIn, maxIn *float64

	if err := b.ex.QueryRow(ctx, outSQL).Scan(&avgOut, &maxOut); err != nil {
		return CardinalityStats{}, wrapBackend("cardinality_stats outbound", err)
	}

	inSQL := fmt.Sprintf(`
		SELECT AVG(cnt)::float8, MAX(cnt)::float8 FROM (
			SELECT %s, COUNT(*) AS cnt FROM %s GROUP BY %s
		) degree_counts
	`, toCol, edgesTable, toCol) //nolint:gosec // trusted identifiers

	if err := b.ex.QueryRow(ctx, inSQL).Scan(&avgIn, &maxIn); err != nil {
		return CardinalityStats{}, wrapBackend("cardinality_stats inbound", err)
	}

	if avgOut != nil {
		stats.AvgOutDegree = *avgOut
	}

	if maxOut != nil {
		stats.MaxOutDegree = *maxOut
	}

	if avgIn != nil {
		stats.AvgInDegree = *avgIn
	}

	if maxIn != nil {
		stats.MaxInDegree = *maxIn
	}

	return stats, nil
}
