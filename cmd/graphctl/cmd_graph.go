package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relgraph/graphengine/client"
)

var (
	flagNodesTable  string
	flagEdgesTable  string
	flagFromCols    string
	flagToCols      string
	flagIDCols      string
	flagWeightCol   string
	flagSoftDelete  string
	flagSQLFilter   string
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Graph handler engine operations",
	}

	cmd.PersistentFlags().StringVar(&flagNodesTable, "nodes-table", "", "nodes table name (required)")
	cmd.PersistentFlags().StringVar(&flagEdgesTable, "edges-table", "", "edges table name (required)")
	cmd.PersistentFlags().StringVar(&flagFromCols, "from-cols", "from_id", "comma-separated edge 'from' columns")
	cmd.PersistentFlags().StringVar(&flagToCols, "to-cols", "to_id", "comma-separated edge 'to' columns")
	cmd.PersistentFlags().StringVar(&flagIDCols, "id-cols", "id", "comma-separated node id columns")
	cmd.PersistentFlags().StringVar(&flagWeightCol, "weight-col", "", "numeric edge column used as traversal weight")
	cmd.PersistentFlags().StringVar(&flagSoftDelete, "soft-delete-col", "", "nullable tombstone column; rows where it is non-null are skipped")
	cmd.PersistentFlags().StringVar(&flagSQLFilter, "sql-filter", "", "extra raw SQL predicate ANDed into every edge query")

	cmd.MarkPersistentFlagRequired("nodes-table") //nolint:errcheck // cobra validates at parse time.
	cmd.MarkPersistentFlagRequired("edges-table") //nolint:errcheck // cobra validates at parse time.

	cmd.AddCommand(graphTraverseCmd())
	cmd.AddCommand(graphAggregateCmd())
	cmd.AddCommand(graphShortestPathCmd())
	cmd.AddCommand(graphAllShortestPathsCmd())
	cmd.AddCommand(graphCentralityCmd())
	cmd.AddCommand(graphConnectedComponentsCmd())
	cmd.AddCommand(graphDensityCmd())
	cmd.AddCommand(graphNeighborsCmd())
	cmd.AddCommand(graphResilienceCmd())

	return cmd
}

func splitCols(s string) []string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}

	return parts
}

func currentSchema() client.Schema {
	return client.Schema{
		NodesTable:       flagNodesTable,
		EdgesTable:       flagEdgesTable,
		EdgeFromCols:     splitCols(flagFromCols),
		EdgeToCols:       splitCols(flagToCols),
		IDCols:           splitCols(flagIDCols),
		WeightCol:        flagWeightCol,
		SoftDeleteColumn: flagSoftDelete,
		SQLFilter:        flagSQLFilter,
	}
}

func graphTraverseCmd() *cobra.Command {
	var (
		direction string
		maxDepth  int
		target    string
	)

	cmd := &cobra.Command{
		Use:   "traverse <start-id>",
		Short: "BFS traverse from a node",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiClient.Traverse(context.Background(), client.TraverseRequest{
				Schema:          currentSchema(),
				Start:           args[0],
				Direction:       direction,
				MaxDepth:        maxDepth,
				TargetPredicate: target,
			})
			if err != nil {
				fatal("traverse", err)
			}

			output(resp)
		},
	}
	cmd.Flags().StringVar(&direction, "direction", "outbound", "outbound|inbound|both")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 3, "max traversal depth")
	cmd.Flags().StringVar(&target, "target-predicate", "", "SQL predicate; the full traversal runs and only matching nodes are returned")

	return cmd
}

func graphAggregateCmd() *cobra.Command {
	var (
		direction string
		maxDepth  int
		valueCol  string
		op        string
	)

	cmd := &cobra.Command{
		Use:   "aggregate <start-id>",
		Short: "Aggregate a numeric column along paths from a node",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiClient.Aggregate(context.Background(), client.AggregateRequest{
				Schema:    currentSchema(),
				Start:     args[0],
				ValueCol:  valueCol,
				Operation: op,
				Direction: direction,
				MaxDepth:  maxDepth,
			})
			if err != nil {
				fatal("aggregate", err)
			}

			output(resp)
		},
	}
	cmd.Flags().StringVar(&valueCol, "value-col", "", "numeric edge column to accumulate (required)")
	cmd.Flags().StringVar(&op, "op", "sum", "sum|max|min|multiply|count")
	cmd.Flags().StringVar(&direction, "direction", "outbound", "outbound|inbound|both")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 3, "max traversal depth")
	cmd.MarkFlagRequired("value-col") //nolint:errcheck // cobra validates at parse time.

	return cmd
}

func graphShortestPathCmd() *cobra.Command {
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "shortest-path <from> <to>",
		Short: "Find the shortest path between two nodes",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiClient.ShortestPath(context.Background(), client.ShortestPathRequest{
				Schema:    currentSchema(),
				Start:     args[0],
				End:       args[1],
				WeightCol: flagWeightCol,
				MaxDepth:  maxDepth,
			})
			if err != nil {
				fatal("shortest-path", err)
			}

			output(resp)
		},
	}
	cmd.Flags().IntVar(&maxDepth, "max-depth", 10, "max search depth")

	return cmd
}

func graphAllShortestPathsCmd() *cobra.Command {
	var (
		maxDepth int
		maxPaths int
	)

	cmd := &cobra.Command{
		Use:   "all-shortest-paths <from> <to>",
		Short: "Enumerate every shortest path between two nodes",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiClient.AllShortestPaths(context.Background(), client.AllShortestPathsRequest{
				Schema:    currentSchema(),
				Start:     args[0],
				End:       args[1],
				WeightCol: flagWeightCol,
				MaxDepth:  maxDepth,
				MaxPaths:  maxPaths,
			})
			if err != nil {
				fatal("all-shortest-paths", err)
			}

			output(resp)
		},
	}
	cmd.Flags().IntVar(&maxDepth, "max-depth", 10, "max search depth")
	cmd.Flags().IntVar(&maxPaths, "max-paths", 10, "max number of equal-length paths to return")

	return cmd
}

func graphCentralityCmd() *cobra.Command {
	var (
		kind string
		topN int
	)

	cmd := &cobra.Command{
		Use:   "centrality",
		Short: "Rank nodes by a centrality measure",
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiClient.Centrality(context.Background(), client.CentralityRequest{
				Schema:    currentSchema(),
				Kind:      kind,
				TopN:      topN,
				WeightCol: flagWeightCol,
			})
			if err != nil {
				fatal("centrality", err)
			}

			output(resp)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "degree", "degree|betweenness|closeness|pagerank")
	cmd.Flags().IntVar(&topN, "top-n", 10, "number of top-ranked nodes to return")

	return cmd
}

func graphConnectedComponentsCmd() *cobra.Command {
	var minSize int

	cmd := &cobra.Command{
		Use:   "connected-components",
		Short: "List weakly-connected components",
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiClient.ConnectedComponents(context.Background(), client.ConnectedComponentsRequest{
				Schema:  currentSchema(),
				MinSize: minSize,
			})
			if err != nil {
				fatal("connected-components", err)
			}

			output(resp)
		},
	}
	cmd.Flags().IntVar(&minSize, "min-size", 1, "only list components with at least this many nodes")

	return cmd
}

func graphDensityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "density",
		Short: "Compute graph-wide density and degree statistics",
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiClient.GraphDensity(context.Background(), client.GraphDensityRequest{
				Schema:    currentSchema(),
				WeightCol: flagWeightCol,
			})
			if err != nil {
				fatal("density", err)
			}

			output(resp)
		},
	}
}

func graphNeighborsCmd() *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "neighbors <id>",
		Short: "List a node's neighbors",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiClient.Neighbors(context.Background(), client.NeighborsRequest{
				Schema:    currentSchema(),
				NodeID:    args[0],
				Direction: direction,
			})
			if err != nil {
				fatal("neighbors", err)
			}

			output(resp)
		},
	}
	cmd.Flags().StringVar(&direction, "direction", "outbound", "outbound|inbound|both")

	return cmd
}

func graphResilienceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resilience <id>",
		Short: "Measure the effect of removing a node on graph connectivity",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := apiClient.ResilienceAnalysis(context.Background(), client.ResilienceRequest{
				Schema:       currentSchema(),
				NodeToRemove: args[0],
			})
			if err != nil {
				fatal("resilience", err)
			}

			output(resp)
		},
	}
}
