package api

import (
	"encoding/json"

	"github.com/relgraph/graphengine/internal/engine"
)

// nodeIDParam accepts either a single scalar id or a JSON array of scalars
// for composite keys, decoding to an engine.NodeID in both cases.
type nodeIDParam engine.NodeID

func (p *nodeIDParam) UnmarshalJSON(data []byte) error {
	var arr []any
	if err := json.Unmarshal(data, &arr); err == nil {
		*p = nodeIDParam(arr)

		return nil
	}

	var scalar any
	if err := json.Unmarshal(data, &scalar); err != nil {
		return err
	}

	*p = nodeIDParam{scalar}

	return nil
}

func (p nodeIDParam) toNodeID() engine.NodeID { return engine.NodeID(p) }

// schemaParam is the wire shape of engine.SchemaRef.
type schemaParam struct {
	NodesTable string `json:"nodes_table" binding:"required"`
	EdgesTable string `json:"edges_table" binding:"required"`

	EdgeFromCols []string `json:"edge_from_cols" binding:"required"`
	EdgeToCols   []string `json:"edge_to_cols" binding:"required"`
	IDCols       []string `json:"id_cols" binding:"required"`

	SoftDeleteColumn string   `json:"soft_delete_column"`
	TemporalStartCol string   `json:"temporal_start_col"`
	TemporalEndCol   string   `json:"temporal_end_col"`
	SQLFilter        string   `json:"sql_filter"`
	WeightCol        string   `json:"weight_col"`
	CollectColumns   []string `json:"collect_columns"`
	OrderBy          string   `json:"order_by"`
}

func (s schemaParam) toSchemaRef() engine.SchemaRef {
	return engine.SchemaRef{
		NodesTable:       s.NodesTable,
		EdgesTable:       s.EdgesTable,
		EdgeFromCols:     s.EdgeFromCols,
		EdgeToCols:       s.EdgeToCols,
		IDCols:           s.IDCols,
		SoftDeleteColumn: s.SoftDeleteColumn,
		TemporalStartCol: s.TemporalStartCol,
		TemporalEndCol:   s.TemporalEndCol,
		SQLFilter:        s.SQLFilter,
		WeightCol:        s.WeightCol,
		CollectColumns:   s.CollectColumns,
		OrderBy:          s.OrderBy,
	}
}

// callOptionsParam is the wire shape of engine.CallOptions.
type callOptionsParam struct {
	MaxNodes         int               `json:"max_nodes"`
	SkipEstimation   bool              `json:"skip_estimation"`
	HubThreshold     float64           `json:"hub_threshold"`
	IncludeStart     bool              `json:"include_start"`
	ExcludedNodes    []nodeIDParam     `json:"excluded_nodes"`
	StopPredicate    string            `json:"stop_predicate"`
	EstimationConfig *estimationParam  `json:"estimation_config"`
}

type estimationParam struct {
	BaseDamping               *float64 `json:"base_damping"`
	ConvergenceMultiplier     *float64 `json:"convergence_multiplier"`
	DecreasingTrendMultiplier *float64 `json:"decreasing_trend_multiplier"`
	SafetyMargin              *float64 `json:"safety_margin"`
	MinSafetyMargin           *float64 `json:"min_safety_margin"`
	SampleDepth               *int     `json:"sample_depth"`
	ConvergenceThreshold      *float64 `json:"convergence_threshold"`
	StableGrowthThreshold     *float64 `json:"stable_growth_threshold"`
}

func (o callOptionsParam) toCallOptions() engine.CallOptions {
	excluded := make([]engine.NodeID, 0, len(o.ExcludedNodes))
	for _, id := range o.ExcludedNodes {
		excluded = append(excluded, id.toNodeID())
	}

	opts := engine.CallOptions{
		MaxNodes:       o.MaxNodes,
		SkipEstimation: o.SkipEstimation,
		HubThreshold:   o.HubThreshold,
		IncludeStart:   o.IncludeStart,
		ExcludedNodes:  excluded,
		StopPredicate:  o.StopPredicate,
	}

	if o.EstimationConfig != nil {
		cfg := engine.DefaultEstimationConfig()
		applyFloat(&cfg.BaseDamping, o.EstimationConfig.BaseDamping)
		applyFloat(&cfg.ConvergenceMultiplier, o.EstimationConfig.ConvergenceMultiplier)
		applyFloat(&cfg.DecreasingTrendMultiplier, o.EstimationConfig.DecreasingTrendMultiplier)
		applyFloat(&cfg.SafetyMargin, o.EstimationConfig.SafetyMargin)
		applyFloat(&cfg.MinSafetyMargin, o.EstimationConfig.MinSafetyMargin)
		applyFloat(&cfg.ConvergenceThreshold, o.EstimationConfig.ConvergenceThreshold)
		applyFloat(&cfg.StableGrowthThreshold, o.EstimationConfig.StableGrowthThreshold)

		if o.EstimationConfig.SampleDepth != nil {
			cfg.SampleDepth = *o.EstimationConfig.SampleDepth
		}

		opts.EstimationConfig = &cfg
	}

	return opts
}

func applyFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// recordJSON renders an engine.Record for the wire: id plus its projected
// columns flattened alongside it.
func recordJSON(r engine.Record) map[string]any {
	out := make(map[string]any, len(r.Values)+1)
	for k, v := range r.Values {
		out[k] = v
	}

	out["id"] = []any(r.ID)

	return out
}

func recordsJSON(rs []engine.Record) []map[string]any {
	out := make([]map[string]any, 0, len(rs))
	for _, r := range rs {
		out = append(out, recordJSON(r))
	}

	return out
}

func edgeJSON(e engine.Edge) map[string]any {
	out := map[string]any{
		"from": []any(e.From),
		"to":   []any(e.To),
	}
	if e.Weight != nil {
		out["weight"] = *e.Weight
	}

	return out
}

func edgesJSON(es []engine.Edge) []map[string]any {
	out := make([]map[string]any, 0, len(es))
	for _, e := range es {
		out = append(out, edgeJSON(e))
	}

	return out
}
