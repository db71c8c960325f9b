package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/relgraph/graphengine/internal/engine"
)

// PathAggregateHandler serves the along-path accumulation endpoint.
type PathAggregateHandler struct {
	svc PathAggregateService
	log *logrus.Logger
}

// NewPathAggregateHandler creates a PathAggregateHandler.
func NewPathAggregateHandler(svc PathAggregateService, log *logrus.Logger) *PathAggregateHandler {
	return &PathAggregateHandler{svc: svc, log: log}
}

type pathAggregateRequest struct {
	Schema    schemaParam      `json:"schema" binding:"required"`
	Start     nodeIDParam      `json:"start" binding:"required"`
	ValueCol  string           `json:"value_col" binding:"required"`
	Operation string           `json:"operation" binding:"required"`
	Direction string           `json:"direction"`
	MaxDepth  int              `json:"max_depth" binding:"required"`
	Options   callOptionsParam `json:"options"`
}

// Aggregate handles POST /api/v1/graph/aggregate.
func (h *PathAggregateHandler) Aggregate(c *gin.Context) {
	var req pathAggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	op := engine.AggregateOperation(req.Operation)

	switch op {
	case engine.OpSum, engine.OpMax, engine.OpMin, engine.OpMultiply, engine.OpCount:
	default:
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "operation must be one of sum|max|min|multiply|count")

		return
	}

	result, err := h.svc.PathAggregate(
		c.Request.Context(),
		req.Schema.toSchemaRef(),
		req.Start.toNodeID(),
		req.ValueCol,
		op,
		directionOrDefault(req.Direction),
		req.MaxDepth,
		req.Options.toCallOptions(),
	)
	if err != nil {
		respondEngineError(c, h.log, "path_aggregate", err)

		return
	}

	aggregated := make(map[string]float64, len(result.AggregatedValues))
	for k, v := range result.AggregatedValues {
		aggregated[k] = v
	}

	c.JSON(http.StatusOK, gin.H{
		"nodes":             recordsJSON(result.Nodes),
		"aggregated_values": aggregated,
		"operation":         result.Operation,
		"value_column":      result.ValueColumn,
		"max_depth":         result.MaxDepth,
		"nodes_visited":     result.NodesVisited,
	})
}
