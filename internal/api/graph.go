package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/relgraph/graphengine/internal/engine"
)

// TraversalHandler serves BFS traversal endpoints.
type TraversalHandler struct {
	svc TraversalService
	log *logrus.Logger
}

// NewTraversalHandler creates a TraversalHandler with the given service and logger.
func NewTraversalHandler(svc TraversalService, log *logrus.Logger) *TraversalHandler {
	return &TraversalHandler{svc: svc, log: log}
}

type traverseRequest struct {
	Schema          schemaParam      `json:"schema" binding:"required"`
	Start           nodeIDParam      `json:"start" binding:"required"`
	Direction       string           `json:"direction"`
	MaxDepth        int              `json:"max_depth" binding:"required"`
	Options         callOptionsParam `json:"options"`
	TargetPredicate string           `json:"target_predicate"`
}

// Traverse handles POST /api/v1/graph/traverse.
func (h *TraversalHandler) Traverse(c *gin.Context) {
	var req traverseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	direction := directionOrDefault(req.Direction)
	schema := req.Schema.toSchemaRef()
	opts := req.Options.toCallOptions()

	var (
		result *engine.TraverseResult
		err    error
	)

	if req.TargetPredicate != "" {
		result, err = h.svc.TraverseCollecting(c.Request.Context(), schema, req.Start.toNodeID(), direction, req.MaxDepth, opts, req.TargetPredicate)
	} else {
		result, err = h.svc.Traverse(c.Request.Context(), schema, req.Start.toNodeID(), direction, req.MaxDepth, opts)
	}

	if err != nil {
		respondEngineError(c, h.log, "traverse", err)

		return
	}

	c.JSON(http.StatusOK, traverseResponseJSON(result))
}

func directionOrDefault(s string) engine.Direction {
	switch s {
	case "inbound":
		return engine.DirectionInbound
	case "both":
		return engine.DirectionBoth
	default:
		return engine.DirectionOutbound
	}
}

func traverseResponseJSON(r *engine.TraverseResult) gin.H {
	paths := make(map[string][]any, len(r.Paths))
	for k, path := range r.Paths {
		ids := make([]any, 0, len(path))
		for _, id := range path {
			ids = append(ids, []any(id))
		}

		paths[k] = ids
	}

	return gin.H{
		"nodes":         recordsJSON(r.Nodes),
		"edges":         edgesJSON(r.Edges),
		"paths":         paths,
		"depth_reached": r.DepthReached,
		"nodes_visited": r.NodesVisited,
		"terminated_at": idsJSON(r.TerminatedAt),
	}
}

func idsJSON(ids []engine.NodeID) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, []any(id))
	}

	return out
}
