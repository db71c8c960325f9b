package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PathfindingHandler serves shortest-path and all-shortest-paths endpoints.
type PathfindingHandler struct {
	svc PathfindingService
	log *logrus.Logger
}

// NewPathfindingHandler creates a PathfindingHandler.
func NewPathfindingHandler(svc PathfindingService, log *logrus.Logger) *PathfindingHandler {
	return &PathfindingHandler{svc: svc, log: log}
}

type shortestPathRequest struct {
	Schema    schemaParam      `json:"schema" binding:"required"`
	Start     nodeIDParam      `json:"start" binding:"required"`
	End       nodeIDParam      `json:"end" binding:"required"`
	WeightCol string           `json:"weight_col"`
	MaxDepth  int              `json:"max_depth" binding:"required"`
	Options   callOptionsParam `json:"options"`
}

// ShortestPath handles POST /api/v1/graph/shortest-path.
func (h *PathfindingHandler) ShortestPath(c *gin.Context) {
	var req shortestPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	result, err := h.svc.ShortestPath(
		c.Request.Context(),
		req.Schema.toSchemaRef(),
		req.Start.toNodeID(),
		req.End.toNodeID(),
		req.WeightCol,
		req.MaxDepth,
		req.Options.toCallOptions(),
	)
	if err != nil {
		respondEngineError(c, h.log, "shortest_path", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"found":          len(result.Path) > 0,
		"path":           idsJSON(result.Path),
		"nodes":          recordsJSON(result.PathNodes),
		"edges":          edgesJSON(result.Edges),
		"distance":       result.Distance,
		"nodes_explored": result.NodesExplored,
		"excluded_nodes": idsJSON(result.ExcludedNodes),
		"error":          result.Error,
	})
}

type allShortestPathsRequest struct {
	Schema    schemaParam      `json:"schema" binding:"required"`
	Start     nodeIDParam      `json:"start" binding:"required"`
	End       nodeIDParam      `json:"end" binding:"required"`
	WeightCol string           `json:"weight_col"`
	MaxDepth  int              `json:"max_depth" binding:"required"`
	MaxPaths  int              `json:"max_paths"`
	Options   callOptionsParam `json:"options"`
}

// AllShortestPaths handles POST /api/v1/graph/all-shortest-paths.
func (h *PathfindingHandler) AllShortestPaths(c *gin.Context) {
	var req allShortestPathsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	maxPaths := req.MaxPaths
	if maxPaths <= 0 {
		maxPaths = 10
	}

	result, err := h.svc.AllShortestPaths(
		c.Request.Context(),
		req.Schema.toSchemaRef(),
		req.Start.toNodeID(),
		req.End.toNodeID(),
		req.WeightCol,
		req.MaxDepth,
		maxPaths,
		req.Options.toCallOptions(),
	)
	if err != nil {
		respondEngineError(c, h.log, "all_shortest_paths", err)

		return
	}

	paths := make([][]any, 0, len(result.Paths))
	for _, p := range result.Paths {
		paths = append(paths, idsJSON(p))
	}

	c.JSON(http.StatusOK, gin.H{
		"found":          len(result.Paths) > 0,
		"paths":          paths,
		"distance":       result.Distance,
		"nodes_explored": result.NodesExplored,
	})
}
