package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/relgraph/graphengine/internal/engine"
)

// NetworkHandler serves the whole-graph network analysis endpoints.
type NetworkHandler struct {
	svc NetworkService
	log *logrus.Logger
}

// NewNetworkHandler creates a NetworkHandler.
func NewNetworkHandler(svc NetworkService, log *logrus.Logger) *NetworkHandler {
	return &NetworkHandler{svc: svc, log: log}
}

type centralityRequest struct {
	Schema    schemaParam `json:"schema" binding:"required"`
	Kind      string      `json:"kind" binding:"required"`
	TopN      int         `json:"top_n"`
	WeightCol string      `json:"weight_col"`
}

// Centrality handles POST /api/v1/graph/centrality.
func (h *NetworkHandler) Centrality(c *gin.Context) {
	var req centralityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	kind := engine.CentralityKind(req.Kind)

	switch kind {
	case engine.CentralityDegree, engine.CentralityBetweenness, engine.CentralityCloseness, engine.CentralityPageRank:
	default:
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "kind must be one of degree|betweenness|closeness|pagerank")

		return
	}

	topN := req.TopN
	if topN <= 0 {
		topN = 10
	}

	result, err := h.svc.Centrality(c.Request.Context(), req.Schema.toSchemaRef(), kind, topN, req.WeightCol)
	if err != nil {
		respondEngineError(c, h.log, "centrality", err)

		return
	}

	scores := make([]gin.H, 0, len(result.TopNodes))
	for _, s := range result.TopNodes {
		scores = append(scores, gin.H{
			"id":    []any(s.ID),
			"score": s.Score,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"kind":       result.Kind,
		"top_nodes":  scores,
		"node_count": result.NodeCount,
		"edge_count": result.EdgeCount,
	})
}

type connectedComponentsRequest struct {
	Schema  schemaParam `json:"schema" binding:"required"`
	MinSize int         `json:"min_size"`
}

// ConnectedComponents handles POST /api/v1/graph/connected-components.
func (h *NetworkHandler) ConnectedComponents(c *gin.Context) {
	var req connectedComponentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	minSize := req.MinSize
	if minSize <= 0 {
		minSize = 1
	}

	result, err := h.svc.ConnectedComponents(c.Request.Context(), req.Schema.toSchemaRef(), minSize)
	if err != nil {
		respondEngineError(c, h.log, "connected_components", err)

		return
	}

	components := make([]gin.H, 0, len(result.Components))
	for _, comp := range result.Components {
		components = append(components, gin.H{
			"size":   comp.Size,
			"sample": recordsJSON(comp.Sample),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"components":        components,
		"isolated_nodes":    idsJSON(result.IsolatedNodes),
		"largest_component": result.LargestComponent,
	})
}

type graphDensityRequest struct {
	Schema    schemaParam `json:"schema" binding:"required"`
	WeightCol string      `json:"weight_col"`
}

// GraphDensity handles POST /api/v1/graph/density.
func (h *NetworkHandler) GraphDensity(c *gin.Context) {
	var req graphDensityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	result, err := h.svc.GraphDensity(c.Request.Context(), req.Schema.toSchemaRef(), req.WeightCol)
	if err != nil {
		respondEngineError(c, h.log, "graph_density", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"nodes":                 result.Nodes,
		"edges":                 result.Edges,
		"density":               result.Density,
		"is_directed":           result.IsDirected,
		"is_weakly_connected":   result.IsWeaklyConnected,
		"is_strongly_connected": result.IsStronglyConnected,
		"avg_degree":            result.AvgDegree,
		"max_degree":            result.MaxDegree,
		"min_degree":            result.MinDegree,
	})
}

type neighborsRequest struct {
	Schema    schemaParam `json:"schema" binding:"required"`
	NodeID    nodeIDParam `json:"node_id" binding:"required"`
	Direction string      `json:"direction"`
}

// Neighbors handles POST /api/v1/graph/neighbors.
func (h *NetworkHandler) Neighbors(c *gin.Context) {
	var req neighborsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	result, err := h.svc.Neighbors(c.Request.Context(), req.Schema.toSchemaRef(), req.NodeID.toNodeID(), directionOrDefault(req.Direction))
	if err != nil {
		respondEngineError(c, h.log, "neighbors", err)

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"neighbors":      recordsJSON(result.Neighbors),
		"outbound_count": result.OutboundCount,
		"inbound_count":  result.InboundCount,
		"total_degree":   result.TotalDegree,
	})
}

type resilienceRequest struct {
	Schema       schemaParam `json:"schema" binding:"required"`
	NodeToRemove nodeIDParam `json:"node_to_remove" binding:"required"`
}

// ResilienceAnalysis handles POST /api/v1/graph/resilience.
func (h *NetworkHandler) ResilienceAnalysis(c *gin.Context) {
	var req resilienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	result, err := h.svc.ResilienceAnalysis(c.Request.Context(), req.Schema.toSchemaRef(), req.NodeToRemove.toNodeID())
	if err != nil {
		respondEngineError(c, h.log, "resilience_analysis", err)

		return
	}

	pairs := make([][2]any, 0, len(result.DisconnectedPairs))
	for _, p := range result.DisconnectedPairs {
		pairs = append(pairs, [2]any{[]any(p[0]), []any(p[1])})
	}

	var nodeRemovedInfo map[string]any
	if result.NodeRemovedInfo != nil {
		nodeRemovedInfo = recordJSON(*result.NodeRemovedInfo)
	}

	c.JSON(http.StatusOK, gin.H{
		"node_removed":        []any(result.NodeRemoved),
		"node_removed_info":   nodeRemovedInfo,
		"disconnected_pairs": pairs,
		"components_before":  result.ComponentsBefore,
		"components_after":   result.ComponentsAfter,
		"component_increase": result.ComponentIncrease,
		"isolated_nodes":     idsJSON(result.IsolatedNodes),
		"affected_node_count": result.AffectedNodeCount,
		"is_critical":        result.IsCritical,
		"error":              result.Error,
	})
}
