package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/relgraph/graphengine/internal/api"
	"github.com/relgraph/graphengine/internal/engine"
)

func TestCentrality_ValidatesKind(t *testing.T) {
	t.Parallel()

	svc := &fakeNetworkService{centrality: &engine.CentralityResult{}}

	h := api.NewNetworkHandler(svc, testLogger())
	r := gin.New()
	r.POST("/graph/centrality", h.Centrality)

	w := doRequest(r, http.MethodPost, "/graph/centrality", `{"schema":`+testSchemaJSON+`,"kind":"bogus"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an unrecognized centrality kind, got %d", w.Code)
	}
}

func TestCentrality_DefaultsTopN(t *testing.T) {
	t.Parallel()

	svc := &fakeNetworkService{
		centrality: &engine.CentralityResult{
			Kind:      engine.CentralityDegree,
			TopNodes:  []engine.NodeScore{{ID: engine.NodeID{"a"}, Score: 1.0}},
			NodeCount: 1,
		},
	}

	h := api.NewNetworkHandler(svc, testLogger())
	r := gin.New()
	r.POST("/graph/centrality", h.Centrality)

	w := doRequest(r, http.MethodPost, "/graph/centrality", `{"schema":`+testSchemaJSON+`,"kind":"degree"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if resp["node_count"].(float64) != 1 {
		t.Errorf("expected node_count 1, got %v", resp["node_count"])
	}

	if svc.topN != 10 {
		t.Errorf("expected default top_n 10, got %d", svc.topN)
	}
}

func TestConnectedComponents_ReturnsShapedResponse(t *testing.T) {
	t.Parallel()

	svc := &fakeNetworkService{
		components: &engine.ConnectedComponentsResult{
			Components:       []engine.ComponentInfo{{Size: 3}},
			LargestComponent: 3,
		},
	}

	h := api.NewNetworkHandler(svc, testLogger())
	r := gin.New()
	r.POST("/graph/connected-components", h.ConnectedComponents)

	w := doRequest(r, http.MethodPost, "/graph/connected-components", `{"schema":`+testSchemaJSON+`}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if resp["largest_component"].(float64) != 3 {
		t.Errorf("expected largest_component 3, got %v", resp["largest_component"])
	}
}

func TestGraphDensity_ReturnsShapedResponse(t *testing.T) {
	t.Parallel()

	svc := &fakeNetworkService{
		density: &engine.DensityResult{Nodes: 10, Edges: 20, Density: 0.22, IsDirected: true},
	}

	h := api.NewNetworkHandler(svc, testLogger())
	r := gin.New()
	r.POST("/graph/density", h.GraphDensity)

	w := doRequest(r, http.MethodPost, "/graph/density", `{"schema":`+testSchemaJSON+`}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestNeighbors_ReturnsShapedResponse(t *testing.T) {
	t.Parallel()

	svc := &fakeNetworkService{
		neighbors: &engine.NeighborsResult{OutboundCount: 2, InboundCount: 1, TotalDegree: 3},
	}

	h := api.NewNetworkHandler(svc, testLogger())
	r := gin.New()
	r.POST("/graph/neighbors", h.Neighbors)

	w := doRequest(r, http.MethodPost, "/graph/neighbors", `{"schema":`+testSchemaJSON+`,"node_id":"a"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if resp["total_degree"].(float64) != 3 {
		t.Errorf("expected total_degree 3, got %v", resp["total_degree"])
	}
}

func TestResilienceAnalysis_SurfacesNodeRemovedInfo(t *testing.T) {
	t.Parallel()

	svc := &fakeNetworkService{
		resilience: &engine.ResilienceResult{
			NodeRemoved:       engine.NodeID{"a"},
			NodeRemovedInfo:   &engine.Record{ID: engine.NodeID{"a"}, Values: map[string]any{"label": "hub"}},
			ComponentsBefore:  1,
			ComponentsAfter:   2,
			ComponentIncrease: 1,
			IsCritical:        true,
		},
	}

	h := api.NewNetworkHandler(svc, testLogger())
	r := gin.New()
	r.POST("/graph/resilience", h.ResilienceAnalysis)

	w := doRequest(r, http.MethodPost, "/graph/resilience", `{"schema":`+testSchemaJSON+`,"node_to_remove":"a"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	info, ok := resp["node_removed_info"].(map[string]any)
	if !ok {
		t.Fatalf("expected node_removed_info to be present, got %v", resp["node_removed_info"])
	}

	if info["label"] != "hub" {
		t.Errorf("expected label 'hub', got %v", info["label"])
	}

	if resp["is_critical"] != true {
		t.Errorf("expected is_critical=true, got %v", resp["is_critical"])
	}
}

func TestResilienceAnalysis_NilNodeRemovedInfoOmitsDetail(t *testing.T) {
	t.Parallel()

	svc := &fakeNetworkService{
		resilience: &engine.ResilienceResult{NodeRemoved: engine.NodeID{"a"}},
	}

	h := api.NewNetworkHandler(svc, testLogger())
	r := gin.New()
	r.POST("/graph/resilience", h.ResilienceAnalysis)

	w := doRequest(r, http.MethodPost, "/graph/resilience", `{"schema":`+testSchemaJSON+`,"node_to_remove":"a"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if resp["node_removed_info"] != nil {
		t.Errorf("expected nil node_removed_info, got %v", resp["node_removed_info"])
	}
}
