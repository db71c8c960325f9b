package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/relgraph/graphengine/internal/api"
	"github.com/relgraph/graphengine/internal/engine"
)

func TestTraverse_ReturnsShapedResponse(t *testing.T) {
	t.Parallel()

	svc := &fakeTraversalService{
		result: &engine.TraverseResult{
			Nodes:        []engine.Record{{ID: engine.NodeID{"a"}}},
			NodesVisited: 1,
			DepthReached: 1,
		},
	}

	h := api.NewTraversalHandler(svc, testLogger())
	r := gin.New()
	r.POST("/graph/traverse", h.Traverse)

	body := `{"schema":` + testSchemaJSON + `,"start":"a","max_depth":3}`
	w := doRequest(r, http.MethodPost, "/graph/traverse", body)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if resp["nodes_visited"].(float64) != 1 {
		t.Errorf("expected nodes_visited 1, got %v", resp["nodes_visited"])
	}

	if svc.collecting {
		t.Error("expected plain Traverse, not TraverseCollecting, with no target_predicate")
	}
}

func TestTraverse_WithTargetPredicateUsesCollecting(t *testing.T) {
	t.Parallel()

	svc := &fakeTraversalService{result: &engine.TraverseResult{}}

	h := api.NewTraversalHandler(svc, testLogger())
	r := gin.New()
	r.POST("/graph/traverse", h.Traverse)

	body := `{"schema":` + testSchemaJSON + `,"start":"a","max_depth":3,"target_predicate":"label = 'target'"}`
	doRequest(r, http.MethodPost, "/graph/traverse", body)

	if !svc.collecting {
		t.Error("expected TraverseCollecting to be used when target_predicate is set")
	}
}

func TestTraverse_MissingRequiredFieldReturns400(t *testing.T) {
	t.Parallel()

	svc := &fakeTraversalService{result: &engine.TraverseResult{}}

	h := api.NewTraversalHandler(svc, testLogger())
	r := gin.New()
	r.POST("/graph/traverse", h.Traverse)

	w := doRequest(r, http.MethodPost, "/graph/traverse", `{"schema":`+testSchemaJSON+`}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing start/max_depth, got %d", w.Code)
	}
}

func TestTraverse_EngineErrorMapsToUnprocessableEntity(t *testing.T) {
	t.Parallel()

	svc := &fakeTraversalService{err: &engine.SubgraphTooLargeError{Estimated: 50_000, Limit: 10_000}}

	h := api.NewTraversalHandler(svc, testLogger())
	r := gin.New()
	r.POST("/graph/traverse", h.Traverse)

	body := `{"schema":` + testSchemaJSON + `,"start":"a","max_depth":3}`
	w := doRequest(r, http.MethodPost, "/graph/traverse", body)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
}
