package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/relgraph/graphengine/internal/api"
	"github.com/relgraph/graphengine/internal/engine"
)

func TestShortestPath_FoundReportsPathAndDistance(t *testing.T) {
	t.Parallel()

	dist := 3.5
	svc := &fakePathfindingService{
		shortestResult: &engine.ShortestPathResult{
			Path:          []engine.NodeID{{"a"}, {"b"}},
			PathNodes:     []engine.Record{{ID: engine.NodeID{"a"}}, {ID: engine.NodeID{"b"}}},
			Distance:      &dist,
			NodesExplored: 4,
		},
	}

	h := api.NewPathfindingHandler(svc, testLogger())
	r := gin.New()
	r.POST("/graph/shortest-path", h.ShortestPath)

	body := `{"schema":` + testSchemaJSON + `,"start":"a","end":"b","max_depth":5}`
	w := doRequest(r, http.MethodPost, "/graph/shortest-path", body)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if resp["found"] != true {
		t.Errorf("expected found=true, got %v", resp["found"])
	}

	if resp["distance"].(float64) != 3.5 {
		t.Errorf("expected distance 3.5, got %v", resp["distance"])
	}
}

func TestShortestPath_NotFoundReportsFoundFalse(t *testing.T) {
	t.Parallel()

	svc := &fakePathfindingService{
		shortestResult: &engine.ShortestPathResult{Error: "no path exists"},
	}

	h := api.NewPathfindingHandler(svc, testLogger())
	r := gin.New()
	r.POST("/graph/shortest-path", h.ShortestPath)

	body := `{"schema":` + testSchemaJSON + `,"start":"a","end":"z","max_depth":5}`
	w := doRequest(r, http.MethodPost, "/graph/shortest-path", body)

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if resp["found"] != false {
		t.Errorf("expected found=false when no path exists, got %v", resp["found"])
	}
}

func TestAllShortestPaths_DefaultsMaxPaths(t *testing.T) {
	t.Parallel()

	svc := &fakePathfindingService{
		allResult: &engine.AllShortestPathsResult{
			Paths: [][]engine.NodeID{{{"a"}, {"b"}}},
		},
	}

	h := api.NewPathfindingHandler(svc, testLogger())
	r := gin.New()
	r.POST("/graph/all-shortest-paths", h.AllShortestPaths)

	body := `{"schema":` + testSchemaJSON + `,"start":"a","end":"b","max_depth":5}`
	w := doRequest(r, http.MethodPost, "/graph/all-shortest-paths", body)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if resp["found"] != true {
		t.Errorf("expected found=true, got %v", resp["found"])
	}

	if svc.maxPaths != 10 {
		t.Errorf("expected default max_paths 10, got %d", svc.maxPaths)
	}
}
