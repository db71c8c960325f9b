package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/relgraph/graphengine/internal/api"
	"github.com/relgraph/graphengine/internal/engine"
)

func TestPathAggregate_SumOperation(t *testing.T) {
	t.Parallel()

	svc := &fakePathAggregateService{
		result: &engine.PathAggregateResult{
			Nodes:            []engine.Record{{ID: engine.NodeID{"a"}}},
			AggregatedValues: map[string]float64{"a": 42},
			NodesVisited:     1,
		},
	}

	h := api.NewPathAggregateHandler(svc, testLogger())
	r := gin.New()
	r.POST("/graph/aggregate", h.Aggregate)

	body := `{"schema":` + testSchemaJSON + `,"start":"a","value_col":"weight","operation":"sum","max_depth":5}`
	w := doRequest(r, http.MethodPost, "/graph/aggregate", body)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if resp["operation"] != "sum" {
		t.Errorf("expected operation 'sum', got %v", resp["operation"])
	}
}

func TestPathAggregate_InvalidOperationReturns400(t *testing.T) {
	t.Parallel()

	svc := &fakePathAggregateService{result: &engine.PathAggregateResult{}}

	h := api.NewPathAggregateHandler(svc, testLogger())
	r := gin.New()
	r.POST("/graph/aggregate", h.Aggregate)

	body := `{"schema":` + testSchemaJSON + `,"start":"a","value_col":"weight","operation":"bogus","max_depth":5}`
	w := doRequest(r, http.MethodPost, "/graph/aggregate", body)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an unrecognized aggregate operation, got %d", w.Code)
	}
}

func TestPathAggregate_AcceptsEachKnownOperation(t *testing.T) {
	t.Parallel()

	for _, op := range []string{"sum", "max", "min", "multiply", "count"} {
		op := op

		t.Run(op, func(t *testing.T) {
			t.Parallel()

			svc := &fakePathAggregateService{result: &engine.PathAggregateResult{}}

			h := api.NewPathAggregateHandler(svc, testLogger())
			r := gin.New()
			r.POST("/graph/aggregate", h.Aggregate)

			body := `{"schema":` + testSchemaJSON + `,"start":"a","value_col":"weight","operation":"` + op + `","max_depth":5}`
			w := doRequest(r, http.MethodPost, "/graph/aggregate", body)

			if w.Code != http.StatusOK {
				t.Errorf("expected 200 for operation %q, got %d: %s", op, w.Code, w.Body.String())
			}
		})
	}
}
