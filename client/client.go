// Package client provides a typed Go SDK for the graph handler engine's REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the top-level graph engine API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a graph engine client for the given base URL (e.g. "http://localhost:3030").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}

	for _, o := range opts {
		o(c)
	}

	return c
}

// Health returns the liveness check response.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	if err := c.get(ctx, "/api/v1/health", &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// Traverse calls POST /api/v1/graph/traverse.
func (c *Client) Traverse(ctx context.Context, req TraverseRequest) (map[string]any, error) {
	var resp map[string]any
	if err := c.post(ctx, "/api/v1/graph/traverse", req, &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// Aggregate calls POST /api/v1/graph/aggregate.
func (c *Client) Aggregate(ctx context.Context, req AggregateRequest) (map[string]any, error) {
	var resp map[string]any
	if err := c.post(ctx, "/api/v1/graph/aggregate", req, &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// ShortestPath calls POST /api/v1/graph/shortest-path.
func (c *Client) ShortestPath(ctx context.Context, req ShortestPathRequest) (map[string]any, error) {
	var resp map[string]any
	if err := c.post(ctx, "/api/v1/graph/shortest-path", req, &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// AllShortestPaths calls POST /api/v1/graph/all-shortest-paths.
func (c *Client) AllShortestPaths(ctx context.Context, req AllShortestPathsRequest) (map[string]any, error) {
	var resp map[string]any
	if err := c.post(ctx, "/api/v1/graph/all-shortest-paths", req, &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// Centrality calls POST /api/v1/graph/centrality.
func (c *Client) Centrality(ctx context.Context, req CentralityRequest) (map[string]any, error) {
	var resp map[string]any
	if err := c.post(ctx, "/api/v1/graph/centrality", req, &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// ConnectedComponents calls POST /api/v1/graph/connected-components.
func (c *Client) ConnectedComponents(ctx context.Context, req ConnectedComponentsRequest) (map[string]any, error) {
	var resp map[string]any
	if err := c.post(ctx, "/api/v1/graph/connected-components", req, &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// GraphDensity calls POST /api/v1/graph/density.
func (c *Client) GraphDensity(ctx context.Context, req GraphDensityRequest) (map[string]any, error) {
	var resp map[string]any
	if err := c.post(ctx, "/api/v1/graph/density", req, &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// Neighbors calls POST /api/v1/graph/neighbors.
func (c *Client) Neighbors(ctx context.Context, req NeighborsRequest) (map[string]any, error) {
	var resp map[string]any
	if err := c.post(ctx, "/api/v1/graph/neighbors", req, &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// ResilienceAnalysis calls POST /api/v1/graph/resilience.
func (c *Client) ResilienceAnalysis(ctx context.Context, req ResilienceRequest) (map[string]any, error) {
	var resp map[string]any
	if err := c.post(ctx, "/api/v1/graph/resilience", req, &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// do executes an HTTP request and decodes the JSON response.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	u := c.baseURL + path

	var bodyReader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}

		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return parseAPIError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}
