package client

import (
	"encoding/json"
	"fmt"
)

// APIError represents a structured error response from the graph engine API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	base := fmt.Sprintf("graphengine: %d %s: %s", e.StatusCode, e.Code, e.Message)
	if e.RequestID == "" {
		return base
	}

	return fmt.Sprintf("%s (request_id=%s)", base, e.RequestID)
}

// Error codes the graph engine API returns in APIError.Code, mirroring
// internal/api's ErrCode* constants on the server side.
const (
	codeTooLarge    = "subgraph_too_large"
	codeSafetyLimit = "safety_limit_exceeded"
)

func errCode(err error) (string, bool) {
	e, ok := err.(*APIError)
	if !ok {
		return "", false
	}

	return e.Code, true
}

// IsNotFound returns true if the error is a 404 not found.
func IsNotFound(err error) bool {
	e, ok := err.(*APIError)

	return ok && e.StatusCode == 404
}

// IsTooLarge returns true if a pre-run estimate rejected the call as too
// large (call again with a larger max_nodes, or with skip_estimation set to
// bypass the estimate).
func IsTooLarge(err error) bool {
	code, ok := errCode(err)

	return ok && code == codeTooLarge
}

// IsSafetyLimitExceeded returns true if a call aborted mid-run after
// breaching a live safety limit (depth or visited-node count), distinct from
// IsTooLarge's pre-run rejection.
func IsSafetyLimitExceeded(err error) bool {
	code, ok := errCode(err)

	return ok && code == codeSafetyLimit
}

// parseAPIError attempts to decode a JSON error body; falls back to raw text.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = "unknown"
		apiErr.Message = string(body)
	}

	return apiErr
}
