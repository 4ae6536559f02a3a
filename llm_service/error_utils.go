package llm_service

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// apiErrorBody matches the error envelope both providers return.
type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Status  string `json:"status"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// APIError is a non-2xx provider response with whatever detail the body held.
type APIError struct {
	StatusCode int
	Message    string
	ErrorType  string
	RawBody    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider API error (HTTP %d)", e.StatusCode)
	}
	return fmt.Sprintf("provider API error (HTTP %d): %s (Type: %s)", e.StatusCode, e.Message, e.ErrorType)
}

// extractAPIError reads the response body and builds an APIError, keeping the
// raw body for log forensics when it is not the documented error shape.
func extractAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiErr
	}
	apiErr.RawBody = string(body)

	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		apiErr.Message = parsed.Error.Message
		apiErr.ErrorType = parsed.Error.Type
		if apiErr.ErrorType == "" {
			apiErr.ErrorType = parsed.Error.Status
		}
	}

	return apiErr
}
