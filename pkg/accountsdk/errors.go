package accountsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

// APIError is a failed request. It is written by the server and returned by
// the client.
type APIError struct {
	StatusCode int               `json:"-"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// WriteError writes the error as {message[, details]} with its status.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, ErrorResponse{Message: e.Message, Details: e.Details})
}

// NewAPIError builds an APIError.
func NewAPIError(status int, message string) *APIError {
	return &APIError{StatusCode: status, Message: message}
}

var (
	ErrInternal = &APIError{
		StatusCode: http.StatusInternalServerError,
		Message:    "Internal server error",
	}

	ErrMalformedBody = &APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "Malformed request body",
	}
)

// ValidationError wraps field errors from Validate as a 400.
func ValidationError(details map[string]string) *APIError {
	return &APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "Validation failed",
		Details:    details,
	}
}

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		apiErr.Message = errResp.Message
		apiErr.Details = errResp.Details
		return apiErr
	}

	apiErr.Message = http.StatusText(resp.StatusCode)
	return apiErr
}
