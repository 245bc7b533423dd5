// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"net/http"

	"github.com/conftrack/conftrack/internal/log"
)

// APIError pairs a stable machine-readable code with a human-readable
// message. The code never changes once published; clients switch on it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

var (
	ErrUnauthorized = &APIError{
		Code:    "UNAUTHORIZED",
		Message: "Authentication required",
	}
	ErrStatusUnavailable = &APIError{
		Code:    "STATUS_UNAVAILABLE",
		Message: "No refresh has completed yet",
	}
	ErrNotReady = &APIError{
		Code:    "NOT_READY",
		Message: "Dataset not published yet",
	}
	ErrRefreshFailed = &APIError{
		Code:    "REFRESH_FAILED",
		Message: "Refresh operation failed",
	}
	ErrInternal = &APIError{
		Code:    "INTERNAL",
		Message: "Internal server error",
	}
)

// writeJSON writes a JSON response with the given status code. Headers are
// already sent if encoding fails, so the error is only logged.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := log.WithComponent("api")
		logger.Error().
			Err(err).
			Int("status", code).
			Msg("failed to encode JSON response")
	}
}

// RespondError sends a structured error response to the client, carrying the
// request ID when one is present so clients can quote it in bug reports.
func RespondError(w http.ResponseWriter, r *http.Request, statusCode int, apiErr *APIError) {
	resp := struct {
		*APIError
		RequestID string `json:"requestId,omitempty"`
	}{APIError: apiErr, RequestID: log.RequestIDFromContext(r.Context())}
	writeJSON(w, statusCode, resp)
}
