// Package api provides HTTP API handlers and standardized error
// handling for the matching service.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/helpout/helpout-api/internal/middleware"
)

// Common error codes used throughout the API.
const (
	// ErrCodeValidation indicates input validation failure.
	ErrCodeValidation = "validation_error"

	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound = "not_found"

	// ErrCodeRateLimited indicates rate limit exceeded.
	ErrCodeRateLimited = "rate_limited"

	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal = "internal_error"

	// ErrCodeBadRequest indicates a malformed request.
	ErrCodeBadRequest = "bad_request"

	// ErrCodeDailyCapExceeded indicates the subject used up today's
	// swipe budget.
	ErrCodeDailyCapExceeded = "daily_cap_exceeded"

	// ErrCodeInvalidDirection indicates an unknown swipe direction.
	ErrCodeInvalidDirection = "invalid_direction"

	// ErrCodeNotLatestSwipe indicates an undo attempt on anything but
	// the most recent swipe.
	ErrCodeNotLatestSwipe = "not_latest_swipe"

	// ErrCodeInvalidWeights indicates a weight update violating the
	// sum-to-one invariant or range bounds.
	ErrCodeInvalidWeights = "invalid_weights"

	// ErrCodeTerminalState indicates a transition attempt on a resolved
	// match.
	ErrCodeTerminalState = "terminal_state"
)

// ErrorResponse represents the standard error response format. All API
// errors return JSON in this structure:
// {"error": {"code": "...", "message": "..."}}
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error code and human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError writes a standardized JSON error response and propagates
// the error code to the logging middleware via the context.
func WriteError(w http.ResponseWriter, ctx context.Context, status int, code, message string) {
	middleware.UpdateResponseContext(w, ctx)

	errResp := ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}

	data, err := json.Marshal(errResp)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal error response", "error", err)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.ErrorContext(ctx, "failed to write error response", "error", err)
	}
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// errorWithCode is shorthand for SetErrorCode + WriteError.
func errorWithCode(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	ctx := middleware.SetErrorCode(r.Context(), code)
	WriteError(w, ctx, status, code, message)
}
