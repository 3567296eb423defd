package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/gray-motion-core/internal/executor"
	"github.com/nerrad567/gray-motion-core/internal/rig"
	"github.com/nerrad567/gray-motion-core/internal/smooth"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeInternal     = "internal_error"
	ErrCodeUnavailable  = "unavailable"
	ErrCodeQueueFull    = "queue_full"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="graymotion"`)
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeConflict writes a 409 error response.
func writeConflict(w http.ResponseWriter, message string) {
	writeError(w, http.StatusConflict, ErrCodeConflict, message)
}

// writeUnavailable writes a 503 error response.
func writeUnavailable(w http.ResponseWriter, code, message string) {
	writeError(w, http.StatusServiceUnavailable, code, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeCommandError maps a controller error onto an HTTP response.
func writeCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rig.ErrUnknownSequence),
		errors.Is(err, rig.ErrUnknownScene),
		errors.Is(err, rig.ErrUnknownTrigger):
		writeNotFound(w, err.Error())
	case errors.Is(err, rig.ErrDisabled), errors.Is(err, smooth.ErrBusy):
		writeConflict(w, err.Error())
	case errors.Is(err, executor.ErrQueueFull):
		writeUnavailable(w, ErrCodeQueueFull, err.Error())
	case errors.Is(err, rig.ErrClosed),
		errors.Is(err, executor.ErrShutdown),
		errors.Is(err, smooth.ErrStopped):
		writeUnavailable(w, ErrCodeUnavailable, err.Error())
	default:
		writeInternalError(w, err.Error())
	}
}
