// Package api provides HTTP handlers for the interviewer API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkravets/excel-interviewer/internal/interview"
	"github.com/mkravets/excel-interviewer/internal/store"
)

// maxRequestBodySize is the maximum allowed request body size (1MB).
const maxRequestBodySize = 1 << 20

// Handler provides common handler dependencies.
type Handler struct {
	registry *interview.Registry
	repo     store.Repository
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(registry *interview.Registry, repo store.Repository) *Handler {
	return &Handler{registry: registry, repo: repo}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// errorStatus maps core errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, interview.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, interview.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, interview.ErrCompleted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
