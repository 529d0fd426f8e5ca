package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// HealthHandler reports process health and live interview counts.
type HealthHandler struct {
	*Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(base *Handler) *HealthHandler {
	return &HealthHandler{Handler: base}
}

// RegisterRoutes registers the health endpoint.
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"status":            status,
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
		"active_interviews": h.registry.ActiveCount(),
	})
}
