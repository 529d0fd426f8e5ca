package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkravets/excel-interviewer/internal/interview"
)

// InterviewHandler exposes the interview lifecycle over HTTP.
type InterviewHandler struct {
	*Handler
}

// NewInterviewHandler creates a new interview handler.
func NewInterviewHandler(base *Handler) *InterviewHandler {
	return &InterviewHandler{Handler: base}
}

// RegisterRoutes registers interview routes.
func (h *InterviewHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/interview", func(r chi.Router) {
		r.Post("/start", h.Start)
		r.Post("/{sessionID}/message", h.Message)
		r.Post("/{sessionID}/end", h.End)
	})
	r.Route("/api/interviews", func(r chi.Router) {
		r.Get("/recent", h.ListRecent)
		r.Get("/{sessionID}", h.GetArchived)
	})
}

type messageRequest struct {
	Message string `json:"message"`
}

// Start handles POST /api/interview/start. The body is an opaque JSON
// object describing the candidate; it is stored on the session as-is.
func (h *InterviewHandler) Start(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var candidateInfo map[string]any
	if err := json.NewDecoder(r.Body).Decode(&candidateInfo); err != nil && !errors.Is(err, io.EOF) {
		Error(w, http.StatusBadRequest, "invalid candidate info")
		return
	}

	sessionID, result := h.registry.Start(r.Context(), candidateInfo)

	JSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"message":    result.Message,
		"status":     "started",
	})
}

// Message handles POST /api/interview/{sessionID}/message.
func (h *InterviewHandler) Message(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		err := fmt.Errorf("%w: message is required", interview.ErrMalformedInput)
		Error(w, errorStatus(err), err.Error())
		return
	}

	result, err := h.registry.Advance(r.Context(), sessionID, req.Message)
	if err != nil {
		slog.Warn("Failed to advance interview", "session_id", sessionID, "error", err)
		Error(w, errorStatus(err), err.Error())
		return
	}

	JSON(w, http.StatusOK, result)
}

// End handles POST /api/interview/{sessionID}/end.
func (h *InterviewHandler) End(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	report, err := h.registry.End(r.Context(), sessionID)
	if err != nil {
		Error(w, errorStatus(err), err.Error())
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"status":     "completed",
		"report":     report,
	})
}

// ListRecent handles GET /api/interviews/recent, serving archived reports.
func (h *InterviewHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		Error(w, http.StatusServiceUnavailable, "archive not available")
		return
	}

	records, err := h.repo.ListRecent(r.Context(), 20)
	if err != nil {
		slog.Error("Failed to list archived interviews", "error", err)
		Error(w, http.StatusInternalServerError, "failed to list interviews")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{"interviews": records})
}

// GetArchived handles GET /api/interviews/{sessionID}.
func (h *InterviewHandler) GetArchived(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		Error(w, http.StatusServiceUnavailable, "archive not available")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	rec, err := h.repo.GetInterview(r.Context(), sessionID)
	if err != nil {
		slog.Error("Failed to load archived interview", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load interview")
		return
	}
	if rec == nil {
		Error(w, http.StatusNotFound, "interview not found")
		return
	}

	JSON(w, http.StatusOK, rec)
}
