// Package ws provides the WebSocket-based interview channel.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"github.com/mkravets/excel-interviewer/internal/domain"
	"github.com/mkravets/excel-interviewer/internal/interview"
)

// Handler upgrades connections and runs the interview conversation over a
// persistent bidirectional channel. One connection drives at most one
// interview; a disconnect discards the session.
type Handler struct {
	registry      *interview.Registry
	allowedOrigin string
	isDev         bool
}

// NewHandler creates a new WebSocket handler.
func NewHandler(registry *interview.Registry, allowedOrigin string, isDev bool) *Handler {
	return &Handler{
		registry:      registry,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// Inbound message types.
const (
	msgStartInterview = "start_interview"
	msgResponse       = "response"
	msgEndInterview   = "end_interview"
)

// inboundMessage is the JSON envelope the client sends.
type inboundMessage struct {
	Type          string         `json:"type"`
	Message       string         `json:"message,omitempty"`
	CandidateInfo map[string]any `json:"candidate_info,omitempty"`
}

// outboundMessage is the JSON envelope sent back to the client.
type outboundMessage struct {
	Type       string             `json:"type"`
	Message    string             `json:"message,omitempty"`
	SessionID  string             `json:"session_id,omitempty"`
	Phase      domain.Phase       `json:"phase,omitempty"`
	Evaluation *domain.Evaluation `json:"evaluation,omitempty"`
	NextAction string             `json:"next_action,omitempty"`
	Report     *domain.Report     `json:"report,omitempty"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err)
		return
	}
	defer func() {
		if closeErr := conn.Close(websocket.StatusNormalClosure, "interview ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	slog.Info("WebSocket interview connection", "ip", r.RemoteAddr)

	if err := h.writeJSON(ctx, conn, outboundMessage{
		Type:    "connection_established",
		Message: "Connected to interview service",
	}); err != nil {
		slog.Debug("Failed to send connection acknowledgment", "error", err)
		return
	}

	h.conversationLoop(ctx, conn)
}

// conversationLoop reads client messages until disconnect. A session still
// live when the loop exits is discarded: in-memory interview state does
// not survive the connection.
func (h *Handler) conversationLoop(ctx context.Context, conn *websocket.Conn) {
	sessionID := ""
	ended := false

	defer func() {
		if sessionID != "" && !ended {
			h.registry.Discard(sessionID)
		}
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "session_id", sessionID)
			} else {
				slog.Warn("WebSocket read error", "session_id", sessionID, "error", err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			// Raw frames are treated as a plain candidate response.
			msg = inboundMessage{Type: msgResponse, Message: string(data)}
		}

		var out outboundMessage
		switch msg.Type {
		case msgStartInterview:
			sessionID, out = h.handleStart(ctx, sessionID, msg.CandidateInfo)
		case msgResponse:
			out = h.handleResponse(ctx, sessionID, msg.Message)
		case msgEndInterview:
			out = h.handleEnd(ctx, sessionID)
			if out.Type == "interview_completed" {
				ended = true
			}
		default:
			out = outboundMessage{
				Type:      "error",
				Message:   "Unknown message type",
				SessionID: sessionID,
			}
		}

		if err := h.writeJSON(ctx, conn, out); err != nil {
			slog.Warn("Failed to write WebSocket response", "session_id", sessionID, "error", err)
			return
		}
	}
}

func (h *Handler) handleStart(ctx context.Context, currentID string, candidateInfo map[string]any) (string, outboundMessage) {
	if currentID != "" {
		// Replace the previous interview on this connection.
		h.registry.Discard(currentID)
	}

	id, result := h.registry.Start(ctx, candidateInfo)
	return id, outboundMessage{
		Type:      "interview_started",
		Message:   result.Message,
		SessionID: id,
		Phase:     result.Phase,
	}
}

func (h *Handler) handleResponse(ctx context.Context, sessionID, message string) outboundMessage {
	if sessionID == "" {
		return outboundMessage{Type: "error", Message: "No active interview; send start_interview first"}
	}
	if message == "" {
		return outboundMessage{
			Type:      "error",
			Message:   "A message is required",
			SessionID: sessionID,
		}
	}

	result, err := h.registry.Advance(ctx, sessionID, message)
	if err != nil {
		if errors.Is(err, interview.ErrNotFound) || errors.Is(err, interview.ErrCompleted) {
			return outboundMessage{Type: "error", Message: err.Error(), SessionID: sessionID}
		}
		slog.Error("Interview advance failed", "session_id", sessionID, "error", err)
		return outboundMessage{
			Type:      "error",
			Message:   interview.FallbackErrorMessage,
			SessionID: sessionID,
		}
	}

	return outboundMessage{
		Type:       "agent_response",
		Message:    result.Message,
		SessionID:  sessionID,
		Phase:      result.Phase,
		Evaluation: result.Evaluation,
		NextAction: result.NextAction,
		Report:     result.Report,
	}
}

func (h *Handler) handleEnd(ctx context.Context, sessionID string) outboundMessage {
	if sessionID == "" {
		return outboundMessage{Type: "error", Message: "No active interview to end"}
	}

	report, err := h.registry.End(ctx, sessionID)
	if err != nil {
		return outboundMessage{Type: "error", Message: err.Error(), SessionID: sessionID}
	}

	return outboundMessage{
		Type:      "interview_completed",
		Message:   "Thank you for completing the interview!",
		SessionID: sessionID,
		Report:    report,
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *Handler) writeJSON(ctx context.Context, conn *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}
