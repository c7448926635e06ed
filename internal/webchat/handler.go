// Package webchat bridges the embeddable site widget to the booking
// assistant over WebSocket, with a plain HTTP fallback for clients that
// cannot hold a socket.
package webchat

import (
	"context"
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/vivasaude/portal-api/internal/assistant"
	"github.com/vivasaude/portal-api/pkg/logging"
)

//go:embed widget.js
var widgetJS []byte

// Assistant is the conversation surface the channel needs; the assistant
// chat handler satisfies it. Respond blocks until the turn is handled, so
// the reply can go straight back on the same connection.
type Assistant interface {
	Respond(ctx context.Context, sessionID, message string) string
	Greeting() string
	SessionHistory(sessionID string) ([]assistant.Message, bool)
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type      string `json:"type"` // "message", "ping"
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string           `json:"type"` // "message", "history", "session", "pong", "error"
	Text      string           `json:"text,omitempty"`
	Role      string           `json:"role,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
	Messages  []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is a simplified message for history replays.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Handler manages widget connections.
type Handler struct {
	assistant Assistant
	logger    *logging.Logger
}

// NewHandler creates the webchat handler.
func NewHandler(a Assistant, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{assistant: a, logger: logger.Component("webchat")}
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and serves the conversation until
// the client goes away.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	resuming := sessionID != ""
	if !resuming {
		sessionID = generateSessionID()
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "session", SessionID: sessionID})

	if history, ok := h.assistant.SessionHistory(sessionID); resuming && ok && len(history) > 0 {
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: toHistory(history)})
	} else {
		_ = websocket.JSON.Send(conn, OutboundMessage{
			Type:      "message",
			Role:      "assistant",
			Text:      h.assistant.Greeting(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}

	h.logger.Info("connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}
		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		reply := h.assistant.Respond(r.Context(), sessionID, msg.Text)
		_ = websocket.JSON.Send(conn, OutboundMessage{
			Type:      "message",
			Role:      "assistant",
			Text:      reply,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// HandleMessage is the HTTP fallback for sending one message.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = generateSessionID()
	}

	reply := h.assistant.Respond(r.Context(), req.SessionID, req.Text)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(OutboundMessage{
		Type:      "message",
		Role:      "assistant",
		Text:      reply,
		SessionID: req.SessionID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleHistory returns the session transcript.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	history, ok := h.assistant.SessionHistory(sessionID)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"messages": toHistory(history)})
}

// HandleWidgetJS serves the embeddable widget JavaScript.
func (h *Handler) HandleWidgetJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(widgetJS)
}

func toHistory(msgs []assistant.Message) []HistoryMessage {
	out := make([]HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, HistoryMessage{
			Role:      m.Role,
			Text:      m.Content,
			Timestamp: m.At.Format(time.RFC3339),
		})
	}
	return out
}
