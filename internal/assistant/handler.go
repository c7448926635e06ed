package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vivasaude/portal-api/internal/htmlmsg"
	"github.com/vivasaude/portal-api/pkg/logging"
)

const apologyReply = "Desculpe, tivemos um problema ao processar sua mensagem. Pode tentar novamente em instantes?"

// Handler exposes the chat endpoints of the booking assistant.
type Handler struct {
	store  *Store
	engine *Engine
	logger *logging.Logger
}

// NewHandler creates the chat HTTP handler.
func NewHandler(store *Store, engine *Engine, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, engine: engine, logger: logger.Component("chat")}
}

// Respond runs one conversation turn for a session, serialized per session
// key. Failures come back as an apologetic reply, never as an error the
// chat client has to interpret.
func (h *Handler) Respond(ctx context.Context, sessionID, message string) string {
	sess := h.store.GetOrCreate(sessionID)

	var reply string
	h.store.Do(sess, func(s *Session) {
		s.Append("user", message)
		r, err := h.engine.Advance(ctx, &s.State, message)
		if err != nil {
			h.logger.Error("conversation turn failed", "error", err, "session_id", sessionID, "phase", s.State.Phase.String())
			r = htmlmsg.Text(apologyReply)
		}
		s.Append("assistant", r)
		reply = r
	})
	return reply
}

// Greeting returns the opening prompt of a fresh conversation.
func (h *Handler) Greeting() string {
	return h.engine.Greeting()
}

// SessionHistory returns a copy of a session's transcript.
func (h *Handler) SessionHistory(sessionID string) ([]Message, bool) {
	sess, ok := h.store.Get(sessionID)
	if !ok {
		return nil, false
	}
	var msgs []Message
	h.store.Do(sess, func(s *Session) {
		msgs = append(msgs, s.History...)
	})
	return msgs, true
}

// Start handles POST /chat/start.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	// Body is optional; a missing or empty one means "new session".
	_ = json.NewDecoder(r.Body).Decode(&req)
	if strings.TrimSpace(req.SessionID) == "" {
		req.SessionID = uuid.NewString()
	}

	sess := h.store.GetOrCreate(req.SessionID)
	greeting := h.engine.Greeting()
	h.store.Do(sess, func(s *Session) {
		if len(s.History) == 0 {
			s.Append("assistant", greeting)
		}
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"sessionId": req.SessionID,
		"reply":     greeting,
	})
}

// Message handles POST /chat/message.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Message) == "" {
		http.Error(w, "sessionId e message são obrigatórios", http.StatusBadRequest)
		return
	}

	reply := h.Respond(r.Context(), req.SessionID, req.Message)
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// History handles GET /chat/{sessionID}/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, ok := h.store.Get(sessionID)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var msgs []Message
	h.store.Do(sess, func(s *Session) {
		msgs = append(msgs, s.History...)
	})
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
