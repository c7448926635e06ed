package faq

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Handler exposes the question endpoint.
type Handler struct {
	svc *Service
}

// NewHandler creates the FAQ HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Ask handles POST /questions/ask.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text é obrigatório", http.StatusBadRequest)
		return
	}

	ans := h.svc.Ask(r.Context(), req.Text)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(ans)
}
