package exams

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vivasaude/portal-api/pkg/logging"
)

// Handler exposes the exam authorization endpoints.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates the exams HTTP handler.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger.Component("exams_http")}
}

// Authorize handles POST /exams/authorize.
func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentText string `json:"documentText"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.DocumentText) == "" {
		http.Error(w, "documentText é obrigatório", http.StatusBadRequest)
		return
	}

	result, err := h.svc.Authorize(r.Context(), req.DocumentText)
	if err != nil {
		h.logger.Error("authorization pipeline failed", "error", err)
		http.Error(w, "falha ao processar o documento", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Authorizations handles GET /exams/authorizations?name=&birthDate=.
func (h *Handler) Authorizations(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	birthDate := strings.TrimSpace(r.URL.Query().Get("birthDate"))
	if name == "" || birthDate == "" {
		http.Error(w, "Parâmetros obrigatórios: name e birthDate (DD/MM/AAAA ou AAAA-MM-DD)", http.StatusBadRequest)
		return
	}

	results, err := h.svc.FindAuthorizations(r.Context(), name, birthDate)
	if err != nil {
		if errors.Is(err, ErrInvalidBirthDate) {
			http.Error(w, "Data de nascimento inválida. Use DD/MM/AAAA ou AAAA-MM-DD", http.StatusBadRequest)
			return
		}
		h.logger.Error("authorization lookup failed", "error", err)
		http.Error(w, "falha ao consultar autorizações", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []AuthorizationStatus{}
	}
	writeJSON(w, http.StatusOK, results)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
