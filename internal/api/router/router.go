// Package router assembles the portal's HTTP surface.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vivasaude/portal-api/internal/appointments"
	"github.com/vivasaude/portal-api/internal/assistant"
	"github.com/vivasaude/portal-api/internal/exams"
	"github.com/vivasaude/portal-api/internal/faq"
	httpmiddleware "github.com/vivasaude/portal-api/internal/http/middleware"
	"github.com/vivasaude/portal-api/internal/webchat"
	"github.com/vivasaude/portal-api/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	ChatHandler         *assistant.Handler
	FAQHandler          *faq.Handler
	ExamsHandler        *exams.Handler
	AppointmentsHandler *appointments.Handler
	WebchatHandler      *webchat.Handler
	MetricsHandler      http.Handler
	AdminAuthSecret     string
	CORSAllowedOrigins  []string

	// Requests/sec and burst per client IP on the chat-facing endpoints.
	// ChatRateLimit <= 0 disables limiting.
	ChatRateLimit float64
	ChatRateBurst int
}

// New creates the Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Chat-facing endpoints, rate limited per IP.
	r.Group(func(public chi.Router) {
		if cfg.ChatRateLimit > 0 {
			public.Use(httpmiddleware.RateLimit(cfg.ChatRateLimit, cfg.ChatRateBurst))
		}

		if cfg.ChatHandler != nil {
			public.Route("/chat", func(r chi.Router) {
				r.Post("/start", cfg.ChatHandler.Start)
				r.Post("/message", cfg.ChatHandler.Message)
				r.Get("/{sessionID}/history", cfg.ChatHandler.History)
			})
		}
		if cfg.FAQHandler != nil {
			public.Post("/questions/ask", cfg.FAQHandler.Ask)
		}
		if cfg.ExamsHandler != nil {
			public.Route("/exams", func(r chi.Router) {
				r.Post("/authorize", cfg.ExamsHandler.Authorize)
				r.Get("/authorizations", cfg.ExamsHandler.Authorizations)
			})
		}
		if cfg.WebchatHandler != nil {
			public.Route("/webchat", func(r chi.Router) {
				r.Get("/ws", cfg.WebchatHandler.HandleWebSocket)
				r.Post("/message", cfg.WebchatHandler.HandleMessage)
				r.Get("/history", cfg.WebchatHandler.HandleHistory)
				r.Get("/widget.js", cfg.WebchatHandler.HandleWidgetJS)
			})
		}
	})

	// Catalog endpoints consumed by the site.
	if cfg.AppointmentsHandler != nil {
		r.Get("/doctors", cfg.AppointmentsHandler.ListDoctors)
		r.Get("/availabilities/{doctorID}", cfg.AppointmentsHandler.ListAvailability)
		r.Post("/appointments", cfg.AppointmentsHandler.BookFromAvailability)
	}

	// Admin endpoints, JWT gated.
	if cfg.AdminAuthSecret != "" && cfg.AppointmentsHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/appointments", cfg.AppointmentsHandler.ListByPatient)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
