package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/vivasaude/portal-api/internal/api/router"
	"github.com/vivasaude/portal-api/internal/appointments"
	"github.com/vivasaude/portal-api/internal/assistant"
	appconfig "github.com/vivasaude/portal-api/internal/config"
	"github.com/vivasaude/portal-api/internal/exams"
	"github.com/vivasaude/portal-api/internal/faq"
	"github.com/vivasaude/portal-api/internal/observability/metrics"
	"github.com/vivasaude/portal-api/internal/webchat"
	"github.com/vivasaude/portal-api/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting portal API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.OpenAIAPIKey == "" {
		logger.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	portalMetrics := metrics.NewPortalMetrics(registry)

	// Booking assistant.
	apptRepo := appointments.NewRepository(pool)
	sessionStore := assistant.NewStore(cfg.SessionTTL)
	defer sessionStore.Close()
	engine := assistant.NewEngine(apptRepo, portalMetrics, logger)
	chatHandler := assistant.NewHandler(sessionStore, engine, logger)

	// FAQ flow matcher, with an optional Redis reply cache.
	kb, err := faq.Load(cfg.FlowsPath)
	if err != nil {
		logger.Error("failed to load FAQ knowledge base", "error", err, "path", cfg.FlowsPath)
		os.Exit(1)
	}
	var faqCache *faq.ReplyCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		faqCache = faq.NewReplyCache(rdb, cfg.FAQCacheTTL, logger)
		logger.Info("FAQ reply cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.FAQCacheTTL)
	}
	faqHandler := faq.NewHandler(faq.NewService(kb, faqCache, portalMetrics, logger))

	// Exam authorization pipeline.
	extractor := exams.NewOpenAIExtractor(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	examsRepo := exams.NewRepository(pool)
	examsHandler := exams.NewHandler(exams.NewService(extractor, examsRepo, logger), logger)

	routerCfg := &router.Config{
		Logger:              logger,
		ChatHandler:         chatHandler,
		FAQHandler:          faqHandler,
		ExamsHandler:        examsHandler,
		AppointmentsHandler: appointments.NewHandler(apptRepo, logger),
		WebchatHandler:      webchat.NewHandler(chatHandler, logger),
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		ChatRateLimit:       float64(cfg.ChatRateLimit),
		ChatRateBurst:       cfg.ChatRateBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
