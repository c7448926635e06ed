package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	OpenAIAPIKey  string
	OpenAIModel   string
	AdminJWTSecret string

	// Conversation sessions
	SessionTTL time.Duration // 0 disables eviction

	// FAQ knowledge base
	FlowsPath string

	// Redis FAQ reply cache (optional; empty addr disables it)
	RedisAddr     string
	RedisPassword string
	FAQCacheTTL   time.Duration

	CORSAllowedOrigins []string

	// Per-IP rate limit for the chat-facing endpoints; 0 disables it.
	ChatRateLimit int
	ChatRateBurst int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		SessionTTL: getEnvAsDuration("SESSION_TTL", 0),

		FlowsPath: getEnv("FLOWS_PATH", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		FAQCacheTTL:   getEnvAsDuration("FAQ_CACHE_TTL", 10*time.Minute),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),

		ChatRateLimit: getEnvAsInt("CHAT_RATE_LIMIT", 5),
		ChatRateBurst: getEnvAsInt("CHAT_RATE_BURST", 10),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
