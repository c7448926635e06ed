package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("OpenAIModel = %q, want gpt-4o-mini", cfg.OpenAIModel)
	}
	if cfg.SessionTTL != 0 {
		t.Errorf("SessionTTL = %v, want 0 (eviction disabled)", cfg.SessionTTL)
	}
	if cfg.FAQCacheTTL != 10*time.Minute {
		t.Errorf("FAQCacheTTL = %v, want 10m", cfg.FAQCacheTTL)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://portal.vivasaude.com.br, https://www.vivasaude.com.br")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v, want 30m", cfg.SessionTTL)
	}
	want := []string{"https://portal.vivasaude.com.br", "https://www.vivasaude.com.br"}
	if len(cfg.CORSAllowedOrigins) != len(want) {
		t.Fatalf("CORSAllowedOrigins = %v, want %v", cfg.CORSAllowedOrigins, want)
	}
	for i := range want {
		if cfg.CORSAllowedOrigins[i] != want[i] {
			t.Errorf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], want[i])
		}
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("X_INT", "7")
	t.Setenv("X_BAD_INT", "seven")
	t.Setenv("X_DUR", "1h")

	if got := getEnvAsInt("X_INT", 3); got != 7 {
		t.Errorf("getEnvAsInt = %d, want 7", got)
	}
	if got := getEnvAsInt("X_BAD_INT", 3); got != 3 {
		t.Errorf("getEnvAsInt fallback = %d, want 3", got)
	}
	if got := getEnvAsDuration("X_DUR", time.Minute); got != time.Hour {
		t.Errorf("getEnvAsDuration = %v, want 1h", got)
	}
}
