package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENVIRONMENT", "CORS_ORIGINS", "OPENAI_API_KEY", "OPENAI_BASE_URL", "DEFAULT_MODEL", "LLM_TIMEOUT_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.Environment != "dev" {
		t.Errorf("expected default environment dev, got %q", cfg.Environment)
	}
	if cfg.DefaultModel != "gpt-4o-mini" {
		t.Errorf("expected default model gpt-4o-mini, got %q", cfg.DefaultModel)
	}
	if cfg.LLMTimeout != 60*time.Second {
		t.Errorf("expected default timeout 60s, got %v", cfg.LLMTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DEFAULT_MODEL", "gpt-4o")
	t.Setenv("LLM_TIMEOUT_SECONDS", "5")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.DefaultModel != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %q", cfg.DefaultModel)
	}
	if cfg.LLMTimeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.LLMTimeout)
	}
}

func TestLoadInvalidTimeout(t *testing.T) {
	t.Setenv("LLM_TIMEOUT_SECONDS", "not-a-number")

	cfg := Load()
	if cfg.LLMTimeout != 60*time.Second {
		t.Errorf("expected fallback timeout 60s, got %v", cfg.LLMTimeout)
	}
}
