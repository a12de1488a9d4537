package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "SERVER_PORT", "LOG_LEVEL", "LOG_FORMAT",
		"OPENAI_MODEL", "OPENAI_TEMPERATURE", "OPENAI_MAX_TOKENS", "OPENAI_TIMEOUT_SECONDS",
		"PRICE_INCREASE_MAX", "PRICE_DECREASE_MAX", "DEFAULT_LOCATION", "HIGH_COMPETITOR_COUNT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected default log format json, got %s", cfg.Logging.Format)
	}
	if cfg.Logging.Level != slog.LevelInfo {
		t.Errorf("expected default log level info, got %v", cfg.Logging.Level)
	}
	if cfg.OpenAI.Model != "gpt-4-turbo-preview" {
		t.Errorf("expected default model gpt-4-turbo-preview, got %s", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.Temperature != 0.7 {
		t.Errorf("expected default temperature 0.7, got %v", cfg.OpenAI.Temperature)
	}
	if cfg.OpenAI.MaxTokens != 400 {
		t.Errorf("expected default max tokens 400, got %d", cfg.OpenAI.MaxTokens)
	}
	if cfg.OpenAI.Timeout != 60*time.Second {
		t.Errorf("expected default timeout 60s, got %v", cfg.OpenAI.Timeout)
	}
	if cfg.Pricing.PriceIncreaseMax != 1.3 || cfg.Pricing.PriceDecreaseMax != 0.7 {
		t.Errorf("expected default price bounds 1.3/0.7, got %v/%v",
			cfg.Pricing.PriceIncreaseMax, cfg.Pricing.PriceDecreaseMax)
	}
	if cfg.Pricing.ConservativeAdjustment != 1.05 {
		t.Errorf("expected default conservative adjustment 1.05, got %v", cfg.Pricing.ConservativeAdjustment)
	}
	if cfg.Pricing.DefaultInternalWeight != 0.6 || cfg.Pricing.DefaultExternalWeight != 0.4 {
		t.Errorf("expected default weights 0.6/0.4, got %v/%v",
			cfg.Pricing.DefaultInternalWeight, cfg.Pricing.DefaultExternalWeight)
	}
	if cfg.Pricing.HighCompetitorCount != 3 {
		t.Errorf("expected default competitor count 3, got %d", cfg.Pricing.HighCompetitorCount)
	}
	if cfg.Pricing.DefaultLocation != "default" {
		t.Errorf("expected default location, got %s", cfg.Pricing.DefaultLocation)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("OPENAI_TEMPERATURE", "0.5")
	t.Setenv("OPENAI_MAX_TOKENS", "250")
	t.Setenv("OPENAI_TIMEOUT_SECONDS", "30")
	t.Setenv("PRICE_INCREASE_MAX", "1.2")
	t.Setenv("PRICE_DECREASE_MAX", "0.8")
	t.Setenv("DEFAULT_LOCATION", "downtown")
	t.Setenv("HIGH_COMPETITOR_COUNT", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Logging.Level != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected text format, got %s", cfg.Logging.Format)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("expected API key to be read, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %s", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.Temperature != 0.5 {
		t.Errorf("expected temperature 0.5, got %v", cfg.OpenAI.Temperature)
	}
	if cfg.OpenAI.MaxTokens != 250 {
		t.Errorf("expected max tokens 250, got %d", cfg.OpenAI.MaxTokens)
	}
	if cfg.OpenAI.Timeout != 30*time.Second {
		t.Errorf("expected timeout 30s, got %v", cfg.OpenAI.Timeout)
	}
	if cfg.Pricing.PriceIncreaseMax != 1.2 || cfg.Pricing.PriceDecreaseMax != 0.8 {
		t.Errorf("expected price bounds 1.2/0.8, got %v/%v",
			cfg.Pricing.PriceIncreaseMax, cfg.Pricing.PriceDecreaseMax)
	}
	if cfg.Pricing.DefaultLocation != "downtown" {
		t.Errorf("expected location downtown, got %s", cfg.Pricing.DefaultLocation)
	}
	if cfg.Pricing.HighCompetitorCount != 5 {
		t.Errorf("expected competitor count 5, got %d", cfg.Pricing.HighCompetitorCount)
	}
}

func TestLoadServerPortFallback(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SERVER_PORT", "3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "3000" {
		t.Errorf("expected SERVER_PORT fallback 3000, got %s", cfg.Server.Port)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"bad temperature", "OPENAI_TEMPERATURE", "hot"},
		{"zero max tokens", "OPENAI_MAX_TOKENS", "0"},
		{"negative timeout", "OPENAI_TIMEOUT_SECONDS", "-1"},
		{"bad price bound", "PRICE_INCREASE_MAX", "thirty"},
		{"negative competitor count", "HIGH_COMPETITOR_COUNT", "-3"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}
