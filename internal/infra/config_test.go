package infra

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"coin_dash/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.API.Mode != ModeProduction {
		t.Errorf("Expected production mode, got %s", cfg.API.Mode)
	}
	if cfg.BaseURL() != ProviderBaseURL {
		t.Errorf("Expected provider URL, got %s", cfg.BaseURL())
	}
	if cfg.DashboardRefresh() != 5*time.Minute {
		t.Errorf("Expected 5m dashboard refresh, got %v", cfg.DashboardRefresh())
	}
	if cfg.DebounceDelay() != 300*time.Millisecond {
		t.Errorf("Expected 300ms debounce, got %v", cfg.DebounceDelay())
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
api:
  mode: development
  proxy_url: http://localhost:9999/api
dashboard:
  default_limit: 25
ui:
  theme: light
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.BaseURL() != "http://localhost:9999/api" {
		t.Errorf("Expected proxy URL in development mode, got %s", cfg.BaseURL())
	}
	if cfg.Dashboard.DefaultLimit != 25 {
		t.Errorf("Expected limit 25, got %d", cfg.Dashboard.DefaultLimit)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Expected light theme, got %s", cfg.UI.Theme)
	}
	// untouched keys keep defaults
	if cfg.Search.DebounceMS != 300 {
		t.Errorf("Expected default debounce, got %d", cfg.Search.DebounceMS)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("COINGECKO_API_KEY", "CG-secret")
	t.Setenv("COINDASH_API_MODE", ModeDevelopment)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.API.APIKey != "CG-secret" {
		t.Errorf("Expected API key from env, got %q", cfg.API.APIKey)
	}
	if cfg.API.Mode != ModeDevelopment {
		t.Errorf("Expected development mode from env, got %s", cfg.API.Mode)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*Config)
		field string
	}{
		{"unknown mode", func(c *Config) { c.API.Mode = "staging" }, "api.mode"},
		{"bad base url", func(c *Config) { c.API.BaseURL = "ftp://x" }, "api.base_url"},
		{"limit too large", func(c *Config) { c.Dashboard.DefaultLimit = 500 }, "dashboard.default_limit"},
		{"zero debounce", func(c *Config) { c.Search.DebounceMS = 0 }, "search.debounce_ms"},
		{"bad chart range", func(c *Config) { c.Chart.DefaultDays = 14 }, "chart.default_days"},
		{"bad theme", func(c *Config) { c.UI.Theme = "sepia" }, "ui.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mut(cfg)

			err := cfg.Validate()
			var cfgErr *domain.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, cfgErr.Field)
			}
		})
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}
