package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"coin_dash/internal/domain"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultUserAgent is a browser-like user agent string to avoid bot detection
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// ModeDevelopment routes requests through the local dev proxy with the key in a header.
	ModeDevelopment = "development"
	// ModeProduction calls CoinGecko directly with the key as a query parameter.
	ModeProduction = "production"

	ProviderBaseURL = "https://api.coingecko.com/api/v3"
)

// Config는 애플리케이션의 모든 설정을 담습니다.
// LoadConfig로 로드된 후에 환경 변수를 통해 민감 내용을 덮어씁니다.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		Mode       string `yaml:"mode"`
		BaseURL    string `yaml:"base_url"`  // production endpoint
		ProxyURL   string `yaml:"proxy_url"` // development endpoint (dev proxy)
		APIKey     string `yaml:"api_key"`
		TimeoutSec int    `yaml:"timeout_sec"`
		UserAgent  string `yaml:"user_agent"`
	} `yaml:"api"`

	Dashboard struct {
		DefaultOrder       string `yaml:"default_order"`
		DefaultLimit       int    `yaml:"default_limit"`
		LimitStep          int    `yaml:"limit_step"`
		RefreshIntervalSec int    `yaml:"refresh_interval_sec"`
	} `yaml:"dashboard"`

	Watchlist struct {
		RefreshIntervalSec int `yaml:"refresh_interval_sec"`
	} `yaml:"watchlist"`

	Search struct {
		DebounceMS int `yaml:"debounce_ms"`
		MaxVisible int `yaml:"max_visible"`
	} `yaml:"search"`

	Chart struct {
		DefaultDays int `yaml:"default_days"`
	} `yaml:"chart"`

	UI struct {
		Theme string `yaml:"theme"`
	} `yaml:"ui"`

	Storage struct {
		DBPath    string `yaml:"db_path"`
		AssetsDir string `yaml:"assets_dir"`
	} `yaml:"storage"`

	Proxy struct {
		ListenAddr string `yaml:"listen_addr"`
		Prefix     string `yaml:"prefix"`
		Target     string `yaml:"target"`
	} `yaml:"proxy"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`

	Debug struct {
		PprofAddr string `yaml:"pprof_addr"` // empty disables pprof
	} `yaml:"debug"`
}

// DefaultConfig returns the settings used when no file overrides them.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = "CoinDash"
	cfg.App.Version = "0.1.0"

	cfg.API.Mode = ModeProduction
	cfg.API.BaseURL = ProviderBaseURL
	cfg.API.ProxyURL = "http://localhost:8081/api"
	cfg.API.TimeoutSec = 10
	cfg.API.UserAgent = DefaultUserAgent

	cfg.Dashboard.DefaultOrder = string(domain.SortMarketCapDesc)
	cfg.Dashboard.DefaultLimit = 50
	cfg.Dashboard.LimitStep = 25
	cfg.Dashboard.RefreshIntervalSec = 300

	cfg.Watchlist.RefreshIntervalSec = 60

	cfg.Search.DebounceMS = 300
	cfg.Search.MaxVisible = 8

	cfg.Chart.DefaultDays = int(domain.Range7D)

	cfg.UI.Theme = string(domain.ThemeDark)

	cfg.Proxy.ListenAddr = "localhost:8081"
	cfg.Proxy.Prefix = "/api"
	cfg.Proxy.Target = ProviderBaseURL

	cfg.Logging.Level = "info"
	cfg.Logging.Dir = "logs"
	return &cfg
}

// LoadConfig는 설정 파일을 읽고 파싱합니다.
// A missing file is not an error: defaults plus environment are used.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// .env is optional; real environment variables take precedence over it
	_ = godotenv.Load()

	// 4원칙: 보안 우선 - 환경 변수 오버라이드 지원
	overrideWithEnv(cfg)

	// 5원칙: 설정 유효성 검사
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.API.Mode != ModeDevelopment && c.API.Mode != ModeProduction {
		return &domain.ConfigError{Field: "api.mode", Err: fmt.Errorf("unknown mode %q", c.API.Mode)}
	}
	if !isHTTPURL(c.BaseURL()) {
		return &domain.ConfigError{Field: "api.base_url", Err: fmt.Errorf("invalid URL %q", c.BaseURL())}
	}
	if c.API.TimeoutSec <= 0 {
		return &domain.ConfigError{Field: "api.timeout_sec", Err: errors.New("must be positive")}
	}

	// Dashboard
	if c.Dashboard.DefaultLimit <= 0 || c.Dashboard.DefaultLimit > 250 {
		return &domain.ConfigError{Field: "dashboard.default_limit", Err: errors.New("must be within 1..250")}
	}
	if c.Dashboard.RefreshIntervalSec < 0 || c.Watchlist.RefreshIntervalSec < 0 {
		return &domain.ConfigError{Field: "refresh_interval_sec", Err: errors.New("must not be negative")}
	}

	// Search / Chart / UI
	if c.Search.DebounceMS <= 0 {
		return &domain.ConfigError{Field: "search.debounce_ms", Err: errors.New("must be positive")}
	}
	if !domain.TimeRange(c.Chart.DefaultDays).Valid() {
		return &domain.ConfigError{Field: "chart.default_days", Err: fmt.Errorf("unsupported range %d", c.Chart.DefaultDays)}
	}
	if !domain.Theme(c.UI.Theme).Valid() {
		return &domain.ConfigError{Field: "ui.theme", Err: fmt.Errorf("unknown theme %q", c.UI.Theme)}
	}

	// Proxy
	if !isHTTPURL(c.Proxy.Target) {
		return &domain.ConfigError{Field: "proxy.target", Err: fmt.Errorf("invalid URL %q", c.Proxy.Target)}
	}

	return nil
}

// BaseURL returns the endpoint the client talks to in the configured mode.
func (c *Config) BaseURL() string {
	if c.API.Mode == ModeDevelopment {
		return c.API.ProxyURL
	}
	return c.API.BaseURL
}

// Timeout returns the HTTP client timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// DashboardRefresh returns the dashboard polling interval (0 disables).
func (c *Config) DashboardRefresh() time.Duration {
	return time.Duration(c.Dashboard.RefreshIntervalSec) * time.Second
}

// WatchlistRefresh returns the watchlist polling interval (0 disables).
func (c *Config) WatchlistRefresh() time.Duration {
	return time.Duration(c.Watchlist.RefreshIntervalSec) * time.Second
}

// DebounceDelay returns the search debounce window.
func (c *Config) DebounceDelay() time.Duration {
	return time.Duration(c.Search.DebounceMS) * time.Millisecond
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// overrideWithEnv는 환경 변수가 존재할 경우 설정 값을 덮어씁니다.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("COINGECKO_API_KEY"); key != "" {
		cfg.API.APIKey = key
	}
	if mode := os.Getenv("COINDASH_API_MODE"); mode != "" {
		cfg.API.Mode = mode
	}
	if level := os.Getenv("COINDASH_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if path := os.Getenv("COINDASH_DB_PATH"); path != "" {
		cfg.Storage.DBPath = path
	}
}
