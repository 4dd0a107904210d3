// Package devproxy forwards /api/* to the market data provider so the
// dashboard can run in development mode with the key kept in a header.
package devproxy

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"coin_dash/internal/infra"
)

// HeaderAPIKey is the credential header injected for the provider.
const HeaderAPIKey = "x-cg-demo-api-key"

// Proxy is a prefix-stripping reverse proxy.
type Proxy struct {
	prefix string
	target *url.URL
	apiKey string
	rp     *httputil.ReverseProxy
	logger *slog.Logger
}

// New builds a proxy forwarding prefix/* to target/*.
func New(prefix, target, apiKey string) (*Proxy, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy target: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid proxy target: %q", target)
	}

	p := &Proxy{
		prefix: "/" + strings.Trim(prefix, "/"),
		target: u,
		apiKey: apiKey,
		logger: slog.Default().With("module", "devproxy"),
	}
	p.rp = &httputil.ReverseProxy{
		Rewrite:      p.rewrite,
		ErrorHandler: p.handleError,
	}
	return p, nil
}

// NewFromConfig builds a proxy from the proxy section of cfg.
func NewFromConfig(cfg *infra.Config) (*Proxy, error) {
	return New(cfg.Proxy.Prefix, cfg.Proxy.Target, cfg.API.APIKey)
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != p.prefix && !strings.HasPrefix(r.URL.Path, p.prefix+"/") {
		http.NotFound(w, r)
		return
	}

	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	p.rp.ServeHTTP(rec, r)

	p.logger.Info("Proxied request",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", rec.status),
		slog.Duration("elapsed", time.Since(start)),
	)
}

func (p *Proxy) rewrite(pr *httputil.ProxyRequest) {
	pr.Out.URL.Path = strings.TrimPrefix(pr.In.URL.Path, p.prefix)
	pr.Out.URL.RawPath = ""
	pr.SetURL(p.target)
	// SetURL rewrites Host to the target (changeOrigin)

	if p.apiKey != "" && pr.Out.Header.Get(HeaderAPIKey) == "" {
		pr.Out.Header.Set(HeaderAPIKey, p.apiKey)
	}
}

func (p *Proxy) handleError(w http.ResponseWriter, r *http.Request, err error) {
	p.logger.Warn("Upstream request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	w.WriteHeader(http.StatusBadGateway)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
