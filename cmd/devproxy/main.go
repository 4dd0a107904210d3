package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coin_dash/internal/infra"
	"coin_dash/internal/infra/devproxy"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config.yaml")
	flag.Parse()

	cfg, err := infra.LoadConfig(*configPath)
	if err != nil {
		slog.Error("❌ Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	slog.SetDefault(infra.NewLogger(cfg, os.Stdout))

	proxy, err := devproxy.NewFromConfig(cfg)
	if err != nil {
		slog.Error("❌ Failed to create proxy", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.API.APIKey == "" {
		slog.Warn("COINGECKO_API_KEY is not set, requests go out without a key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              cfg.Proxy.ListenAddr,
		Handler:           proxy,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("✅ Dev proxy listening",
			slog.String("addr", cfg.Proxy.ListenAddr),
			slog.String("prefix", cfg.Proxy.Prefix),
			slog.String("target", cfg.Proxy.Target),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Dev proxy failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("👋 Shutting down dev proxy...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", slog.Any("error", err))
	}
}
