package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"coin_dash/internal/app"
	"coin_dash/internal/infra"
	"coin_dash/internal/ui"

	tea "github.com/charmbracelet/bubbletea"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	configPath := flag.String("config", app.DefaultConfigPath, "path to config.yaml")
	flag.Parse()

	// 1. System Bootstrapping (logs go to file only, the terminal belongs to the UI)
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath, nil); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Bootstrapping failed: %v\n", err)
		os.Exit(1)
	}
	defer bootstrap.Close()
	cfg := bootstrap.Config

	// 2. Pprof Server (for performance profiling)
	if cfg.Debug.PprofAddr != "" {
		go func() {
			slog.Info("🕵️ Pprof server started", slog.String("addr", cfg.Debug.PprofAddr))
			if err := http.ListenAndServe(cfg.Debug.PprofAddr, nil); err != nil {
				slog.Error("Pprof server failed", slog.Any("error", err))
			}
		}()
	}

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Background Asset Sync
	go bootstrap.SyncAssets(ctx)

	// 5. Terminal UI
	model := ui.NewApp(ctx, ui.Options{
		Config:    cfg,
		Client:    bootstrap.Client,
		Watchlist: bootstrap.Watchlist,
		Theme:     bootstrap.Theme,
		Bus:       bootstrap.Bus,
	})
	defer model.Close()

	slog.InfoContext(ctx, "✨ CoinDash started")
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		slog.Error("UI exited with error", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
	}

	m := infra.GlobalMetrics.Snapshot()
	slog.Info("👋 Shutting down gracefully...",
		slog.Uint64("requests", m.RequestsTotal),
		slog.Uint64("errors", m.ErrorsTotal),
		slog.Uint64("stale_discarded", m.StaleDiscarded),
		slog.Uint64("searches", m.SearchesTotal),
		slog.Duration("avg_latency", m.AvgLatency),
	)
}
