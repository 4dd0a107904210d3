package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"coin_dash/internal/domain"
	"coin_dash/internal/event"
	"coin_dash/internal/infra"
	"coin_dash/internal/infra/coingecko"
	"coin_dash/internal/infra/storage"
	"coin_dash/internal/service"
)

// DefaultConfigPath is where the dashboard looks for its YAML config.
const DefaultConfigPath = "configs/config.yaml"

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config     *infra.Config
	Storage    *storage.Storage
	Downloader *infra.IconDownloader
	Client     *coingecko.Client
	Watchlist  *service.WatchlistService
	Theme      *service.ThemeService
	Bus        *event.Bus
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (DB, Dir, etc.).
// console receives log output in addition to the rotated file; the TUI
// passes nil because stdout belongs to the terminal UI.
func (b *Bootstrap) Initialize(configPath string, console io.Writer) error {
	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg, console)
	slog.SetDefault(logger)
	slog.Info("🚀 Bootstrapping CoinDash...", slog.String("mode", cfg.API.Mode), slog.String("base_url", cfg.BaseURL()))

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized")

	// 4. Initialize Icon Downloader
	downloader, err := infra.NewIconDownloader(cfg.Storage.AssetsDir)
	if err != nil {
		return err
	}
	b.Downloader = downloader
	slog.Info("✅ Icon downloader ready")

	// 5. Remote data client and persisted state
	b.Client = coingecko.NewClient(cfg)
	if cfg.API.APIKey == "" {
		slog.Warn("No API key configured, using the public rate limit")
	}

	b.Watchlist, err = service.NewWatchlistService(store)
	if err != nil {
		return err
	}
	b.Theme = service.NewThemeService(store, domain.Theme(cfg.UI.Theme))
	b.Bus = event.NewBus()
	slog.Info("✅ Watchlist loaded", slog.Int("coins", b.Watchlist.Len()))

	return nil
}

// Close releases the database.
func (b *Bootstrap) Close() error {
	if b.Storage == nil {
		return nil
	}
	if err := b.Storage.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}

// SyncAssets downloads missing icons for every watchlist entry in the
// background and records their local paths.
func (b *Bootstrap) SyncAssets(ctx context.Context) {
	slog.Info("🔄 Starting asset synchronization...")

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5) // Limit concurrent downloads

	for _, entry := range b.Watchlist.Entries() {
		if entry.IconPath != "" || entry.Image == "" {
			continue
		}

		wg.Add(1)
		go func(id, imageURL string) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}: // Acquire
			}
			defer func() { <-semaphore }() // Release

			path, err := b.Downloader.DownloadIcon(ctx, id, imageURL)
			if err != nil {
				slog.Warn("Failed to download icon", slog.String("id", id), slog.Any("error", err))
				return
			}
			if err := b.Watchlist.SetIconPath(id, path); err != nil {
				slog.Error("Failed to save icon path", slog.String("id", id), slog.Any("error", err))
			}
		}(entry.ID, entry.Image)
	}

	wg.Wait()
	slog.Info("✨ Asset synchronization completed")
}
