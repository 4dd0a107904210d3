package domain

import (
	"context"
)

// MarketDataClient is the Remote Data Client boundary.
type MarketDataClient interface {
	GetMarkets(ctx context.Context, params MarketsParams) ([]MarketCoin, error)
	GetCoinDetail(ctx context.Context, id string) (*CoinDetail, error)
	GetHistory(ctx context.Context, id string, r TimeRange, currency string) (*PriceHistory, error)
	Search(ctx context.Context, query string) ([]SearchCoin, error)
}

// WatchlistRepository defines how watchlist entries and settings are persisted.
type WatchlistRepository interface {
	ListWatchlist() ([]WatchlistEntry, error)
	UpsertWatchlistEntry(entry *WatchlistEntry) error
	DeleteWatchlistEntry(id string) error
	ClearWatchlist() error
	SaveConfig(key, value string) error
	GetConfig(key string) (string, bool, error)
}
