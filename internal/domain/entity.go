package domain

import (
	"time"
)

// WatchlistEntry is a persisted watchlist member.
// Only identity and display fields are stored; prices are always refetched.
// IconPath stays empty until the icon is synced; Position keeps insertion order.
type WatchlistEntry struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	IconPath  string    `json:"icon_path"`
	Position  int       `json:"position" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewWatchlistEntry builds an entry from a market snapshot.
func NewWatchlistEntry(c MarketCoin) WatchlistEntry {
	return WatchlistEntry{
		ID:     c.ID,
		Symbol: c.Symbol,
		Name:   c.Name,
		Image:  c.Image,
	}
}

// AppConfig represents user-specific configuration (Key-Value)
type AppConfig struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Persisted key names, shared with the original browser storage layout.
const (
	KeyWatchlist = "crypto-watchlist"
	KeyTheme     = "crypto-theme"
	KeySettings  = "crypto-settings"
)
