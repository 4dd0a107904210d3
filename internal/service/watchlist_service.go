package service

import (
	"fmt"
	"log/slog"
	"sync"

	"coin_dash/internal/domain"
)

// WatchlistService holds the ordered watchlist in memory and writes every
// change through to the repository. Last write wins.
type WatchlistService struct {
	mu      sync.RWMutex
	entries []domain.WatchlistEntry
	repo    domain.WatchlistRepository
	logger  *slog.Logger
}

// NewWatchlistService loads the persisted watchlist from repo.
func NewWatchlistService(repo domain.WatchlistRepository) (*WatchlistService, error) {
	entries, err := repo.ListWatchlist()
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}
	return &WatchlistService{
		entries: entries,
		repo:    repo,
		logger:  slog.Default().With("module", "watchlist"),
	}, nil
}

// Entries returns a copy of the watchlist in insertion order.
func (s *WatchlistService) Entries() []domain.WatchlistEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.WatchlistEntry(nil), s.entries...)
}

// Entry returns the watched entry for id.
func (s *WatchlistService) Entry(id string) (domain.WatchlistEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.entries[i], true
	}
	return domain.WatchlistEntry{}, false
}

// IDs returns the coin ids in insertion order; never nil.
func (s *WatchlistService) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		ids = append(ids, e.ID)
	}
	return ids
}

// Len returns the number of watched coins.
func (s *WatchlistService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Contains reports whether id is watched.
func (s *WatchlistService) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(id) >= 0
}

// Add appends coin unless it is already watched.
func (s *WatchlistService) Add(coin domain.MarketCoin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(coin.ID) >= 0 {
		return nil
	}
	entry := domain.NewWatchlistEntry(coin)
	if err := s.repo.UpsertWatchlistEntry(&entry); err != nil {
		return fmt.Errorf("failed to add %s: %w", coin.ID, err)
	}
	s.entries = append(s.entries, entry)
	s.logger.Info("Added to watchlist", slog.String("id", coin.ID))
	return nil
}

// Remove drops id; removing an unwatched id is a no-op.
func (s *WatchlistService) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return nil
	}
	if err := s.repo.DeleteWatchlistEntry(id); err != nil {
		return fmt.Errorf("failed to remove %s: %w", id, err)
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.logger.Info("Removed from watchlist", slog.String("id", id))
	return nil
}

// Toggle adds or removes coin and reports whether it is now watched.
func (s *WatchlistService) Toggle(coin domain.MarketCoin) (bool, error) {
	if s.Contains(coin.ID) {
		return false, s.Remove(coin.ID)
	}
	return true, s.Add(coin)
}

// Clear empties the watchlist.
func (s *WatchlistService) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.ClearWatchlist(); err != nil {
		return fmt.Errorf("failed to clear watchlist: %w", err)
	}
	s.entries = nil
	s.logger.Info("Cleared watchlist")
	return nil
}

// SetIconPath records a synced icon for id in memory and in the repository.
func (s *WatchlistService) SetIconPath(id, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return nil
	}
	entry := s.entries[i]
	entry.IconPath = path
	if err := s.repo.UpsertWatchlistEntry(&entry); err != nil {
		return err
	}
	s.entries[i] = entry
	return nil
}

// Must be called with lock held
func (s *WatchlistService) indexLocked(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
