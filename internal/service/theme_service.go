package service

import (
	"log/slog"
	"sync"

	"coin_dash/internal/domain"
)

// ThemeService keeps the UI theme and persists it under domain.KeyTheme.
type ThemeService struct {
	mu     sync.RWMutex
	theme  domain.Theme
	repo   domain.WatchlistRepository
	logger *slog.Logger
}

// NewThemeService restores the saved theme, falling back to def.
func NewThemeService(repo domain.WatchlistRepository, def domain.Theme) *ThemeService {
	s := &ThemeService{
		theme:  def,
		repo:   repo,
		logger: slog.Default().With("module", "theme"),
	}
	if !s.theme.Valid() {
		s.theme = domain.ThemeDark
	}

	v, ok, err := repo.GetConfig(domain.KeyTheme)
	switch {
	case err != nil:
		s.logger.Warn("Failed to load theme", slog.Any("error", err))
	case ok && domain.Theme(v).Valid():
		s.theme = domain.Theme(v)
	}
	return s
}

// Theme returns the current theme.
func (s *ThemeService) Theme() domain.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// Toggle switches light/dark, persists the choice and returns it.
// A persistence failure is logged; the in-memory theme still changes.
func (s *ThemeService) Toggle() domain.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.theme = s.theme.Toggle()
	if err := s.repo.SaveConfig(domain.KeyTheme, string(s.theme)); err != nil {
		s.logger.Warn("Failed to save theme", slog.Any("error", err))
	}
	return s.theme
}
