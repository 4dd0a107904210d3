package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"coin_dash/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var _ domain.WatchlistRepository = (*Storage)(nil)

// Storage persists the watchlist and user settings in SQLite.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the database at dbPath.
// An empty dbPath resolves to the per-user config directory.
func NewStorage(dbPath string) (*Storage, error) {
	if dbPath == "" {
		p, err := getDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
		dbPath = p
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return newStorage(db)
}

func newStorage(db *gorm.DB) (*Storage, error) {
	if err := db.AutoMigrate(&domain.WatchlistEntry{}, &domain.AppConfig{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Storage{db: db}, nil
}

// getDBPath resolves the database file path based on OS
func getDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "CoinDash", "data", "coindash.db"), nil
}

// Close releases the underlying connection.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ======================================================================================
// Watchlist Operations
// ======================================================================================

// UpsertWatchlistEntry creates or updates an entry. New entries are appended
// after the current last position; existing entries keep theirs.
func (s *Storage) UpsertWatchlistEntry(entry *domain.WatchlistEntry) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing domain.WatchlistEntry
		err := tx.First(&existing, "id = ?", entry.ID).Error
		switch {
		case err == nil:
			entry.Position = existing.Position
			entry.CreatedAt = existing.CreatedAt
		case errors.Is(err, gorm.ErrRecordNotFound):
			var last []domain.WatchlistEntry
			if err := tx.Order("position desc").Limit(1).Find(&last).Error; err != nil {
				return err
			}
			entry.Position = 0
			if len(last) > 0 {
				entry.Position = last[0].Position + 1
			}
		default:
			return err
		}
		return tx.Save(entry).Error
	})
}

// GetWatchlistEntry retrieves an entry by coin id
func (s *Storage) GetWatchlistEntry(id string) (*domain.WatchlistEntry, error) {
	var entry domain.WatchlistEntry
	err := s.db.First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListWatchlist returns all entries in insertion order.
func (s *Storage) ListWatchlist() ([]domain.WatchlistEntry, error) {
	var entries []domain.WatchlistEntry
	err := s.db.Order(clause.OrderByColumn{Column: clause.Column{Name: "position"}}).Find(&entries).Error
	return entries, err
}

// SetIconPath records the local icon of an entry.
func (s *Storage) SetIconPath(id, path string) error {
	return s.db.Model(&domain.WatchlistEntry{}).Where("id = ?", id).Update("icon_path", path).Error
}

// DeleteWatchlistEntry removes an entry; removing an absent id is a no-op.
func (s *Storage) DeleteWatchlistEntry(id string) error {
	return s.db.Where("id = ?", id).Delete(&domain.WatchlistEntry{}).Error
}

// ClearWatchlist removes every entry.
func (s *Storage) ClearWatchlist() error {
	return s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.WatchlistEntry{}).Error
}

// ======================================================================================
// Config Operations
// ======================================================================================

// SaveConfig saves a user configuration
func (s *Storage) SaveConfig(key, value string) error {
	config := domain.AppConfig{
		Key:   key,
		Value: value,
	}
	return s.db.Save(&config).Error
}

// GetConfig returns the value stored under key and whether it exists.
func (s *Storage) GetConfig(key string) (string, bool, error) {
	var config domain.AppConfig
	err := s.db.Where(&domain.AppConfig{Key: key}).First(&config).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return config.Value, true, nil
}

// LoadConfigMap loads all user configurations as a map
func (s *Storage) LoadConfigMap() (map[string]string, error) {
	var configs []domain.AppConfig
	if err := s.db.Find(&configs).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for _, cfg := range configs {
		result[cfg.Key] = cfg.Value
	}
	return result, nil
}
