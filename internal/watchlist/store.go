package watchlist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mohamedkhairy/market-scanner/internal/models"
	"github.com/mohamedkhairy/market-scanner/pkg/logger"
)

// Store persists the watchlist as a date-keyed JSON file. Writes go through
// a temp file and rename so a crash mid-save never truncates the store.
// Store does no locking of its own; the Manager serializes access.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Load reads the full store. A missing file is an empty store; a malformed
// file is logged and treated as empty rather than blocking the scan.
func (s *Store) Load() (map[string][]models.WatchlistEntry, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]models.WatchlistEntry{}, nil
		}
		return nil, fmt.Errorf("read watchlist %s: %w", s.path, err)
	}

	entries := map[string][]models.WatchlistEntry{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		logger.Warn("watchlist file malformed, starting empty",
			logger.String("path", s.path),
			logger.ErrorField(err))
		return map[string][]models.WatchlistEntry{}, nil
	}
	return entries, nil
}

// Save atomically replaces the store file.
func (s *Store) Save(entries map[string][]models.WatchlistEntry) error {
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal watchlist: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create watchlist dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "watchlist-*.json")
	if err != nil {
		return fmt.Errorf("create temp watchlist file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp watchlist file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp watchlist file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace watchlist file: %w", err)
	}
	return nil
}
