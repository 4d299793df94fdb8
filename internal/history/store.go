package history

import (
	"context"
	"fmt"
	"path/filepath"

	"neonflow/internal/config"
)

// DefaultKey is the record key history is stored under.
const DefaultKey = "calc_history"

// Store persists the whole history log as one record.
type Store interface {
	// Load returns the persisted entries, or nil when nothing was stored yet.
	// A blob that fails validation yields an error wrapping ErrMalformedHistory.
	Load(ctx context.Context) ([]Entry, error)
	// Save replaces the persisted record with entries.
	Save(ctx context.Context, entries []Entry) error
	Close() error
}

// Open builds the store selected by cfg.Backend and instruments it.
func Open(cfg config.HistoryConfig) (Store, error) {
	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}

	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case config.BackendFile:
		s = NewFileStore(cfg.Path, key)
	case config.BackendSQLite:
		s, err = OpenSQLiteStore(filepath.Join(cfg.Path, "history.db"), key)
	case config.BackendMemory:
		s = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	return Instrument(s, cfg.Backend), nil
}
