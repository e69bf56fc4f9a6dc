package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// KVStore implements store.StateStore on a SQLite table.
type KVStore struct {
	conn   *sql.DB
	logger *slog.Logger
}

var _ store.StateStore = (*KVStore)(nil)

// Open opens (or creates) the SQLite database at path and ensures the kv table exists.
// Use ":memory:" for a throwaway store.
func Open(ctx context.Context, path string, logger *slog.Logger) (*KVStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to state database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply state schema: %w", err)
	}

	return &KVStore{
		conn:   db,
		logger: logger.With(slog.String("component", "state_kv_store")),
	}, nil
}

// Close closes the database connection.
func (s *KVStore) Close() error {
	return s.conn.Close()
}

// Load implements store.StateStore.Load
func (s *KVStore) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.conn.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrStateNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load state",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load state %q: %w", key, err)
	}
	return value, nil
}

// Save implements store.StateStore.Save
func (s *KVStore) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save state",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save state %q: %w", key, err)
	}
	return nil
}
