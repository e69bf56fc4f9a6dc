package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// SettingsStore persists the per-user settings singleton.
type SettingsStore interface {
	// GetByUser returns the user's settings.
	// Returns ErrSettingsNotFound if the row does not exist.
	GetByUser(ctx context.Context, userID string) (*domain.Settings, error)

	// Create inserts the settings row; used once at signup.
	Create(ctx context.Context, settings *domain.Settings) error

	// Update writes the user-editable fields present in patch and refreshes
	// updated_at. Server-managed fields in patch are ignored.
	Update(ctx context.Context, userID string, patch domain.SettingsPatch) (*domain.Settings, error)

	// WithTx returns a SettingsStore bound to the provided transaction.
	WithTx(tx *sql.Tx) SettingsStore
}

// StudySessionStore persists append-only study history.
type StudySessionStore interface {
	// ListByUser returns the user's sessions, most recent first.
	ListByUser(ctx context.Context, userID string) ([]domain.StudySession, error)

	// Create inserts a session record.
	Create(ctx context.Context, session *domain.StudySession) error

	// WithTx returns a StudySessionStore bound to the provided transaction.
	WithTx(tx *sql.Tx) StudySessionStore
}

// StateStore is a key/value store for serialized application state.
type StateStore interface {
	// Load returns the value stored under key.
	// Returns ErrStateNotFound if nothing has been stored.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save stores value under key, replacing any previous value.
	Save(ctx context.Context, key string, value []byte) error
}
