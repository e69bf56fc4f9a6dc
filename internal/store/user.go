package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// UserStore defines the interface for user account persistence.
type UserStore interface {
	// Create saves a new user. HashedPassword must already be set.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their normalized email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdatePassword replaces the stored password hash.
	// Returns ErrUserNotFound if the user does not exist.
	UpdatePassword(ctx context.Context, id string, hashedPassword string) error

	// Confirm marks the user's email as verified at the given time.
	// Confirming an already confirmed user keeps the original timestamp.
	Confirm(ctx context.Context, id string, at time.Time) error

	// WithTx returns a UserStore bound to the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}

// VerificationTokenStore persists single-use signup and recovery tokens.
type VerificationTokenStore interface {
	// Create stores a new token.
	Create(ctx context.Context, token *domain.VerificationToken) error

	// Consume deletes the token and returns it.
	// Returns ErrVerificationTokenNotFound if it does not exist.
	// Expiry is checked by the caller.
	Consume(ctx context.Context, token string) (*domain.VerificationToken, error)

	// DeleteForUser removes every outstanding token of kind for the user.
	DeleteForUser(ctx context.Context, userID string, kind domain.VerificationKind) error

	// WithTx returns a VerificationTokenStore bound to the provided transaction.
	WithTx(tx *sql.Tx) VerificationTokenStore
}
