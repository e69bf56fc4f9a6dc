package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, logger: s.logger}
}

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create", slog.String("error", err.Error()))
		return err
	}
	if user.HashedPassword == "" {
		return domain.ErrEmptyHashedPassword
	}

	query := `
		INSERT INTO users (id, email, full_name, hashed_password, confirmed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.FullName,
		user.HashedPassword,
		user.ConfirmedAt,
		user.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("email already registered", slog.String("user_id", user.ID))
			return store.ErrEmailExists
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID))
		return MapError(err)
	}

	log.Info("user created", slog.String("user_id", user.ID))
	return nil
}

const selectUserColumns = `SELECT id, email, full_name, hashed_password, confirmed_at, created_at FROM users`

func (s *PostgresUserStore) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	var (
		u           domain.User
		confirmedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, selectUserColumns+" WHERE "+where, arg).Scan(
		&u.ID,
		&u.Email,
		&u.FullName,
		&u.HashedPassword,
		&confirmedAt,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, mapEntityError(err, store.ErrUserNotFound)
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		u.ConfirmedAt = &t
	}
	return &u, nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.getOne(ctx, "id = $1", id)
	if err != nil && !errors.Is(err, store.ErrUserNotFound) {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get user by ID",
			slog.String("error", err.Error()),
			slog.String("user_id", id))
	}
	return user, err
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.getOne(ctx, "email = $1", domain.NormalizeEmail(email))
	if err != nil && !errors.Is(err, store.ErrUserNotFound) {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get user by email",
			slog.String("error", err.Error()))
	}
	return user, err
}

// UpdatePassword implements store.UserStore.UpdatePassword
func (s *PostgresUserStore) UpdatePassword(ctx context.Context, id string, hashedPassword string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if hashedPassword == "" {
		return domain.ErrEmptyHashedPassword
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET hashed_password = $1, updated_at = NOW() WHERE id = $2`,
		hashedPassword, id)
	if err != nil {
		log.Error("failed to update password",
			slog.String("error", err.Error()),
			slog.String("user_id", id))
		return mapEntityError(err, store.ErrUserNotFound)
	}
	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Info("password updated", slog.String("user_id", id))
	return nil
}

// Confirm implements store.UserStore.Confirm
func (s *PostgresUserStore) Confirm(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET confirmed_at = COALESCE(confirmed_at, $1), updated_at = NOW() WHERE id = $2`,
		at, id)
	if err != nil {
		return mapEntityError(err, store.ErrUserNotFound)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// PostgresVerificationTokenStore implements store.VerificationTokenStore.
type PostgresVerificationTokenStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresVerificationTokenStore creates a verification token store.
func NewPostgresVerificationTokenStore(db store.DBTX, logger *slog.Logger) *PostgresVerificationTokenStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresVerificationTokenStore{
		db:     db,
		logger: logger.With(slog.String("component", "verification_token_store")),
	}
}

var _ store.VerificationTokenStore = (*PostgresVerificationTokenStore)(nil)

// WithTx implements store.VerificationTokenStore.WithTx
func (s *PostgresVerificationTokenStore) WithTx(tx *sql.Tx) store.VerificationTokenStore {
	return &PostgresVerificationTokenStore{db: tx, logger: s.logger}
}

// Create implements store.VerificationTokenStore.Create
func (s *PostgresVerificationTokenStore) Create(ctx context.Context, token *domain.VerificationToken) error {
	if !token.Kind.Valid() {
		return domain.NewValidationError("kind", "is not a known verification kind", domain.ErrValidation)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verification_tokens (token, user_id, kind, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, token.Token, token.UserID, string(token.Kind), token.ExpiresAt, token.CreatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create verification token",
			slog.String("error", err.Error()),
			slog.String("user_id", token.UserID))
		return MapError(err)
	}
	return nil
}

// Consume implements store.VerificationTokenStore.Consume
func (s *PostgresVerificationTokenStore) Consume(ctx context.Context, token string) (*domain.VerificationToken, error) {
	var (
		t    domain.VerificationToken
		kind string
	)
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM verification_tokens
		WHERE token = $1
		RETURNING token, user_id, kind, expires_at, created_at
	`, token).Scan(&t.Token, &t.UserID, &kind, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return nil, mapEntityError(err, store.ErrVerificationTokenNotFound)
	}
	t.Kind = domain.VerificationKind(kind)
	return &t, nil
}

// DeleteForUser implements store.VerificationTokenStore.DeleteForUser
func (s *PostgresVerificationTokenStore) DeleteForUser(
	ctx context.Context,
	userID string,
	kind domain.VerificationKind,
) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM verification_tokens WHERE user_id = $1 AND kind = $2`,
		userID, string(kind))
	return MapError(err)
}
