package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/service/auth"
	"github.com/phrazzld/flashdeck/internal/store"
)

// AccountOptions configures signup confirmation and emailed links.
type AccountOptions struct {
	// RequireConfirmation blocks login until the email address is verified.
	RequireConfirmation bool
	// VerificationLifetime bounds how long an emailed link stays valid.
	VerificationLifetime time.Duration
	// PublicURL is the base of the links sent by email.
	PublicURL string
}

// AccountService manages credentials, email confirmation and password
// recovery against the relational user store.
type AccountService struct {
	db       *sql.DB
	users    store.UserStore
	tokens   store.VerificationTokenStore
	settings store.SettingsStore
	hasher   auth.PasswordHasher
	verifier auth.PasswordVerifier
	mailer   Mailer
	opts     AccountOptions
	timeFunc func() time.Time
	logger   *slog.Logger
}

// AccountDeps bundles the collaborators of an AccountService.
type AccountDeps struct {
	DB       *sql.DB
	Users    store.UserStore
	Tokens   store.VerificationTokenStore
	Settings store.SettingsStore
	Hasher   auth.PasswordHasher
	Verifier auth.PasswordVerifier
	Mailer   Mailer
}

// NewAccountService creates an AccountService. It panics if a required
// dependency is missing.
func NewAccountService(deps AccountDeps, opts AccountOptions, logger *slog.Logger) *AccountService {
	if deps.DB == nil || deps.Users == nil || deps.Tokens == nil || deps.Settings == nil {
		panic("account service requires a database and user, token and settings stores")
	}
	if deps.Hasher == nil || deps.Verifier == nil {
		panic("account service requires a password hasher and verifier")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Mailer == nil {
		deps.Mailer = NewLogMailer(logger)
	}
	if opts.VerificationLifetime <= 0 {
		opts.VerificationLifetime = 24 * time.Hour
	}

	return &AccountService{
		db:       deps.DB,
		users:    deps.Users,
		tokens:   deps.Tokens,
		settings: deps.Settings,
		hasher:   deps.Hasher,
		verifier: deps.Verifier,
		mailer:   deps.Mailer,
		opts:     opts,
		timeFunc: time.Now,
		logger:   logger.With(slog.String("component", "account_service")),
	}
}

// CurrentUser returns the account for an authenticated user id.
func (s *AccountService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// Login checks credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login for unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to retrieve user by email: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login with wrong password", slog.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	if s.opts.RequireConfirmation && !user.IsConfirmed() {
		log.Debug("login before email confirmation", slog.String("user_id", user.ID))
		return nil, ErrEmailNotConfirmed
	}

	log.Info("user logged in", slog.String("user_id", user.ID))
	return user, nil
}

// Signup creates the account and its default settings in one transaction.
// When confirmation is required the returned user is unconfirmed and a
// confirmation link is mailed.
func (s *AccountService) Signup(ctx context.Context, email, password, fullName string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	email = domain.NormalizeEmail(email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, domain.NewValidationError("email", err.Error(), err)
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, domain.NewValidationError("password", err.Error(), err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := s.timeFunc().UTC()
	user := &domain.User{
		ID:             uuid.NewString(),
		Email:          email,
		FullName:       strings.TrimSpace(fullName),
		CreatedAt:      now,
		HashedPassword: hashed,
	}
	if !s.opts.RequireConfirmation {
		user.ConfirmedAt = &now
	}

	var token *domain.VerificationToken
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		settings := domain.DefaultSettings(user.ID)
		settings.ID = uuid.NewString()
		settings.UpdatedAt = now
		if err := s.settings.WithTx(tx).Create(ctx, &settings); err != nil {
			return err
		}
		if s.opts.RequireConfirmation {
			token = s.newToken(user.ID, domain.VerificationSignup, now)
			return s.tokens.WithTx(tx).Create(ctx, token)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("signup with existing email")
			return nil, ErrEmailExists
		}
		log.Error("failed to create account", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if token != nil {
		s.send(ctx, user.Email, token)
	}

	log.Info("account created",
		slog.String("user_id", user.ID),
		slog.Bool("needs_confirmation", !user.IsConfirmed()))
	return user, nil
}

// ResendConfirmation mails a fresh confirmation link. Unknown and already
// confirmed addresses succeed silently.
func (s *AccountService) ResendConfirmation(ctx context.Context, email string) error {
	return s.issue(ctx, email, domain.VerificationSignup)
}

// ResetPassword mails a recovery link. Unknown addresses succeed silently.
func (s *AccountService) ResetPassword(ctx context.Context, email string) error {
	return s.issue(ctx, email, domain.VerificationRecovery)
}

func (s *AccountService) issue(ctx context.Context, email string, kind domain.VerificationKind) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("verification requested for unknown email", slog.String("kind", string(kind)))
			return nil
		}
		return fmt.Errorf("failed to retrieve user by email: %w", err)
	}
	if kind == domain.VerificationSignup && user.IsConfirmed() {
		return nil
	}

	token := s.newToken(user.ID, kind, s.timeFunc().UTC())
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.tokens.WithTx(tx).DeleteForUser(ctx, user.ID, kind); err != nil {
			return err
		}
		return s.tokens.WithTx(tx).Create(ctx, token)
	})
	if err != nil {
		log.Error("failed to issue verification token",
			slog.String("user_id", user.ID),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to issue %s token: %w", kind, err)
	}

	s.send(ctx, user.Email, token)
	return nil
}

// Verify consumes an emailed token and confirms the address. Both kinds
// establish a session for the token's owner.
func (s *AccountService) Verify(ctx context.Context, token string, kind domain.VerificationKind) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if token == "" || !kind.Valid() {
		return nil, ErrInvalidVerificationToken
	}

	now := s.timeFunc().UTC()
	var user *domain.User
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		vt, err := s.tokens.WithTx(tx).Consume(ctx, token)
		if err != nil {
			if store.IsNotFoundError(err) {
				return ErrInvalidVerificationToken
			}
			return err
		}
		if vt.Kind != kind {
			return ErrInvalidVerificationToken
		}
		if vt.Expired(now) {
			return ErrVerificationExpired
		}

		users := s.users.WithTx(tx)
		if err := users.Confirm(ctx, vt.UserID, now); err != nil {
			return err
		}
		user, err = users.GetByID(ctx, vt.UserID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInvalidVerificationToken) || errors.Is(err, ErrVerificationExpired) {
			log.Debug("verification rejected", slog.String("reason", err.Error()))
			return nil, err
		}
		log.Error("failed to verify token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}

	log.Info("email verified",
		slog.String("user_id", user.ID),
		slog.String("kind", string(kind)))
	return user, nil
}

// UpdatePassword replaces the password of an authenticated user.
func (s *AccountService) UpdatePassword(ctx context.Context, userID, password string) error {
	if err := domain.ValidatePassword(password); err != nil {
		return domain.NewValidationError("password", err.Error(), err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, hashed); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update password",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// Logout records the end of a session. Tokens are stateless, so nothing is revoked.
func (s *AccountService) Logout(ctx context.Context, userID string) error {
	logger.FromContextOrDefault(ctx, s.logger).Info("user logged out", slog.String("user_id", userID))
	return nil
}

func (s *AccountService) newToken(userID string, kind domain.VerificationKind, now time.Time) *domain.VerificationToken {
	return &domain.VerificationToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		ExpiresAt: now.Add(s.opts.VerificationLifetime),
		CreatedAt: now,
	}
}

// VerificationLink builds the emailed callback URL for token.
func VerificationLink(publicURL string, token *domain.VerificationToken) string {
	next := "/dashboard"
	if token.Kind == domain.VerificationRecovery {
		next = "/reset-password"
	}
	q := url.Values{}
	q.Set("token_hash", token.Token)
	q.Set("type", string(token.Kind))
	q.Set("next", next)
	return strings.TrimRight(publicURL, "/") + "/auth/callback?" + q.Encode()
}

// send delivers the link. Delivery failures are logged and not returned.
func (s *AccountService) send(ctx context.Context, email string, token *domain.VerificationToken) {
	link := VerificationLink(s.opts.PublicURL, token)
	if err := s.mailer.SendVerification(ctx, email, token.Kind, link); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to send verification email",
			slog.String("user_id", token.UserID),
			slog.String("kind", string(token.Kind)),
			slog.String("error", err.Error()))
	}
}
