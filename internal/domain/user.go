package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// User validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 6 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// Password length bounds. 72 is bcrypt's input limit.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// User is an authenticated account. The application treats it as read-mostly
// after login; credentials live only in the remote user store.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"-"`
	// HashedPassword is never serialized.
	HashedPassword string `json:"-"`
}

// IsConfirmed reports whether the email address has been verified.
func (u *User) IsConfirmed() bool {
	return u.ConfirmedAt != nil
}

// Validate checks identity fields. Password rules are checked separately by
// ValidatePassword because stored users only carry a hash.
func (u *User) Validate() error {
	if u.ID == "" {
		return ErrEmptyUserID
	}
	return ValidateEmail(u.Email)
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email is a bare address.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmptyEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces the password length bounds.
func ValidatePassword(password string) error {
	switch {
	case len(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > MaxPasswordLength:
		return ErrPasswordTooLong
	}
	return nil
}

// VerificationKind distinguishes the two emailed-link flows.
type VerificationKind string

const (
	VerificationSignup   VerificationKind = "signup"
	VerificationRecovery VerificationKind = "recovery"
)

// Valid reports whether k is a known verification kind.
func (k VerificationKind) Valid() bool {
	return k == VerificationSignup || k == VerificationRecovery
}

// VerificationToken is a single-use emailed link secret for signup
// confirmation or password recovery.
type VerificationToken struct {
	Token     string
	UserID    string
	Kind      VerificationKind
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is no longer usable at now.
func (t *VerificationToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
