package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier defines the interface for comparing passwords.
type PasswordVerifier interface {
	// Compare compares a hashed password with its possible plaintext equivalent.
	// Returns nil on success, or an error on failure (e.g., mismatch).
	Compare(hashedPassword, password string) error
}

// PasswordHasher produces password hashes suitable for storage.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// BcryptPasswords implements PasswordHasher and PasswordVerifier using bcrypt.
type BcryptPasswords struct {
	cost int
}

var (
	_ PasswordHasher   = (*BcryptPasswords)(nil)
	_ PasswordVerifier = (*BcryptPasswords)(nil)
)

// NewBcryptPasswords creates a bcrypt hasher with the given cost.
// Costs outside bcrypt's range fall back to bcrypt.DefaultCost.
func NewBcryptPasswords(cost int) *BcryptPasswords {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswords{cost: cost}
}

// Hash implements PasswordHasher.
func (b *BcryptPasswords) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare implements PasswordVerifier.
func (b *BcryptPasswords) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
