package service

import "errors"

// Account errors. The API layer maps each to a distinct status and message so
// the UI can route to the matching recovery flow.
var (
	// ErrInvalidCredentials covers unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailNotConfirmed is returned by Login before the signup link is used.
	ErrEmailNotConfirmed = errors.New("email_not_confirmed")

	// ErrEmailExists is returned by Signup for an already registered address.
	ErrEmailExists = errors.New("an account with this email already exists")

	// ErrVerificationExpired is returned for a known but expired emailed link.
	ErrVerificationExpired = errors.New("verification link has expired")

	// ErrInvalidVerificationToken is returned for an unknown, reused or
	// mismatched emailed link.
	ErrInvalidVerificationToken = errors.New("verification link is invalid")
)
