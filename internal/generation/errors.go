package generation

import (
	"errors"
	"fmt"
)

// Errors returned by the generation package. Each maps to a distinct
// user-facing outcome; none is retried.
var (
	// ErrNotConfigured is returned when no provider API key is configured.
	ErrNotConfigured = errors.New("card generation is not configured")

	// ErrMissingStudyText is returned when study text is absent or not a string.
	ErrMissingStudyText = errors.New("study text is required")

	// ErrQuotaExceeded is returned when the provider rate-limits the request.
	ErrQuotaExceeded = errors.New("provider quota exceeded")

	// ErrInvalidRequest is returned when the provider rejects the request as malformed.
	ErrInvalidRequest = errors.New("provider rejected request")

	// ErrUpstream is returned for every other provider failure.
	ErrUpstream = errors.New("provider request failed")

	// ErrParseResponse is returned when the provider reply is not a JSON card array.
	ErrParseResponse = errors.New("could not parse AI response")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// ProviderError carries the provider's own message alongside one of the
// provider sentinels (ErrQuotaExceeded, ErrInvalidRequest, ErrUpstream).
type ProviderError struct {
	Kind       error
	StatusCode int
	Message    string
}

// NewProviderError builds a ProviderError.
func NewProviderError(kind error, statusCode int, message string) *ProviderError {
	return &ProviderError{Kind: kind, StatusCode: statusCode, Message: message}
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Kind
}

// ProviderMessage returns the provider's message carried by err, if any.
func ProviderMessage(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return ""
}
