package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/flashdeck/internal/appstore"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/generation"
	"github.com/phrazzld/flashdeck/internal/service"
	"github.com/phrazzld/flashdeck/internal/service/auth"
	"github.com/phrazzld/flashdeck/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"not authenticated", appstore.ErrNotAuthenticated, http.StatusUnauthorized},
		{"email not confirmed", service.ErrEmailNotConfirmed, http.StatusForbidden},
		{"wrapped deck not found", fmt.Errorf("delete: %w", store.ErrDeckNotFound), http.StatusNotFound},
		{"email exists", service.ErrEmailExists, http.StatusConflict},
		{"validation", domain.NewValidationError("title", "is required", domain.ErrDeckTitleEmpty), http.StatusBadRequest},
		{"expired link", service.ErrVerificationExpired, http.StatusBadRequest},
		{"missing study text", generation.ErrMissingStudyText, http.StatusBadRequest},
		{"provider rejected", generation.NewProviderError(generation.ErrInvalidRequest, 400, "bad"), http.StatusBadRequest},
		{"quota", generation.ErrQuotaExceeded, http.StatusTooManyRequests},
		{"upstream", generation.ErrUpstream, http.StatusBadGateway},
		{"not configured", generation.ErrNotConfigured, http.StatusInternalServerError},
		{"parse", generation.ErrParseResponse, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, msgUnexpected},
		{"validation", domain.NewValidationError("title", "is too long", domain.ErrDeckTitleTooLong), "Invalid title: is too long"},
		{"email not confirmed", service.ErrEmailNotConfirmed, "email_not_confirmed"},
		{"email exists", service.ErrEmailExists, msgEmailExists},
		{"card not found", fmt.Errorf("x: %w", store.ErrCardNotFound), "Card not found"},
		{"provider rejected", generation.NewProviderError(generation.ErrInvalidRequest, 400, "model unknown"), "Invalid request: model unknown"},
		{"upstream with message", generation.NewProviderError(generation.ErrUpstream, 500, "internal"), "internal"},
		{"upstream without message", generation.ErrUpstream, msgGenerateUpstream},
		{"internal error text is hidden", errors.New("pq: connection refused at 10.0.0.1"), msgUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	validate := validator.New()

	err := validate.Struct(SignupRequest{Email: "user@example.com", Password: "123"})
	assert.Equal(t, "Invalid password: below minimum", SanitizeValidationError(err))

	err = validate.Struct(VerifyRequest{TokenHash: "t", Type: "email"})
	assert.Equal(t, "Invalid type: invalid value", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("other")))
}
