package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/flashdeck/internal/api/shared"
	"github.com/phrazzld/flashdeck/internal/appstore"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/generation"
	"github.com/phrazzld/flashdeck/internal/service"
	"github.com/phrazzld/flashdeck/internal/service/auth"
	"github.com/phrazzld/flashdeck/internal/store"
)

// Messages shown to the UI. Several drive client-side routing and must not change.
const (
	msgInvalidCredentials  = "Invalid email or password"
	msgEmailNotConfirmed   = "email_not_confirmed"
	msgEmailExists         = "An account with this email already exists. Please log in instead."
	msgGenerateConfig      = "Gemini API key not configured."
	msgGenerateStudyText   = "studyText is required."
	msgGenerateQuota       = "AI quota exceeded. Please check your Gemini API plan or try again later."
	msgGenerateUpstream    = "Gemini API request failed."
	msgGenerateParse       = "Failed to parse AI response. Please try again."
	msgGenerateInvalidPref = "Invalid request: "
	msgUnexpected          = "An unexpected error occurred"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing their types.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, appstore.ErrNotAuthenticated):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrEmailNotConfirmed):
		return http.StatusForbidden

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrEmailExists),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrVerificationExpired),
		errors.Is(err, service.ErrInvalidVerificationToken),
		errors.Is(err, generation.ErrMissingStudyText),
		errors.Is(err, generation.ErrInvalidRequest):
		return http.StatusBadRequest

	case errors.Is(err, generation.ErrQuotaExceeded):
		return http.StatusTooManyRequests

	case errors.Is(err, generation.ErrUpstream):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err. Only messages
// built from known sentinels or domain validation reach the client.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return msgUnexpected
	}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return "Invalid " + vErr.Field + ": " + vErr.Message
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"
	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"
	case errors.Is(err, appstore.ErrNotAuthenticated):
		return "Not authenticated"

	case errors.Is(err, service.ErrInvalidCredentials):
		return msgInvalidCredentials
	case errors.Is(err, service.ErrEmailNotConfirmed):
		return msgEmailNotConfirmed
	case errors.Is(err, service.ErrEmailExists):
		return msgEmailExists
	case errors.Is(err, service.ErrVerificationExpired):
		return "This link has expired. Please request a new one."
	case errors.Is(err, service.ErrInvalidVerificationToken):
		return "This link is invalid or has already been used."

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrDeckNotFound):
		return "Deck not found"
	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, store.ErrSettingsNotFound):
		return "Settings not found"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, generation.ErrNotConfigured):
		return msgGenerateConfig
	case errors.Is(err, generation.ErrMissingStudyText):
		return msgGenerateStudyText
	case errors.Is(err, generation.ErrQuotaExceeded):
		return msgGenerateQuota
	case errors.Is(err, generation.ErrInvalidRequest):
		return msgGenerateInvalidPref + generation.ProviderMessage(err)
	case errors.Is(err, generation.ErrUpstream):
		if msg := generation.ProviderMessage(err); msg != "" {
			return msg
		}
		return msgGenerateUpstream
	case errors.Is(err, generation.ErrParseResponse):
		return msgGenerateParse

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	default:
		return msgUnexpected
	}
}

// HandleAPIError writes the mapped status and safe message for err.
// A non-empty fallback replaces the generic message of unmapped errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if message == msgUnexpected && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// SanitizeValidationError turns validator output into "Invalid <field>: <reason>"
// without echoing the submitted value.
func SanitizeValidationError(err error) string {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		fe := vErrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), validationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min", "gte":
		return "below minimum"
	case "max", "lte":
		return "above maximum"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
