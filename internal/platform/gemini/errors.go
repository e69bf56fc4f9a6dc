package gemini

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/phrazzld/flashdeck/internal/generation"
	"google.golang.org/genai"
)

// ErrEmptyAPIKey is returned by NewCompleter when no API key is configured.
var ErrEmptyAPIKey = fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)

// mapAPIError translates a genai client error into a generation.ProviderError.
// 429 becomes quota exceeded, 400 invalid request; everything else,
// including transport failures, is an upstream failure.
func mapAPIError(err error) error {
	if err == nil {
		return nil
	}

	apiErr, ok := asAPIError(err)
	if !ok {
		return generation.NewProviderError(generation.ErrUpstream, 0, "")
	}

	switch apiErr.Code {
	case http.StatusTooManyRequests:
		return generation.NewProviderError(generation.ErrQuotaExceeded, apiErr.Code, apiErr.Message)
	case http.StatusBadRequest:
		return generation.NewProviderError(generation.ErrInvalidRequest, apiErr.Code, apiErr.Message)
	default:
		return generation.NewProviderError(generation.ErrUpstream, apiErr.Code, apiErr.Message)
	}
}

// asAPIError accepts both value and pointer forms of genai.APIError.
func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}
	return genai.APIError{}, false
}
