package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/flashdeck/internal/api/shared"
	"github.com/phrazzld/flashdeck/internal/appstore"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// decodeAndValidate reads the JSON body into req and runs its validation
// rules, writing a 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// pathParam returns a required URL parameter, writing a 400 response when it is empty.
func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value := chi.URLParam(r, name)
	if value == "" {
		HandleAPIError(w, r, domain.NewValidationError(name, "is required", domain.ErrInvalidID), "")
		return "", false
	}
	return value, true
}

// sessionStore resolves the authenticated user's Store, writing an error
// response when that fails.
func sessionStore(
	w http.ResponseWriter,
	r *http.Request,
	sessions *appstore.Sessions,
	fallback *slog.Logger,
) (*appstore.Store, bool) {
	log := logger.FromContextOrDefault(r.Context(), fallback)

	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		log.Warn("user ID not found in request context")
		HandleAPIError(w, r, appstore.ErrNotAuthenticated, "")
		return nil, false
	}

	st, err := sessions.Get(r.Context(), userID)
	if err != nil {
		// A valid token for an account that no longer exists.
		if store.IsNotFoundError(err) {
			err = fmt.Errorf("%w: %w", appstore.ErrNotAuthenticated, err)
		}
		HandleAPIError(w, r, err, "Failed to load session")
		return nil, false
	}
	return st, true
}
