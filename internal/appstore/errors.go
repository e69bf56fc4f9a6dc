package appstore

import (
	"errors"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/store"
)

// ErrNotAuthenticated is returned by data operations on a Store that has no
// logged-in user.
var ErrNotAuthenticated = errors.New("not authenticated")

// isExpected reports errors caused by the caller rather than the backend.
func isExpected(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, domain.ErrValidation) ||
		store.IsNotFoundError(err)
}
