package appstore

import (
	"context"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// Authenticator establishes and tears down sessions.
type Authenticator interface {
	// CurrentUser resolves the user behind an already authenticated session.
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	// Signup registers an account. An unconfirmed user in the result means
	// the caller must verify the email address before logging in.
	Signup(ctx context.Context, email, password, fullName string) (*domain.User, error)
	Logout(ctx context.Context, userID string) error
	ResendConfirmation(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, userID, password string) error
	// Verify consumes an emailed link and returns the user it belongs to.
	Verify(ctx context.Context, token string, kind domain.VerificationKind) (*domain.User, error)
}

// Repository is the row-level query interface over decks, cards, settings and
// study sessions. Every call is scoped to userID; rows owned by anyone else
// are reported as not found.
type Repository interface {
	// ListDecks returns the user's decks newest first with CardCount
	// recomputed from the card rows.
	ListDecks(ctx context.Context, userID string) ([]domain.Deck, error)
	// ListCards returns a deck's cards ordered by position ascending.
	ListCards(ctx context.Context, userID, deckID string) ([]domain.Card, error)
	GetSettings(ctx context.Context, userID string) (*domain.Settings, error)
	// ListStudySessions returns history most recent first.
	ListStudySessions(ctx context.Context, userID string) ([]domain.StudySession, error)

	CreateDeck(ctx context.Context, userID string, in domain.DeckInput) (*domain.Deck, error)
	UpdateDeck(ctx context.Context, userID, deckID string, in domain.DeckInput) (*domain.Deck, error)
	DeleteDeck(ctx context.Context, userID, deckID string) error

	CreateCard(ctx context.Context, userID, deckID string, in domain.CardInput, position int) (*domain.Card, error)
	UpdateCard(ctx context.Context, userID, deckID, cardID string, in domain.CardInput) (*domain.Card, error)
	DeleteCard(ctx context.Context, userID, deckID, cardID string) error
	// CreateCards inserts generated cards at positions startPosition+1,
	// startPosition+2, ... and returns the created rows in order.
	CreateCards(ctx context.Context, userID, deckID string, cards []domain.GeneratedCard, startPosition int) ([]domain.Card, error)

	// UpdateSettings merges the user-editable fields of patch and refreshes
	// updated_at. Server-managed fields in patch are ignored.
	UpdateSettings(ctx context.Context, userID string, patch domain.SettingsPatch) (*domain.Settings, error)
	CreateStudySession(ctx context.Context, userID string, in domain.StudySessionInput) (*domain.StudySession, error)
}

// Backend is one complete data source for a Store.
type Backend interface {
	Authenticator
	Repository
}
