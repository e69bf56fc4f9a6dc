package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// DeckStore defines the interface for deck persistence.
// Every method is scoped to the owning user; a deck belonging to someone
// else is reported as ErrDeckNotFound.
type DeckStore interface {
	// ListByUser returns the user's decks, newest first. CardCount is
	// recomputed from the card rows rather than read from the stored column.
	ListByUser(ctx context.Context, userID string) ([]domain.Deck, error)

	// GetByID returns a single deck with its stored CardCount.
	GetByID(ctx context.Context, userID, deckID string) (*domain.Deck, error)

	// Create inserts the deck. ID and timestamps must already be set.
	Create(ctx context.Context, deck *domain.Deck) error

	// Update replaces title and description and returns the updated row.
	Update(ctx context.Context, userID, deckID string, in domain.DeckInput) (*domain.Deck, error)

	// Delete removes the deck; its cards are removed by cascade.
	Delete(ctx context.Context, userID, deckID string) error

	// AdjustCardCount adds delta to the stored card count, flooring at zero,
	// and returns the new value.
	AdjustCardCount(ctx context.Context, deckID string, delta int) (int, error)

	// SetCardCount overwrites the stored card count.
	SetCardCount(ctx context.Context, deckID string, count int) error

	// WithTx returns a DeckStore bound to the provided transaction.
	WithTx(tx *sql.Tx) DeckStore
}
