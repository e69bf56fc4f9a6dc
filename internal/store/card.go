package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// CardStore defines the interface for card persistence.
// Ownership is checked through the card's deck.
type CardStore interface {
	// ListByDeck returns the deck's cards ordered by position ascending.
	ListByDeck(ctx context.Context, userID, deckID string) ([]domain.Card, error)

	// Create inserts a single card. ID, position and timestamps must be set.
	Create(ctx context.Context, card *domain.Card) error

	// CreateMultiple inserts cards in one statement.
	// It MUST run inside a transaction together with the deck count update:
	//
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       if err := cardStore.WithTx(tx).CreateMultiple(ctx, cards); err != nil {
	//           return err
	//       }
	//       _, err := deckStore.WithTx(tx).AdjustCardCount(ctx, deckID, len(cards))
	//       return err
	//   })
	CreateMultiple(ctx context.Context, cards []domain.Card) error

	// Update replaces both sides of the card and returns the updated row.
	Update(ctx context.Context, userID, cardID string, in domain.CardInput) (*domain.Card, error)

	// Delete removes the card and returns the id of the deck it belonged to.
	Delete(ctx context.Context, userID, cardID string) (string, error)

	// WithTx returns a CardStore bound to the provided transaction.
	WithTx(tx *sql.Tx) CardStore
}
