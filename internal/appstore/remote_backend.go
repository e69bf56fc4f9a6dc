package appstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// RemoteStores are the relational stores behind a RemoteBackend.
type RemoteStores struct {
	Decks    store.DeckStore
	Cards    store.CardStore
	Settings store.SettingsStore
	Sessions store.StudySessionStore
}

// RemoteBackend serves data from the relational database. Authentication is
// delegated to an Authenticator, and ids are random UUIDs.
type RemoteBackend struct {
	Authenticator

	db       *sql.DB
	decks    store.DeckStore
	cards    store.CardStore
	settings store.SettingsStore
	sessions store.StudySessionStore
	timeFunc func() time.Time
	logger   *slog.Logger
}

// NewRemoteBackend creates a RemoteBackend. It panics if any dependency is nil.
func NewRemoteBackend(db *sql.DB, auth Authenticator, stores RemoteStores, logger *slog.Logger) *RemoteBackend {
	if db == nil || auth == nil {
		panic("remote backend requires a database and an authenticator")
	}
	if stores.Decks == nil || stores.Cards == nil || stores.Settings == nil || stores.Sessions == nil {
		panic("remote backend requires deck, card, settings and study session stores")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RemoteBackend{
		Authenticator: auth,
		db:            db,
		decks:         stores.Decks,
		cards:         stores.Cards,
		settings:      stores.Settings,
		sessions:      stores.Sessions,
		timeFunc:      time.Now,
		logger:        logger.With(slog.String("component", "remote_backend")),
	}
}

var _ Backend = (*RemoteBackend)(nil)

func (b *RemoteBackend) now() time.Time {
	return b.timeFunc().UTC()
}

func (b *RemoteBackend) ListDecks(ctx context.Context, userID string) ([]domain.Deck, error) {
	return b.decks.ListByUser(ctx, userID)
}

// ListCards checks deck ownership first so a foreign deck reports
// ErrDeckNotFound rather than an empty list.
func (b *RemoteBackend) ListCards(ctx context.Context, userID, deckID string) ([]domain.Card, error) {
	if _, err := b.decks.GetByID(ctx, userID, deckID); err != nil {
		return nil, err
	}
	return b.cards.ListByDeck(ctx, userID, deckID)
}

func (b *RemoteBackend) GetSettings(ctx context.Context, userID string) (*domain.Settings, error) {
	return b.settings.GetByUser(ctx, userID)
}

func (b *RemoteBackend) ListStudySessions(ctx context.Context, userID string) ([]domain.StudySession, error) {
	return b.sessions.ListByUser(ctx, userID)
}

func (b *RemoteBackend) CreateDeck(ctx context.Context, userID string, in domain.DeckInput) (*domain.Deck, error) {
	now := b.now()
	deck := &domain.Deck{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       in.Title,
		Description: in.DescriptionPtr(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := b.decks.Create(ctx, deck); err != nil {
		return nil, err
	}
	return deck, nil
}

func (b *RemoteBackend) UpdateDeck(ctx context.Context, userID, deckID string, in domain.DeckInput) (*domain.Deck, error) {
	return b.decks.Update(ctx, userID, deckID, in)
}

func (b *RemoteBackend) DeleteDeck(ctx context.Context, userID, deckID string) error {
	return b.decks.Delete(ctx, userID, deckID)
}

// insertCards writes cards and raises the stored deck count in one transaction.
func (b *RemoteBackend) insertCards(ctx context.Context, userID, deckID string, cards []domain.Card) error {
	return store.RunInTransaction(ctx, b.db, func(ctx context.Context, tx *sql.Tx) error {
		decks := b.decks.WithTx(tx)
		if _, err := decks.GetByID(ctx, userID, deckID); err != nil {
			return err
		}
		if err := b.cards.WithTx(tx).CreateMultiple(ctx, cards); err != nil {
			return err
		}
		_, err := decks.AdjustCardCount(ctx, deckID, len(cards))
		return err
	})
}

func (b *RemoteBackend) CreateCard(ctx context.Context, userID, deckID string, in domain.CardInput, position int) (*domain.Card, error) {
	now := b.now()
	card := domain.Card{
		ID:        uuid.NewString(),
		DeckID:    deckID,
		FrontText: in.FrontText,
		BackText:  in.BackText,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := b.insertCards(ctx, userID, deckID, []domain.Card{card}); err != nil {
		return nil, err
	}
	return &card, nil
}

func (b *RemoteBackend) CreateCards(
	ctx context.Context,
	userID, deckID string,
	generated []domain.GeneratedCard,
	startPosition int,
) ([]domain.Card, error) {
	if len(generated) == 0 {
		return []domain.Card{}, nil
	}

	now := b.now()
	positions := domain.NextPositions(startPosition, len(generated))
	cards := make([]domain.Card, len(generated))
	for i, g := range generated {
		in := domain.CardInput{FrontText: g.FrontText, BackText: g.BackText}.Normalize()
		cards[i] = domain.Card{
			ID:        uuid.NewString(),
			DeckID:    deckID,
			FrontText: in.FrontText,
			BackText:  in.BackText,
			Position:  positions[i],
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	if err := b.insertCards(ctx, userID, deckID, cards); err != nil {
		logger.FromContextOrDefault(ctx, b.logger).Error("failed to save generated cards",
			slog.String("deck_id", deckID),
			slog.Int("count", len(cards)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save generated cards: %w", err)
	}
	return cards, nil
}

// UpdateCard rolls back when the card belongs to a different deck.
func (b *RemoteBackend) UpdateCard(ctx context.Context, userID, deckID, cardID string, in domain.CardInput) (*domain.Card, error) {
	var card *domain.Card
	err := store.RunInTransaction(ctx, b.db, func(ctx context.Context, tx *sql.Tx) error {
		updated, err := b.cards.WithTx(tx).Update(ctx, userID, cardID, in)
		if err != nil {
			return err
		}
		if updated.DeckID != deckID {
			return store.ErrCardNotFound
		}
		card = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// DeleteCard removes the card and decrements the stored deck count.
func (b *RemoteBackend) DeleteCard(ctx context.Context, userID, deckID, cardID string) error {
	return store.RunInTransaction(ctx, b.db, func(ctx context.Context, tx *sql.Tx) error {
		owner, err := b.cards.WithTx(tx).Delete(ctx, userID, cardID)
		if err != nil {
			return err
		}
		if owner != deckID {
			return store.ErrCardNotFound
		}
		_, err = b.decks.WithTx(tx).AdjustCardCount(ctx, deckID, -1)
		return err
	})
}

func (b *RemoteBackend) UpdateSettings(ctx context.Context, userID string, patch domain.SettingsPatch) (*domain.Settings, error) {
	return b.settings.Update(ctx, userID, patch.StripServerManaged())
}

func (b *RemoteBackend) CreateStudySession(ctx context.Context, userID string, in domain.StudySessionInput) (*domain.StudySession, error) {
	session := domain.NewStudySession(uuid.NewString(), userID, in, b.now())
	if err := b.sessions.Create(ctx, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
