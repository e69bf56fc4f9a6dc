package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// PostgresDeckStore implements the store.DeckStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDeckStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDeckStore creates a new PostgreSQL implementation of the DeckStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresDeckStore(db store.DBTX, logger *slog.Logger) *PostgresDeckStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDeckStore{
		db:     db,
		logger: logger.With(slog.String("component", "deck_store")),
	}
}

// Ensure PostgresDeckStore implements store.DeckStore interface
var _ store.DeckStore = (*PostgresDeckStore)(nil)

// WithTx implements store.DeckStore.WithTx
func (s *PostgresDeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &PostgresDeckStore{db: tx, logger: s.logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeck(row rowScanner) (domain.Deck, error) {
	var (
		d           domain.Deck
		description sql.NullString
	)
	err := row.Scan(&d.ID, &d.UserID, &d.Title, &description, &d.CardCount, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return domain.Deck{}, err
	}
	if description.Valid {
		desc := description.String
		d.Description = &desc
	}
	return d, nil
}

// ListByUser implements store.DeckStore.ListByUser
func (s *PostgresDeckStore) ListByUser(ctx context.Context, userID string) ([]domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT d.id, d.user_id, d.title, d.description,
		       (SELECT COUNT(*) FROM cards c WHERE c.deck_id = d.id) AS card_count,
		       d.created_at, d.updated_at
		FROM decks d
		WHERE d.user_id = $1
		ORDER BY d.created_at DESC, d.id
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list decks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	decks := []domain.Deck{}
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			log.Error("failed to scan deck row", slog.String("error", err.Error()))
			return nil, err
		}
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed decks", slog.String("user_id", userID), slog.Int("count", len(decks)))
	return decks, nil
}

// GetByID implements store.DeckStore.GetByID
func (s *PostgresDeckStore) GetByID(ctx context.Context, userID, deckID string) (*domain.Deck, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, card_count, created_at, updated_at
		FROM decks
		WHERE id = $1 AND user_id = $2
	`, deckID, userID)
	d, err := scanDeck(row)
	if err != nil {
		return nil, mapEntityError(err, store.ErrDeckNotFound)
	}
	return &d, nil
}

// Create implements store.DeckStore.Create
func (s *PostgresDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decks (id, user_id, title, description, card_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, deck.ID, deck.UserID, deck.Title, deck.Description, deck.CardCount, deck.CreatedAt, deck.UpdatedAt)
	if err != nil {
		log.Error("failed to create deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID),
			slog.String("user_id", deck.UserID))
		return MapError(err)
	}

	log.Info("deck created", slog.String("deck_id", deck.ID), slog.String("user_id", deck.UserID))
	return nil
}

// Update implements store.DeckStore.Update
func (s *PostgresDeckStore) Update(
	ctx context.Context,
	userID, deckID string,
	in domain.DeckInput,
) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, `
		UPDATE decks
		SET title = $1, description = $2, updated_at = NOW()
		WHERE id = $3 AND user_id = $4
		RETURNING id, user_id, title, description, card_count, created_at, updated_at
	`, in.Title, in.DescriptionPtr(), deckID, userID)
	d, err := scanDeck(row)
	if err != nil {
		mapped := mapEntityError(err, store.ErrDeckNotFound)
		if !errors.Is(mapped, store.ErrDeckNotFound) {
			log.Error("failed to update deck",
				slog.String("error", err.Error()),
				slog.String("deck_id", deckID))
		}
		return nil, mapped
	}

	log.Info("deck updated", slog.String("deck_id", deckID))
	return &d, nil
}

// Delete implements store.DeckStore.Delete
func (s *PostgresDeckStore) Delete(ctx context.Context, userID, deckID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM decks WHERE id = $1 AND user_id = $2`, deckID, userID)
	if err != nil {
		log.Error("failed to delete deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID))
		return mapEntityError(err, store.ErrDeckNotFound)
	}
	if err := CheckRowsAffected(result, store.ErrDeckNotFound); err != nil {
		return err
	}

	log.Info("deck deleted", slog.String("deck_id", deckID))
	return nil
}

// AdjustCardCount implements store.DeckStore.AdjustCardCount
func (s *PostgresDeckStore) AdjustCardCount(ctx context.Context, deckID string, delta int) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		UPDATE decks
		SET card_count = GREATEST(card_count + $1, 0), updated_at = NOW()
		WHERE id = $2
		RETURNING card_count
	`, delta, deckID).Scan(&count)
	if err != nil {
		return 0, mapEntityError(err, store.ErrDeckNotFound)
	}
	return count, nil
}

// SetCardCount implements store.DeckStore.SetCardCount
func (s *PostgresDeckStore) SetCardCount(ctx context.Context, deckID string, count int) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE decks SET card_count = $1 WHERE id = $2`, count, deckID)
	if err != nil {
		return mapEntityError(err, store.ErrDeckNotFound)
	}
	return CheckRowsAffected(result, store.ErrDeckNotFound)
}
