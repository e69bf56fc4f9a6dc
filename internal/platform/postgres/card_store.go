package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{db: tx, logger: s.logger}
}

const cardColumns = "c.id, c.deck_id, c.front_text, c.back_text, c.position, c.created_at, c.updated_at"

func scanCard(row rowScanner) (domain.Card, error) {
	var c domain.Card
	err := row.Scan(&c.ID, &c.DeckID, &c.FrontText, &c.BackText, &c.Position, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListByDeck implements store.CardStore.ListByDeck
func (s *PostgresCardStore) ListByDeck(ctx context.Context, userID, deckID string) ([]domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + cardColumns + `
		FROM cards c
		JOIN decks d ON d.id = c.deck_id
		WHERE c.deck_id = $1 AND d.user_id = $2
		ORDER BY c.position ASC, c.created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, deckID, userID)
	if err != nil {
		log.Error("failed to list cards",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	cards := []domain.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row", slog.String("error", err.Error()))
			return nil, err
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return cards, nil
}

// Create implements store.CardStore.Create
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	return s.CreateMultiple(ctx, []domain.Card{*card})
}

// CreateMultiple implements store.CardStore.CreateMultiple
func (s *PostgresCardStore) CreateMultiple(ctx context.Context, cards []domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cards) == 0 {
		return nil
	}

	const columnsPerRow = 7
	var b strings.Builder
	b.WriteString("INSERT INTO cards (id, deck_id, front_text, back_text, position, created_at, updated_at) VALUES ")
	args := make([]any, 0, len(cards)*columnsPerRow)
	for i, c := range cards {
		if i > 0 {
			b.WriteString(", ")
		}
		base := i * columnsPerRow
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		args = append(args, c.ID, c.DeckID, c.FrontText, c.BackText, c.Position, c.CreatedAt, c.UpdatedAt)
	}

	if _, err := s.db.ExecContext(ctx, b.String(), args...); err != nil {
		log.Error("failed to insert cards",
			slog.String("error", err.Error()),
			slog.Int("count", len(cards)))
		return MapError(err)
	}

	log.Info("cards created",
		slog.String("deck_id", cards[0].DeckID),
		slog.Int("count", len(cards)))
	return nil
}

// Update implements store.CardStore.Update
func (s *PostgresCardStore) Update(
	ctx context.Context,
	userID, cardID string,
	in domain.CardInput,
) (*domain.Card, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE cards c
		SET front_text = $1, back_text = $2, updated_at = NOW()
		FROM decks d
		WHERE c.id = $3 AND d.id = c.deck_id AND d.user_id = $4
		RETURNING `+cardColumns,
		in.FrontText, in.BackText, cardID, userID)
	c, err := scanCard(row)
	if err != nil {
		return nil, mapEntityError(err, store.ErrCardNotFound)
	}
	return &c, nil
}

// Delete implements store.CardStore.Delete
func (s *PostgresCardStore) Delete(ctx context.Context, userID, cardID string) (string, error) {
	var deckID string
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM cards c
		USING decks d
		WHERE c.id = $1 AND d.id = c.deck_id AND d.user_id = $2
		RETURNING c.deck_id
	`, cardID, userID).Scan(&deckID)
	if err != nil {
		return "", mapEntityError(err, store.ErrCardNotFound)
	}
	return deckID, nil
}
