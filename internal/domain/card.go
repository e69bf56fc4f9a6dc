package domain

import (
	"errors"
	"strings"
	"time"
)

// Card validation errors
var (
	ErrCardFrontEmpty = errors.New("card front text cannot be empty")
	ErrCardBackEmpty  = errors.New("card back text cannot be empty")
	ErrTooManyCards   = errors.New("too many cards in one batch")
)

// MaxBulkCards caps one bulk insert at the largest generation batch.
const MaxBulkCards = MaxAICardCount

// Card is one question/answer pair within a deck.
// Position is 1-based and reflects insertion order.
type Card struct {
	ID        string    `json:"id"`
	DeckID    string    `json:"deck_id"`
	FrontText string    `json:"front_text"`
	BackText  string    `json:"back_text"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CardInput carries the editable text of a card.
type CardInput struct {
	FrontText string `json:"front_text"`
	BackText  string `json:"back_text"`
}

// Normalize trims whitespace from both sides of the card.
func (in CardInput) Normalize() CardInput {
	return CardInput{
		FrontText: strings.TrimSpace(in.FrontText),
		BackText:  strings.TrimSpace(in.BackText),
	}
}

// Validate requires both sides to be non-blank.
func (in CardInput) Validate() error {
	if strings.TrimSpace(in.FrontText) == "" {
		return NewValidationError("front_text", "is required", ErrCardFrontEmpty)
	}
	if strings.TrimSpace(in.BackText) == "" {
		return NewValidationError("back_text", "is required", ErrCardBackEmpty)
	}
	return nil
}

// ValidateBatch rejects bulk inserts larger than MaxBulkCards.
func ValidateBatch(cards []GeneratedCard) error {
	if len(cards) > MaxBulkCards {
		return NewValidationError("cards", "above maximum", ErrTooManyCards)
	}
	return nil
}

// GeneratedCard is one card produced by AI generation.
// Position is the zero-based index in the generated list.
type GeneratedCard struct {
	FrontText string `json:"front_text"`
	BackText  string `json:"back_text"`
	Position  int    `json:"position"`
}

// NextPositions returns n sequential 1-based positions following existing.
func NextPositions(existing, n int) []int {
	positions := make([]int, n)
	for i := range positions {
		positions[i] = existing + i + 1
	}
	return positions
}
