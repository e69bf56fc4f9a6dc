package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Deck field limits.
const (
	MaxDeckTitleLength       = 100
	MaxDeckDescriptionLength = 500
)

// Deck validation errors
var (
	ErrDeckTitleEmpty         = errors.New("deck title cannot be empty")
	ErrDeckTitleTooLong       = errors.New("deck title must be at most 100 characters")
	ErrDeckDescriptionTooLong = errors.New("deck description must be at most 500 characters")
)

// Deck is a named collection of cards belonging to one user.
// CardCount is a denormalized cache of len(cards); every card mutation keeps it in sync.
type Deck struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	CardCount   int       `json:"card_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DeckInput carries user-editable deck fields for create and update.
type DeckInput struct {
	Title       string
	Description string
}

// Normalize trims whitespace from both fields.
func (in DeckInput) Normalize() DeckInput {
	return DeckInput{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
	}
}

// Validate checks the title and description limits, counted in characters.
func (in DeckInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return NewValidationError("title", "is required", ErrDeckTitleEmpty)
	}
	if utf8.RuneCountInString(in.Title) > MaxDeckTitleLength {
		return NewValidationError("title", "is too long", ErrDeckTitleTooLong)
	}
	if utf8.RuneCountInString(in.Description) > MaxDeckDescriptionLength {
		return NewValidationError("description", "is too long", ErrDeckDescriptionTooLong)
	}
	return nil
}

// DescriptionPtr returns nil for an empty description so it is stored as null.
func (in DeckInput) DescriptionPtr() *string {
	if in.Description == "" {
		return nil
	}
	d := in.Description
	return &d
}
