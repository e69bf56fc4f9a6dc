package api

import (
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"max=200"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// EmailRequest is the body of the resend-confirmation and reset-password endpoints.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyRequest carries the query parameters of an emailed callback link.
type VerifyRequest struct {
	TokenHash string `json:"token_hash" validate:"required"`
	Type      string `json:"type"       validate:"required,oneof=signup recovery"`
}

// PasswordRequest is the body of PUT /api/auth/password.
type PasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// RefreshTokenRequest is the body of POST /api/auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is returned when a session starts or its tokens are refreshed.
type AuthResponse struct {
	User         *domain.User `json:"user,omitempty"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

// SignupResponse is returned by signup. Tokens are present only when no
// email confirmation is needed.
type SignupResponse struct {
	User              *domain.User `json:"user"`
	NeedsConfirmation bool         `json:"needs_confirmation"`
	*AuthResponse
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// DeckRequest is the body of deck create and update.
type DeckRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CardRequest is the body of card create and update.
type CardRequest struct {
	FrontText string `json:"front_text"`
	BackText  string `json:"back_text"`
}

// BulkCardsRequest is the body of POST /api/decks/{deckID}/cards/bulk.
type BulkCardsRequest struct {
	Cards []domain.GeneratedCard `json:"cards" validate:"max=30"`
}

// CardsResponse wraps a card list.
type CardsResponse struct {
	Cards []domain.Card `json:"cards"`
}

// GenerateResponse is the success body of POST /api/generate-cards.
type GenerateResponse struct {
	Cards []domain.GeneratedCard `json:"cards"`
}

// ThemeRequest is the body of PUT /api/settings/theme.
type ThemeRequest struct {
	Theme string `json:"theme" validate:"required"`
}

// StudySessionRequest is the body of POST /api/study-sessions.
type StudySessionRequest struct {
	DeckID     string `json:"deck_id"     validate:"required"`
	KnownCount int    `json:"known_count" validate:"gte=0"`
	TotalCount int    `json:"total_count" validate:"gte=0"`
}
