package domain

import (
	"errors"
	"time"
)

// ErrInvalidSessionCounts is returned when known/total counts are inconsistent.
var ErrInvalidSessionCounts = errors.New("known count must be between 0 and total count")

// StudySession is an append-only record of one completed study run.
type StudySession struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	DeckID     string     `json:"deck_id"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at"`
	KnownCount int        `json:"known_count"`
	TotalCount int        `json:"total_count"`
}

// StudySessionInput is the result of a finished study run.
type StudySessionInput struct {
	DeckID     string
	KnownCount int
	TotalCount int
}

// Validate checks the deck reference and count bounds.
func (in StudySessionInput) Validate() error {
	if in.DeckID == "" {
		return NewValidationError("deck_id", "is required", ErrInvalidID)
	}
	if in.TotalCount < 0 || in.KnownCount < 0 || in.KnownCount > in.TotalCount {
		return NewValidationError("known_count", "is out of range", ErrInvalidSessionCounts)
	}
	return nil
}

// NewStudySession builds a session record stamped at now.
// A session is recorded once the run is over, so it starts and ends at now.
func NewStudySession(id, userID string, in StudySessionInput, now time.Time) StudySession {
	ended := now
	return StudySession{
		ID:         id,
		UserID:     userID,
		DeckID:     in.DeckID,
		StartedAt:  now,
		EndedAt:    &ended,
		KnownCount: in.KnownCount,
		TotalCount: in.TotalCount,
	}
}
