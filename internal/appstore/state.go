package appstore

import (
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// State is everything the UI renders for one session. Its JSON form is the
// persisted local state of the mock backend.
type State struct {
	IsAuthenticated bool                     `json:"isAuthenticated"`
	User            *domain.User             `json:"user"`
	Decks           []domain.Deck            `json:"decks"`
	Cards           map[string][]domain.Card `json:"cards"`
	Settings        domain.Settings          `json:"settings"`
	StudySessions   []domain.StudySession    `json:"studySessions"`
}

// EmptyState is the state before login and after logout.
func EmptyState() State {
	return State{
		Decks:         []domain.Deck{},
		Cards:         map[string][]domain.Card{},
		Settings:      domain.DefaultSettings(""),
		StudySessions: []domain.StudySession{},
	}
}

// Clone returns a deep copy that shares no memory with s.
func (s State) Clone() State {
	out := State{
		IsAuthenticated: s.IsAuthenticated,
		Decks:           cloneDecks(s.Decks),
		Cards:           make(map[string][]domain.Card, len(s.Cards)),
		Settings:        cloneSettings(s.Settings),
		StudySessions:   cloneSessions(s.StudySessions),
	}
	if s.User != nil {
		u := *s.User
		u.ConfirmedAt = cloneTime(s.User.ConfirmedAt)
		out.User = &u
	}
	for deckID, cards := range s.Cards {
		out.Cards[deckID] = cloneCards(cards)
	}
	return out
}

// deckIndex returns the position of deckID in the deck list, or -1.
func (s *State) deckIndex(deckID string) int {
	for i := range s.Decks {
		if s.Decks[i].ID == deckID {
			return i
		}
	}
	return -1
}

func (s *State) findDeck(deckID string) *domain.Deck {
	if i := s.deckIndex(deckID); i >= 0 {
		return &s.Decks[i]
	}
	return nil
}

func cloneDecks(decks []domain.Deck) []domain.Deck {
	out := make([]domain.Deck, len(decks))
	for i, d := range decks {
		if d.Description != nil {
			desc := *d.Description
			d.Description = &desc
		}
		out[i] = d
	}
	return out
}

func cloneCards(cards []domain.Card) []domain.Card {
	out := make([]domain.Card, len(cards))
	copy(out, cards)
	return out
}

func cloneSettings(s domain.Settings) domain.Settings {
	if s.DailyGoal != nil {
		goal := *s.DailyGoal
		s.DailyGoal = &goal
	}
	return s
}

func cloneSessions(sessions []domain.StudySession) []domain.StudySession {
	out := make([]domain.StudySession, len(sessions))
	for i, ss := range sessions {
		ss.EndedAt = cloneTime(ss.EndedAt)
		out[i] = ss
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
