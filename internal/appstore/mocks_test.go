package appstore

import (
	"context"
	"database/sql"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockDeckStore mocks store.DeckStore. WithTx returns the receiver.
type MockDeckStore struct {
	mock.Mock
}

func (m *MockDeckStore) ListByUser(ctx context.Context, userID string) ([]domain.Deck, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Deck), args.Error(1)
}

func (m *MockDeckStore) GetByID(ctx context.Context, userID, deckID string) (*domain.Deck, error) {
	args := m.Called(ctx, userID, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deck), args.Error(1)
}

func (m *MockDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	return m.Called(ctx, deck).Error(0)
}

func (m *MockDeckStore) Update(ctx context.Context, userID, deckID string, in domain.DeckInput) (*domain.Deck, error) {
	args := m.Called(ctx, userID, deckID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deck), args.Error(1)
}

func (m *MockDeckStore) Delete(ctx context.Context, userID, deckID string) error {
	return m.Called(ctx, userID, deckID).Error(0)
}

func (m *MockDeckStore) AdjustCardCount(ctx context.Context, deckID string, delta int) (int, error) {
	args := m.Called(ctx, deckID, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockDeckStore) SetCardCount(ctx context.Context, deckID string, count int) error {
	return m.Called(ctx, deckID, count).Error(0)
}

func (m *MockDeckStore) WithTx(tx *sql.Tx) store.DeckStore { return m }

// MockCardStore mocks store.CardStore.
type MockCardStore struct {
	mock.Mock
}

func (m *MockCardStore) ListByDeck(ctx context.Context, userID, deckID string) ([]domain.Card, error) {
	args := m.Called(ctx, userID, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Card), args.Error(1)
}

func (m *MockCardStore) Create(ctx context.Context, card *domain.Card) error {
	return m.Called(ctx, card).Error(0)
}

func (m *MockCardStore) CreateMultiple(ctx context.Context, cards []domain.Card) error {
	return m.Called(ctx, cards).Error(0)
}

func (m *MockCardStore) Update(ctx context.Context, userID, cardID string, in domain.CardInput) (*domain.Card, error) {
	args := m.Called(ctx, userID, cardID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockCardStore) Delete(ctx context.Context, userID, cardID string) (string, error) {
	args := m.Called(ctx, userID, cardID)
	return args.String(0), args.Error(1)
}

func (m *MockCardStore) WithTx(tx *sql.Tx) store.CardStore { return m }

// MockSettingsStore mocks store.SettingsStore.
type MockSettingsStore struct {
	mock.Mock
}

func (m *MockSettingsStore) GetByUser(ctx context.Context, userID string) (*domain.Settings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settings), args.Error(1)
}

func (m *MockSettingsStore) Create(ctx context.Context, settings *domain.Settings) error {
	return m.Called(ctx, settings).Error(0)
}

func (m *MockSettingsStore) Update(ctx context.Context, userID string, patch domain.SettingsPatch) (*domain.Settings, error) {
	args := m.Called(ctx, userID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settings), args.Error(1)
}

func (m *MockSettingsStore) WithTx(tx *sql.Tx) store.SettingsStore { return m }

// MockStudySessionStore mocks store.StudySessionStore.
type MockStudySessionStore struct {
	mock.Mock
}

func (m *MockStudySessionStore) ListByUser(ctx context.Context, userID string) ([]domain.StudySession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StudySession), args.Error(1)
}

func (m *MockStudySessionStore) Create(ctx context.Context, session *domain.StudySession) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockStudySessionStore) WithTx(tx *sql.Tx) store.StudySessionStore { return m }
