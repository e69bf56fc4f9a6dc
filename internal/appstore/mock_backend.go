package appstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// mockIDStart is the counter value before the first fabricated id.
const mockIDStart = 1000

// MockBackend serves one seeded dataset from memory. Every credential is
// accepted and every id is fabricated locally as "mock-<n>".
type MockBackend struct {
	mu       sync.Mutex
	data     Dataset
	counter  int
	timeFunc func() time.Time
	logger   *slog.Logger
}

// NewMockBackend creates a MockBackend over a private copy of data. Fabricated
// ids continue after the highest "mock-<n>" id already in data.
func NewMockBackend(data Dataset, logger *slog.Logger) *MockBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockBackend{
		data:     copyDataset(data),
		counter:  highestMockID(data),
		timeFunc: time.Now,
		logger:   logger.With(slog.String("component", "mock_backend")),
	}
}

var _ Backend = (*MockBackend)(nil)

func copyDataset(d Dataset) Dataset {
	st := State{
		User:          &d.User,
		Decks:         d.Decks,
		Cards:         d.Cards,
		Settings:      d.Settings,
		StudySessions: d.StudySessions,
	}.Clone()
	return Dataset{
		User:          *st.User,
		Decks:         st.Decks,
		Cards:         st.Cards,
		Settings:      st.Settings,
		StudySessions: st.StudySessions,
	}
}

// Dataset returns a copy of the current data, including every change made
// through the backend.
func (b *MockBackend) Dataset() Dataset {
	b.mu.Lock()
	defer b.mu.Unlock()
	return copyDataset(b.data)
}

func highestMockID(d Dataset) int {
	highest := mockIDStart
	note := func(id string) {
		n, err := strconv.Atoi(strings.TrimPrefix(id, "mock-"))
		if err == nil && strings.HasPrefix(id, "mock-") && n > highest {
			highest = n
		}
	}
	for _, deck := range d.Decks {
		note(deck.ID)
	}
	for _, cards := range d.Cards {
		for _, c := range cards {
			note(c.ID)
		}
	}
	for _, session := range d.StudySessions {
		note(session.ID)
	}
	note(d.Settings.ID)
	return highest
}

// nextID returns the next fabricated id. Callers hold mu.
func (b *MockBackend) nextID() string {
	b.counter++
	return fmt.Sprintf("mock-%d", b.counter)
}

func (b *MockBackend) now() time.Time {
	return b.timeFunc().UTC()
}

func (b *MockBackend) user() *domain.User {
	u := b.data.User
	u.ConfirmedAt = cloneTime(u.ConfirmedAt)
	return &u
}

// owns reports whether userID is the dataset's user.
func (b *MockBackend) owns(userID string) bool {
	return userID == b.data.User.ID
}

func (b *MockBackend) deck(userID, deckID string) (*domain.Deck, error) {
	if !b.owns(userID) {
		return nil, store.ErrDeckNotFound
	}
	for i := range b.data.Decks {
		if b.data.Decks[i].ID == deckID {
			return &b.data.Decks[i], nil
		}
	}
	return nil, store.ErrDeckNotFound
}

// CurrentUser returns the dataset's user.
func (b *MockBackend) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.owns(userID) {
		return nil, store.ErrUserNotFound
	}
	return b.user(), nil
}

// Login accepts any credentials and returns the dataset's user.
func (b *MockBackend) Login(ctx context.Context, email, password string) (*domain.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	logger.FromContextOrDefault(ctx, b.logger).Debug("mock login", slog.String("email", email))
	return b.user(), nil
}

// Signup always asks for email confirmation and creates nothing.
func (b *MockBackend) Signup(ctx context.Context, email, password, fullName string) (*domain.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &domain.User{
		ID:        b.nextID(),
		Email:     domain.NormalizeEmail(email),
		FullName:  strings.TrimSpace(fullName),
		CreatedAt: b.now(),
	}, nil
}

func (b *MockBackend) Logout(ctx context.Context, userID string) error { return nil }

func (b *MockBackend) ResendConfirmation(ctx context.Context, email string) error { return nil }

func (b *MockBackend) ResetPassword(ctx context.Context, email string) error { return nil }

func (b *MockBackend) UpdatePassword(ctx context.Context, userID, password string) error {
	if err := domain.ValidatePassword(password); err != nil {
		return domain.NewValidationError("password", err.Error(), err)
	}
	return nil
}

// Verify accepts any token and returns the dataset's user.
func (b *MockBackend) Verify(ctx context.Context, token string, kind domain.VerificationKind) (*domain.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.user(), nil
}

// ListDecks returns the decks newest first with counts taken from the card lists.
func (b *MockBackend) ListDecks(ctx context.Context, userID string) ([]domain.Deck, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.owns(userID) {
		return []domain.Deck{}, nil
	}

	decks := cloneDecks(b.data.Decks)
	for i := range decks {
		if cards, ok := b.data.Cards[decks[i].ID]; ok {
			decks[i].CardCount = len(cards)
		}
	}
	sort.SliceStable(decks, func(i, j int) bool {
		return decks[i].CreatedAt.After(decks[j].CreatedAt)
	})
	return decks, nil
}

// ListCards returns the deck's cards ordered by position.
func (b *MockBackend) ListCards(ctx context.Context, userID, deckID string) ([]domain.Card, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.deck(userID, deckID); err != nil {
		return nil, err
	}

	cards := cloneCards(b.data.Cards[deckID])
	sort.SliceStable(cards, func(i, j int) bool { return cards[i].Position < cards[j].Position })
	return cards, nil
}

func (b *MockBackend) GetSettings(ctx context.Context, userID string) (*domain.Settings, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.owns(userID) {
		return nil, store.ErrSettingsNotFound
	}
	s := cloneSettings(b.data.Settings)
	return &s, nil
}

// ListStudySessions returns the history most recent first.
func (b *MockBackend) ListStudySessions(ctx context.Context, userID string) ([]domain.StudySession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.owns(userID) {
		return []domain.StudySession{}, nil
	}

	sessions := cloneSessions(b.data.StudySessions)
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})
	return sessions, nil
}

func (b *MockBackend) CreateDeck(ctx context.Context, userID string, in domain.DeckInput) (*domain.Deck, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.owns(userID) {
		return nil, store.ErrUserNotFound
	}

	now := b.now()
	deck := domain.Deck{
		ID:          b.nextID(),
		UserID:      userID,
		Title:       in.Title,
		Description: in.DescriptionPtr(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b.data.Decks = append([]domain.Deck{deck}, b.data.Decks...)
	b.data.Cards[deck.ID] = []domain.Card{}
	return &cloneDecks([]domain.Deck{deck})[0], nil
}

func (b *MockBackend) UpdateDeck(ctx context.Context, userID, deckID string, in domain.DeckInput) (*domain.Deck, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, err := b.deck(userID, deckID)
	if err != nil {
		return nil, err
	}

	d.Title = in.Title
	d.Description = in.DescriptionPtr()
	d.UpdatedAt = b.now()
	return &cloneDecks([]domain.Deck{*d})[0], nil
}

// DeleteDeck removes the deck and its cards.
func (b *MockBackend) DeleteDeck(ctx context.Context, userID, deckID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.deck(userID, deckID); err != nil {
		return err
	}

	kept := b.data.Decks[:0:0]
	for _, d := range b.data.Decks {
		if d.ID != deckID {
			kept = append(kept, d)
		}
	}
	b.data.Decks = kept
	delete(b.data.Cards, deckID)
	return nil
}

func (b *MockBackend) newCard(deckID string, in domain.CardInput, position int, now time.Time) domain.Card {
	return domain.Card{
		ID:        b.nextID(),
		DeckID:    deckID,
		FrontText: in.FrontText,
		BackText:  in.BackText,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (b *MockBackend) CreateCard(ctx context.Context, userID, deckID string, in domain.CardInput, position int) (*domain.Card, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, err := b.deck(userID, deckID)
	if err != nil {
		return nil, err
	}

	card := b.newCard(deckID, in, position, b.now())
	b.data.Cards[deckID] = append(b.data.Cards[deckID], card)
	d.CardCount++
	return &card, nil
}

func (b *MockBackend) UpdateCard(ctx context.Context, userID, deckID, cardID string, in domain.CardInput) (*domain.Card, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.deck(userID, deckID); err != nil {
		return nil, err
	}

	cards := b.data.Cards[deckID]
	for i := range cards {
		if cards[i].ID == cardID {
			cards[i].FrontText = in.FrontText
			cards[i].BackText = in.BackText
			cards[i].UpdatedAt = b.now()
			c := cards[i]
			return &c, nil
		}
	}
	return nil, store.ErrCardNotFound
}

func (b *MockBackend) DeleteCard(ctx context.Context, userID, deckID, cardID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, err := b.deck(userID, deckID)
	if err != nil {
		return err
	}

	cards := b.data.Cards[deckID]
	for i := range cards {
		if cards[i].ID == cardID {
			b.data.Cards[deckID] = append(cards[:i:i], cards[i+1:]...)
			d.CardCount = max(0, d.CardCount-1)
			return nil
		}
	}
	return store.ErrCardNotFound
}

func (b *MockBackend) CreateCards(
	ctx context.Context,
	userID, deckID string,
	generated []domain.GeneratedCard,
	startPosition int,
) ([]domain.Card, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, err := b.deck(userID, deckID)
	if err != nil {
		return nil, err
	}

	now := b.now()
	positions := domain.NextPositions(startPosition, len(generated))
	created := make([]domain.Card, len(generated))
	for i, g := range generated {
		in := domain.CardInput{FrontText: g.FrontText, BackText: g.BackText}.Normalize()
		created[i] = b.newCard(deckID, in, positions[i], now)
	}
	b.data.Cards[deckID] = append(b.data.Cards[deckID], created...)
	d.CardCount += len(created)
	return cloneCards(created), nil
}

// UpdateSettings merges patch into the settings. Server-managed fields in
// patch are ignored.
func (b *MockBackend) UpdateSettings(ctx context.Context, userID string, patch domain.SettingsPatch) (*domain.Settings, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.owns(userID) {
		return nil, store.ErrSettingsNotFound
	}

	b.data.Settings = patch.Apply(b.data.Settings, b.now())
	s := cloneSettings(b.data.Settings)
	return &s, nil
}

func (b *MockBackend) CreateStudySession(ctx context.Context, userID string, in domain.StudySessionInput) (*domain.StudySession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.owns(userID) {
		return nil, store.ErrUserNotFound
	}

	session := domain.NewStudySession(b.nextID(), userID, in, b.now())
	b.data.StudySessions = append([]domain.StudySession{session}, b.data.StudySessions...)
	return &cloneSessions([]domain.StudySession{session})[0], nil
}
