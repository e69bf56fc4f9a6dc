package appstore

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/events"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// SignupResult reports how a signup ended.
type SignupResult struct {
	User *domain.User
	// NeedsConfirmation means the account exists but the session was not
	// started; the email address must be verified first.
	NeedsConfirmation bool
}

// Store is the state container for one session.
//
// Operations on a Store run one at a time. Readers (Snapshot and the getters)
// never block on a backend call and never observe a half-applied operation.
type Store struct {
	backend Backend
	emitter events.EventEmitter
	shuffle func(n int, swap func(i, j int))
	logger  *slog.Logger

	// allCards loads every deck's cards when a session starts.
	allCards bool

	// opMu serializes operations.
	opMu sync.Mutex
	// mu guards state.
	mu    sync.RWMutex
	state State
}

// Option configures a Store.
type Option func(*Store)

// WithEmitter publishes a state.changed event after every completed operation.
func WithEmitter(emitter events.EventEmitter) Option {
	return func(s *Store) { s.emitter = emitter }
}

// WithState starts the Store from a previously persisted state.
func WithState(state State) Option {
	return func(s *Store) { s.state = normalizeState(state.Clone()) }
}

// WithShuffle replaces the permutation used by StudyQueue.
func WithShuffle(shuffle func(n int, swap func(i, j int))) Option {
	return func(s *Store) { s.shuffle = shuffle }
}

// WithAllCards loads the cards of every deck when a session starts instead
// of one deck at a time on FetchCards.
func WithAllCards() Option {
	return func(s *Store) { s.allCards = true }
}

// New creates an unauthenticated Store over backend. It panics if backend is nil.
func New(backend Backend, logger *slog.Logger, opts ...Option) *Store {
	if backend == nil {
		panic("appstore: backend cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		backend: backend,
		shuffle: rand.Shuffle,
		logger:  logger.With(slog.String("component", "app_store")),
		state:   EmptyState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// UserID returns the logged-in user's id, or "" when unauthenticated.
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.state.IsAuthenticated || s.state.User == nil {
		return ""
	}
	return s.state.User.ID
}

// Deck returns a copy of one local deck.
func (s *Store) Deck(deckID string) (domain.Deck, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.state.findDeck(deckID)
	if d == nil {
		return domain.Deck{}, false
	}
	return cloneDecks([]domain.Deck{*d})[0], true
}

// Cards returns a copy of the local card list of a deck and whether it has
// been loaded.
func (s *Store) Cards(deckID string) ([]domain.Card, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cards, ok := s.state.Cards[deckID]
	return cloneCards(cards), ok
}

// Settings returns a copy of the local settings.
func (s *Store) Settings() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSettings(s.state.Settings)
}

// commit applies fn to the state in one locked step and publishes the result.
func (s *Store) commit(ctx context.Context, op string, fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.publish(ctx, op, snapshot)
}

// publish emits state.changed. Handler failures are logged; the operation
// itself has already completed.
func (s *Store) publish(ctx context.Context, op string, snapshot State) {
	if s.emitter == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	userID := ""
	if snapshot.User != nil {
		userID = snapshot.User.ID
	}
	event, err := events.NewEvent(events.TypeStateChanged, userID, snapshot)
	if err != nil {
		log.Error("failed to encode state snapshot",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("state change handler failed",
			slog.String("operation", op),
			slog.String("error", err.Error()))
	}
}

// requireUser returns the logged-in user id. Callers hold opMu.
func (s *Store) requireUser() (string, error) {
	if id := s.UserID(); id != "" {
		return id, nil
	}
	return "", ErrNotAuthenticated
}

func (s *Store) fail(ctx context.Context, op string, err error) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if isExpected(err) {
		log.Debug("operation rejected",
			slog.String("operation", op),
			slog.String("error", err.Error()))
	} else {
		log.Error("operation failed",
			slog.String("operation", op),
			slog.String("error", err.Error()))
	}
	return err
}

// loaded is everything fetched when a session starts.
type loaded struct {
	decks    []domain.Deck
	settings domain.Settings
	sessions []domain.StudySession
	cards    map[string][]domain.Card
}

func (s *Store) load(ctx context.Context, userID string) (loaded, error) {
	decks, err := s.backend.ListDecks(ctx, userID)
	if err != nil {
		return loaded{}, fmt.Errorf("failed to load decks: %w", err)
	}
	cards := map[string][]domain.Card{}
	if s.allCards {
		for i := range decks {
			list, err := s.backend.ListCards(ctx, userID, decks[i].ID)
			if err != nil {
				return loaded{}, fmt.Errorf("failed to load cards of deck %s: %w", decks[i].ID, err)
			}
			cards[decks[i].ID] = nonNilCards(list)
			decks[i].CardCount = len(list)
		}
	}
	settings, err := s.backend.GetSettings(ctx, userID)
	if err != nil {
		return loaded{}, fmt.Errorf("failed to load settings: %w", err)
	}
	sessions, err := s.backend.ListStudySessions(ctx, userID)
	if err != nil {
		return loaded{}, fmt.Errorf("failed to load study sessions: %w", err)
	}
	return loaded{decks: decks, settings: *settings, sessions: sessions, cards: cards}, nil
}

// startSession loads the user's data and replaces the state with it.
func (s *Store) startSession(ctx context.Context, op string, user *domain.User) error {
	data, err := s.load(ctx, user.ID)
	if err != nil {
		return s.fail(ctx, op, err)
	}

	s.commit(ctx, op, func(st *State) {
		u := *user
		*st = State{
			IsAuthenticated: true,
			User:            &u,
			Decks:           nonNilDecks(data.decks),
			Cards:           data.cards,
			Settings:        data.settings,
			StudySessions:   nonNilSessions(data.sessions),
		}
	})

	logger.FromContextOrDefault(ctx, s.logger).Info("session started",
		slog.String("operation", op),
		slog.String("user_id", user.ID),
		slog.Int("deck_count", len(data.decks)))
	return nil
}

// Initialize resumes the session of an already authenticated user.
func (s *Store) Initialize(ctx context.Context, userID string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	user, err := s.backend.CurrentUser(ctx, userID)
	if err != nil {
		return s.fail(ctx, "initialize", err)
	}
	return s.startSession(ctx, "initialize", user)
}

// Login authenticates and loads the user's data.
func (s *Store) Login(ctx context.Context, email, password string) (*domain.User, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	user, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, s.fail(ctx, "login", err)
	}
	if err := s.startSession(ctx, "login", user); err != nil {
		return nil, err
	}
	return user, nil
}

// Signup registers an account. The session starts only when no email
// confirmation is needed.
func (s *Store) Signup(ctx context.Context, email, password, fullName string) (SignupResult, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	user, err := s.backend.Signup(ctx, email, password, fullName)
	if err != nil {
		return SignupResult{}, s.fail(ctx, "signup", err)
	}
	if !user.IsConfirmed() {
		return SignupResult{User: user, NeedsConfirmation: true}, nil
	}
	if err := s.startSession(ctx, "signup", user); err != nil {
		return SignupResult{}, err
	}
	return SignupResult{User: user}, nil
}

// Verify consumes an emailed link and starts a session for its owner.
func (s *Store) Verify(ctx context.Context, token string, kind domain.VerificationKind) (*domain.User, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	user, err := s.backend.Verify(ctx, token, kind)
	if err != nil {
		return nil, s.fail(ctx, "verify", err)
	}
	if err := s.startSession(ctx, "verify", user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout ends the session and resets the state to EmptyState.
func (s *Store) Logout(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	userID := s.UserID()
	if userID != "" {
		if err := s.backend.Logout(ctx, userID); err != nil {
			return s.fail(ctx, "logout", err)
		}
	}
	s.commit(ctx, "logout", func(st *State) { *st = EmptyState() })
	return nil
}

// ResendConfirmation mails a new signup confirmation link.
func (s *Store) ResendConfirmation(ctx context.Context, email string) error {
	if err := s.backend.ResendConfirmation(ctx, email); err != nil {
		return s.fail(ctx, "resend_confirmation", err)
	}
	return nil
}

// ResetPassword mails a password recovery link.
func (s *Store) ResetPassword(ctx context.Context, email string) error {
	if err := s.backend.ResetPassword(ctx, email); err != nil {
		return s.fail(ctx, "reset_password", err)
	}
	return nil
}

// UpdatePassword changes the logged-in user's password.
func (s *Store) UpdatePassword(ctx context.Context, password string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	userID, err := s.requireUser()
	if err != nil {
		return err
	}
	if err := s.backend.UpdatePassword(ctx, userID, password); err != nil {
		return s.fail(ctx, "update_password", err)
	}
	return nil
}

// FetchDecks replaces the local deck list. Card counts come from the card
// rows, so a drifted stored count is corrected on every refresh.
func (s *Store) FetchDecks(ctx context.Context) ([]domain.Deck, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	userID, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	decks, err := s.backend.ListDecks(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "fetch_decks", err)
	}

	decks = nonNilDecks(decks)
	s.commit(ctx, "fetch_decks", func(st *State) {
		st.Decks = cloneDecks(decks)
	})
	return decks, nil
}

// FetchCards replaces one deck's local card list and sets its card count to
// the number of cards returned.
func (s *Store) FetchCards(ctx context.Context, deckID string) ([]domain.Card, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	userID, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	cards, err := s.backend.ListCards(ctx, userID, deckID)
	if err != nil {
		return nil, s.fail(ctx, "fetch_cards", err)
	}

	cards = cloneCards(cards)
	s.commit(ctx, "fetch_cards", func(st *State) {
		st.Cards[deckID] = cloneCards(cards)
		if d := st.findDeck(deckID); d != nil {
			d.CardCount = len(cards)
		}
	})
	return cards, nil
}

// FetchSettings replaces the local settings.
func (s *Store) FetchSettings(ctx context.Context) (domain.Settings, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	userID, err := s.requireUser()
	if err != nil {
		return domain.Settings{}, err
	}
	settings, err := s.backend.GetSettings(ctx, userID)
	if err != nil {
		return domain.Settings{}, s.fail(ctx, "fetch_settings", err)
	}

	s.commit(ctx, "fetch_settings", func(st *State) {
		st.Settings = cloneSettings(*settings)
	})
	return *settings, nil
}

// FetchStudySessions replaces the local study history.
func (s *Store) FetchStudySessions(ctx context.Context) ([]domain.StudySession, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	userID, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	sessions, err := s.backend.ListStudySessions(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "fetch_study_sessions", err)
	}

	sessions = nonNilSessions(sessions)
	s.commit(ctx, "fetch_study_sessions", func(st *State) {
		st.StudySessions = cloneSessions(sessions)
	})
	return sessions, nil
}

// CreateDeck creates an empty deck and puts it first in the local list.
func (s *Store) CreateDeck(ctx context.Context, title, description string) (*domain.Deck, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	userID, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	in := domain.DeckInput{Title: title, Description: description}.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	deck, err := s.backend.CreateDeck(ctx, userID, in)
	if err != nil {
		return nil, s.fail(ctx, "create_deck", err)
	}

	s.commit(ctx, "create_deck", func(st *State) {
		st.Decks = append(cloneDecks([]domain.Deck{*deck}), st.Decks...)
		st.Cards[deck.ID] = []domain.Card{}
	})
	return deck, nil
}

// UpdateDeck replaces a deck's title and description.
func (s *Store) UpdateDeck(ctx context.Context, deckID, title, description string) (*domain.Deck, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	userID, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	in := domain.DeckInput{Title: title, Description: description}.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.backend.UpdateDeck(ctx, userID, deckID, in)
	if err != nil {
		return nil, s.fail(ctx, "update_deck", err)
	}

	var result domain.Deck
	s.commit(ctx, "update_deck", func(st *State) {
		d := st.findDeck(deckID)
		if d == nil {
			result = cloneDecks([]domain.Deck{*updated})[0]
			return
		}
		d.Title = updated.Title
		d.Description = in.DescriptionPtr()
		d.UpdatedAt = updated.UpdatedAt
		result = cloneDecks([]domain.Deck{*d})[0]
	})
	return &result, nil
}

// DeleteDeck removes a deck and its local card list.
func (s *Store) DeleteDeck(ctx context.Context, deckID string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	userID, err := s.requireUser()
	if err != nil {
		return err
	}
	if err := s.backend.DeleteDeck(ctx, userID, deckID); err != nil {
		return s.fail(ctx, "delete_deck", err)
	}

	s.commit(ctx, "delete_deck", func(st *State) {
		if i := st.deckIndex(deckID); i >= 0 {
			st.Decks = append(st.Decks[:i:i], st.Decks[i+1:]...)
		}
		delete(st.Cards, deckID)
	})
	return nil
}

// nextPosition is the position of the last card: the length of the loaded
// card list, or the deck's count when its cards were never fetched.
func (s *Store) nextPosition(deckID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cards, ok := s.state.Cards[deckID]; ok {
		return len(cards)
	}
	if d := s.state.findDeck(deckID); d != nil {
		return d.CardCount
	}
	return 0
}

// AddCard appends a card at position count+1 and increments the deck count.
func (s *Store) AddCard(ctx context.Context, deckID, front, back string) (*domain.Card, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	userID, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	in := domain.CardInput{FrontText: front, BackText: back}.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	card, err := s.backend.CreateCard(ctx, userID, deckID, in, s.nextPosition(deckID)+1)
	if err != nil {
		return nil, s.fail(ctx, "add_card", err)
	}

	s.commit(ctx, "add_card", func(st *State) {
		// An unloaded list stays unloaded so the next fetch returns every card.
		if cards, ok := st.Cards[deckID]; ok {
			st.Cards[deckID] = append(cards, *card)
		}
		if d := st.findDeck(deckID); d != nil {
			d.CardCount++
		}
	})
	return card, nil
}

// UpdateCard replaces both sides of a card.
func (s *Store) UpdateCard(ctx context.Context, deckID, cardID, front, back string) (*domain.Card, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	userID, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	in := domain.CardInput{FrontText: front, BackText: back}.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	card, err := s.backend.UpdateCard(ctx, userID, deckID, cardID, in)
	if err != nil {
		return nil, s.fail(ctx, "update_card", err)
	}

	s.commit(ctx, "update_card", func(st *State) {
		cards := st.Cards[deckID]
		for i := range cards {
			if cards[i].ID == cardID {
				cards[i].FrontText = card.FrontText
				cards[i].BackText = card.BackText
				cards[i].UpdatedAt = card.UpdatedAt
			}
		}
	})
	return card, nil
}

// DeleteCard removes a card and decrements the deck count, never below zero.
func (s *Store) DeleteCard(ctx context.Context, deckID, cardID string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	userID, err := s.requireUser()
	if err != nil {
		return err
	}
	if err := s.backend.DeleteCard(ctx, userID, deckID, cardID); err != nil {
		return s.fail(ctx, "delete_card", err)
	}

	s.commit(ctx, "delete_card", func(st *State) {
		if cards, ok := st.Cards[deckID]; ok {
			kept := cards[:0:0]
			for _, c := range cards {
				if c.ID != cardID {
					kept = append(kept, c)
				}
			}
			st.Cards[deckID] = kept
		}
		if d := st.findDeck(deckID); d != nil {
			d.CardCount = max(0, d.CardCount-1)
		}
	})
	return nil
}

// AddCardsFromAI bulk-inserts generated cards after the deck's current cards
// and raises the deck count by the number inserted.
func (s *Store) AddCardsFromAI(ctx context.Context, deckID string, generated []domain.GeneratedCard) ([]domain.Card, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	userID, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	if len(generated) == 0 {
		return []domain.Card{}, nil
	}
	if err := domain.ValidateBatch(generated); err != nil {
		return nil, err
	}

	created, err := s.backend.CreateCards(ctx, userID, deckID, generated, s.nextPosition(deckID))
	if err != nil {
		return nil, s.fail(ctx, "add_cards_from_ai", err)
	}

	s.commit(ctx, "add_cards_from_ai", func(st *State) {
		if cards, ok := st.Cards[deckID]; ok {
			st.Cards[deckID] = append(cards, cloneCards(created)...)
		}
		if d := st.findDeck(deckID); d != nil {
			d.CardCount += len(created)
		}
	})

	logger.FromContextOrDefault(ctx, s.logger).Info("generated cards saved",
		slog.String("deck_id", deckID),
		slog.Int("count", len(created)))
	return cloneCards(created), nil
}

// UpdateSettings merges patch into the settings and refreshes updated_at.
func (s *Store) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	userID, err := s.requireUser()
	if err != nil {
		return domain.Settings{}, err
	}
	if err := patch.Validate(); err != nil {
		return domain.Settings{}, err
	}

	updated, err := s.backend.UpdateSettings(ctx, userID, patch)
	if err != nil {
		return domain.Settings{}, s.fail(ctx, "update_settings", err)
	}

	s.commit(ctx, "update_settings", func(st *State) {
		st.Settings = cloneSettings(*updated)
	})
	return *updated, nil
}

// SetTheme changes only the color theme.
func (s *Store) SetTheme(ctx context.Context, theme string) (domain.Settings, error) {
	return s.UpdateSettings(ctx, domain.SettingsPatch{Theme: &theme})
}

// CreateStudySession records a finished study run at the top of the history.
func (s *Store) CreateStudySession(ctx context.Context, deckID string, knownCount, totalCount int) (*domain.StudySession, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	userID, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	in := domain.StudySessionInput{DeckID: deckID, KnownCount: knownCount, TotalCount: totalCount}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	session, err := s.backend.CreateStudySession(ctx, userID, in)
	if err != nil {
		return nil, s.fail(ctx, "create_study_session", err)
	}

	s.commit(ctx, "create_study_session", func(st *State) {
		st.StudySessions = append(cloneSessions([]domain.StudySession{*session}), st.StudySessions...)
	})
	return session, nil
}

// StudyQueue returns the deck's cards in study order: by position, shuffled
// when the settings ask for it. Cards are fetched first if not yet loaded.
func (s *Store) StudyQueue(ctx context.Context, deckID string) ([]domain.Card, error) {
	if _, ok := s.Deck(deckID); !ok {
		if s.UserID() == "" {
			return nil, ErrNotAuthenticated
		}
		return nil, store.ErrDeckNotFound
	}

	cards, ok := s.Cards(deckID)
	if !ok {
		var err error
		if cards, err = s.FetchCards(ctx, deckID); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(cards, func(i, j int) bool { return cards[i].Position < cards[j].Position })
	if s.Settings().ShuffleEnabled {
		s.shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	}
	return cards, nil
}

func nonNilDecks(decks []domain.Deck) []domain.Deck {
	if decks == nil {
		return []domain.Deck{}
	}
	return decks
}

func nonNilCards(cards []domain.Card) []domain.Card {
	if cards == nil {
		return []domain.Card{}
	}
	return cards
}

func nonNilSessions(sessions []domain.StudySession) []domain.StudySession {
	if sessions == nil {
		return []domain.StudySession{}
	}
	return sessions
}

// normalizeState replaces nil collections so the JSON form never carries null lists.
func normalizeState(st State) State {
	st.Decks = nonNilDecks(st.Decks)
	st.StudySessions = nonNilSessions(st.StudySessions)
	if st.Cards == nil {
		st.Cards = map[string][]domain.Card{}
	}
	return st
}
