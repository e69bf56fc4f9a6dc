package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockUserStore mocks store.UserStore. WithTx returns the receiver.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) UpdatePassword(ctx context.Context, id string, hashedPassword string) error {
	args := m.Called(ctx, id, hashedPassword)
	return args.Error(0)
}

func (m *MockUserStore) Confirm(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

// MockVerificationTokenStore mocks store.VerificationTokenStore.
type MockVerificationTokenStore struct {
	mock.Mock
}

func (m *MockVerificationTokenStore) Create(ctx context.Context, token *domain.VerificationToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockVerificationTokenStore) Consume(ctx context.Context, token string) (*domain.VerificationToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationToken), args.Error(1)
}

func (m *MockVerificationTokenStore) DeleteForUser(ctx context.Context, userID string, kind domain.VerificationKind) error {
	args := m.Called(ctx, userID, kind)
	return args.Error(0)
}

func (m *MockVerificationTokenStore) WithTx(tx *sql.Tx) store.VerificationTokenStore {
	return m
}

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
	args := m.Called(ctx, settings)
	return args.Error(0)
}

func (m *MockSettingsStore) Update(ctx context.Context, userID string, patch domain.SettingsPatch) (*domain.Settings, error) {
	args := m.Called(ctx, userID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settings), args.Error(1)
}

func (m *MockSettingsStore) WithTx(tx *sql.Tx) store.SettingsStore {
	return m
}

// recordingMailer captures sent links.
type recordingMailer struct {
	mu    sync.Mutex
	sent  []sentMail
	fails error
}

type sentMail struct {
	Email string
	Kind  domain.VerificationKind
	Link  string
}

func (r *recordingMailer) SendVerification(ctx context.Context, email string, kind domain.VerificationKind, link string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMail{Email: email, Kind: kind, Link: link})
	return r.fails
}

// plainHasher keeps tests fast; it is not a real hash.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return errMismatch
	}
	return nil
}
