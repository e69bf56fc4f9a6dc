package appstore

import (
	"context"
	"log/slog"
	"sync"
)

// Sessions holds one Store per authenticated user.
type Sessions struct {
	newStore func() *Store
	logger   *slog.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

// NewSessions creates an empty registry. newStore builds an unauthenticated
// Store over the configured backend.
func NewSessions(newStore func() *Store, logger *slog.Logger) *Sessions {
	if newStore == nil {
		panic("appstore: store factory cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sessions{
		newStore: newStore,
		logger:   logger.With(slog.String("component", "sessions")),
		stores:   make(map[string]*Store),
	}
}

// New returns a fresh, unregistered Store for a login or signup attempt.
func (r *Sessions) New() *Store {
	return r.newStore()
}

// Put registers st as the session of userID, replacing any previous one.
func (r *Sessions) Put(userID string, st *Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[userID] = st
}

// Get returns the session of userID. A missing session is rebuilt from the
// backend, which happens after a restart while the user's token is still valid.
func (r *Sessions) Get(ctx context.Context, userID string) (*Store, error) {
	r.mu.Lock()
	st, ok := r.stores[userID]
	r.mu.Unlock()
	if ok {
		return st, nil
	}

	st = r.newStore()
	if err := st.Initialize(ctx, userID); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.stores[userID]; ok {
		return existing, nil
	}
	r.stores[userID] = st
	r.logger.Debug("session restored", slog.String("user_id", userID))
	return st, nil
}

// Remove forgets the session of userID.
func (r *Sessions) Remove(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, userID)
}

// Len returns the number of registered sessions.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
