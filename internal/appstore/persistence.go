package appstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/flashdeck/internal/events"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// DefaultStateKey is the key the local state is saved under.
const DefaultStateKey = "flashcard-app-storage"

// PersistenceHandler saves every state.changed snapshot under one key.
type PersistenceHandler struct {
	repo   store.StateStore
	key    string
	logger *slog.Logger
}

// NewPersistenceHandler creates a handler writing to repo. It panics if repo is nil.
func NewPersistenceHandler(repo store.StateStore, key string, logger *slog.Logger) *PersistenceHandler {
	if repo == nil {
		panic("appstore: state store cannot be nil")
	}
	if key == "" {
		key = DefaultStateKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistenceHandler{
		repo:   repo,
		key:    key,
		logger: logger.With(slog.String("component", "state_persistence")),
	}
}

var _ events.EventHandler = (*PersistenceHandler)(nil)

// HandleEvent implements events.EventHandler. Other event types are ignored.
func (h *PersistenceHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeStateChanged {
		return nil
	}
	if err := h.repo.Save(ctx, h.key, []byte(event.Payload)); err != nil {
		logger.FromContextOrDefault(ctx, h.logger).Error("failed to persist state",
			slog.String("key", h.key),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to persist state: %w", err)
	}
	return nil
}

// Restore loads the state saved under key. The boolean is false when nothing
// has been saved yet.
func Restore(ctx context.Context, repo store.StateStore, key string) (State, bool, error) {
	if key == "" {
		key = DefaultStateKey
	}
	raw, err := repo.Load(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrStateNotFound) {
			return State{}, false, nil
		}
		return State{}, false, err
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, false, fmt.Errorf("failed to decode persisted state: %w", err)
	}
	return normalizeState(st), true, nil
}

// DatasetKey is the key the mock backend's data is saved under, next to the
// state saved under key.
func DatasetKey(key string) string {
	if key == "" {
		key = DefaultStateKey
	}
	return key + ":mock-data"
}

// DatasetSource exposes the data to persist. MockBackend implements it.
type DatasetSource interface {
	Dataset() Dataset
}

// DatasetPersistenceHandler saves the mock backend's data after every
// state.changed event, so that changes survive a logout followed by a restart.
type DatasetPersistenceHandler struct {
	repo   store.StateStore
	key    string
	source DatasetSource
	logger *slog.Logger
}

var _ events.EventHandler = (*DatasetPersistenceHandler)(nil)

// NewDatasetPersistenceHandler creates a handler saving source under
// DatasetKey(key). It panics if repo or source is nil.
func NewDatasetPersistenceHandler(repo store.StateStore, key string, source DatasetSource, logger *slog.Logger) *DatasetPersistenceHandler {
	if repo == nil || source == nil {
		panic("appstore: state store and dataset source cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetPersistenceHandler{
		repo:   repo,
		key:    DatasetKey(key),
		source: source,
		logger: logger.With(slog.String("component", "dataset_persistence")),
	}
}

// HandleEvent implements events.EventHandler.
func (h *DatasetPersistenceHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeStateChanged {
		return nil
	}
	raw, err := json.Marshal(h.source.Dataset())
	if err != nil {
		return fmt.Errorf("failed to encode mock data: %w", err)
	}
	if err := h.repo.Save(ctx, h.key, raw); err != nil {
		logger.FromContextOrDefault(ctx, h.logger).Error("failed to persist mock data",
			slog.String("key", h.key),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to persist mock data: %w", err)
	}
	return nil
}

// RestoreDataset loads the mock data saved next to the state under key. The
// boolean is false when nothing has been saved yet.
func RestoreDataset(ctx context.Context, repo store.StateStore, key string) (Dataset, bool, error) {
	raw, err := repo.Load(ctx, DatasetKey(key))
	if err != nil {
		if errors.Is(err, store.ErrStateNotFound) {
			return Dataset{}, false, nil
		}
		return Dataset{}, false, err
	}

	var data Dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return Dataset{}, false, fmt.Errorf("failed to decode persisted mock data: %w", err)
	}
	return copyDataset(data), true, nil
}
