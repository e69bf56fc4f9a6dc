package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	LastEvent    *Event
	HandlerError error
	HandledCount int
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestNewEvent(t *testing.T) {
	payload := map[string]any{"isAuthenticated": true, "decks": []string{"deck-1"}}

	event, err := NewEvent(TypeStateChanged, "user-1", payload)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "state.changed", event.Type)
	assert.Equal(t, "user-1", event.UserID)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var decoded struct {
		IsAuthenticated bool     `json:"isAuthenticated"`
		Decks           []string `json:"decks"`
	}
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.True(t, decoded.IsAuthenticated)
	assert.Equal(t, []string{"deck-1"}, decoded.Decks)
}

func TestNewEventRejectsUnencodablePayload(t *testing.T) {
	_, err := NewEvent(TypeStateChanged, "", make(chan int))
	assert.Error(t, err)
}

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		event, err := NewEvent("test-event", "", map[string]string{"key": "value"})
		require.NoError(t, err)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		handler1 := &recordingHandler{}
		handler2 := &recordingHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		event, err := NewEvent("test-event", "", map[string]string{"key": "value"})
		require.NoError(t, err)

		require.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Same(t, event, handler1.LastEvent)
		assert.Same(t, event, handler2.LastEvent)
	})

	t.Run("failing handler does not stop later handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)

		failingHandler := &recordingHandler{HandlerError: errors.New("handler error")}
		secondFailure := &recordingHandler{HandlerError: errors.New("second error")}
		successHandler := &recordingHandler{}
		emitter.RegisterHandler(failingHandler)
		emitter.RegisterHandler(secondFailure)
		emitter.RegisterHandler(successHandler)

		event, err := NewEvent("test-event", "", nil)
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		require.Error(t, err)
		assert.Equal(t, "handler error", err.Error())
		assert.Equal(t, 1, failingHandler.HandledCount)
		assert.Equal(t, 1, secondFailure.HandledCount)
		assert.Equal(t, 1, successHandler.HandledCount)
	})
}
