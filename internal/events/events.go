package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TypeStateChanged is emitted by the application store after every completed
// operation. Its payload is the full serialized state snapshot.
const TypeStateChanged = "state.changed"

// Event is a notification published by one component and consumed by any
// number of registered handlers.
type Event struct {
	// ID uniquely identifies this event instance.
	ID uuid.UUID `json:"id"`

	// Type determines how handlers interpret the payload.
	Type string `json:"type"`

	// UserID is the session owner the event concerns, if any.
	UserID string `json:"user_id,omitempty"`

	// Payload is the JSON-encoded event data.
	Payload json.RawMessage `json:"payload"`

	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an event with a fresh ID and the JSON encoding of payload.
func NewEvent(eventType, userID string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		UserID:    userID,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler processes events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter publishes events to registered handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}
