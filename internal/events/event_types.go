package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	// EventTokenUpdated is raised when this console instance writes or clears
	// the stored token.
	EventTokenUpdated EventType = "token_updated"
	// EventStorageChanged is raised when another instance sharing the same
	// store changes the token.
	EventStorageChanged EventType = "storage_changed"
)

// Reason describes why the token changed.
type Reason string

const (
	ReasonLogin        Reason = "login"
	ReasonLogout       Reason = "logout"
	ReasonBootCheck    Reason = "boot_check"
	ReasonInvalidated  Reason = "invalidated"
	ReasonMalformed    Reason = "malformed"
	ReasonExternalSet  Reason = "external_set"
	ReasonExternalDrop Reason = "external_clear"
)

// Event represents a session event emitted by the gate or the store watcher.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Reason    Reason      `json:"reason"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// New builds an event stamped with a fresh id and the current time.
func New(eventType EventType, reason Reason, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TokenUpdatedPayload payload.
type TokenUpdatedPayload struct {
	Present bool `json:"present"`
	Status  int  `json:"status,omitempty"`
}

// StorageChangedPayload payload.
type StorageChangedPayload struct {
	Key     string `json:"key"`
	Present bool   `json:"present"`
	Origin  string `json:"origin,omitempty"`
}
