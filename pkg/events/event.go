package events

import "time"

// Event types emitted by the form session core.
const (
	TypeSessionCreated = "SESSION_CREATED"
	TypeSessionExpired = "SESSION_EXPIRED"
	TypeSessionReset   = "SESSION_RESET"
	TypeFieldsApplied  = "FIELDS_APPLIED"
	TypeFormCompleted  = "FORM_COMPLETED"
	TypeDownloadReady  = "DOWNLOAD_READY"
	TypeSessionClosed  = "SESSION_CLOSED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "FORM_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the canonical Event implementation used across services.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
