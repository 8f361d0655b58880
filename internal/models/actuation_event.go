package models

import "time"

// Event types written to the actuation log.
const (
	EventOutput       = "OUTPUT"
	EventInput        = "INPUT"
	EventFault        = "FAULT"
	EventTimerCreated = "TIMER_CREATED"
	EventTimerUpdated = "TIMER_UPDATED"
	EventTimerDeleted = "TIMER_DELETED"
)

// ActuationEvent is a single log entry.
type ActuationEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"` // OUTPUT | INPUT | FAULT | TIMER_*
	Channel     int       `json:"channel"`
	Level       bool      `json:"level"`
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
