package models

import "time"

// Timer is a stored daily on/off schedule for one output channel.
type Timer struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Channel        int       `json:"channel"`
	DurationOnSec  int64     `json:"duration_on_sec"`
	DurationOffSec int64     `json:"duration_off_sec"`
	StartTime      string    `json:"start_time,omitempty"` // HH:MM; empty means "when scheduled"
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DurationOn returns the on-duration as a time.Duration.
func (t Timer) DurationOn() time.Duration {
	return time.Duration(t.DurationOnSec) * time.Second
}
