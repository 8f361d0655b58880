package schedule

import (
	"errors"
	"fmt"
	"time"
)

// Construction-time errors. Both block schedule creation.
var (
	ErrInvalidDuration = errors.New("duration on must be greater than zero and shorter than a day")
	ErrTimeParsing     = errors.New("failed to parse time from HH:MM format")
)

// Window is a daily actuation window: the output is on for DurationOn
// starting at StartTime, and off for the remainder of the day.
type Window struct {
	DurationOn  time.Duration
	DurationOff time.Duration
	// StartTime is nil when the window should start at the moment it is scheduled.
	StartTime *TimeOfDay
}

// NewWindow validates durationOn and derives DurationOff.
func NewWindow(durationOn time.Duration, start *TimeOfDay) (Window, error) {
	if durationOn <= 0 || durationOn >= Day {
		return Window{}, fmt.Errorf("%w: got %s", ErrInvalidDuration, durationOn)
	}
	w := Window{
		DurationOn:  durationOn,
		DurationOff: Day - durationOn,
	}
	if start != nil {
		s := *start
		w.StartTime = &s
	}
	return w, nil
}

// ParseWindow builds a Window from a duration and an "HH:MM" start time.
// An empty start leaves StartTime unset.
func ParseWindow(durationOn time.Duration, start string) (Window, error) {
	if start == "" {
		return NewWindow(durationOn, nil)
	}
	tod, err := ParseTimeOfDay(start)
	if err != nil {
		return Window{}, err
	}
	return NewWindow(durationOn, &tod)
}

// StartOr returns the configured start time, or fallback when unset.
func (w Window) StartOr(fallback TimeOfDay) TimeOfDay {
	if w.StartTime == nil {
		return fallback
	}
	return *w.StartTime
}
