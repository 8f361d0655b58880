package schedule

import (
	"time"

	"valve_timer/internal/clock"
)

// Until returns how long after now the next occurrence of target is.
// The result is always in [0, 24h); a target equal to now yields 0.
func Until(now time.Time, target TimeOfDay) time.Duration {
	diff := target.Sub(TimeOfDayOf(now))
	if diff < 0 {
		// already passed today, so it occurs tomorrow
		return Day + diff
	}
	return diff
}

// TimeUntil is Until evaluated against c.
func TimeUntil(c clock.Clock, target TimeOfDay) time.Duration {
	return Until(c.Now(), target)
}
