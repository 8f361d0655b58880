package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Day is the length of one wall-clock day.
const Day = 24 * time.Hour

// Accepted start-time layouts, 24-hour clock.
const (
	layoutHourMinute       = "15:04"
	layoutHourMinuteSecond = "15:04:05"
)

// TimeOfDay is a clock time without a date, always within [00:00, 24:00).
type TimeOfDay struct {
	offset time.Duration // since midnight
}

// NewTimeOfDay builds a TimeOfDay, normalizing out-of-range values modulo 24h.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return fromOffset(time.Duration(hour)*time.Hour +
		time.Duration(minute)*time.Minute +
		time.Duration(second)*time.Second)
}

// TimeOfDayOf returns the local time-of-day of t, including sub-second precision.
func TimeOfDayOf(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return fromOffset(time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond()))
}

// ParseTimeOfDay parses "HH:MM" (or "HH:MM:SS"). Failures wrap ErrTimeParsing.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	layout := layoutHourMinute
	if strings.Count(s, ":") == 2 {
		layout = layoutHourMinuteSecond
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q: %v", ErrTimeParsing, s, err)
	}
	return TimeOfDayOf(t), nil
}

func fromOffset(d time.Duration) TimeOfDay {
	d %= Day
	if d < 0 {
		d += Day
	}
	return TimeOfDay{offset: d}
}

// Add returns the time-of-day d later, wrapping past midnight modulo 24h.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return fromOffset(t.offset + d)
}

// Sub returns t - u as a signed duration in (-24h, 24h).
func (t TimeOfDay) Sub(u TimeOfDay) time.Duration {
	return t.offset - u.offset
}

// SinceMidnight returns the offset of t from 00:00.
func (t TimeOfDay) SinceMidnight() time.Duration { return t.offset }

// On anchors t to the calendar day of ref, in ref's location.
func (t TimeOfDay) On(ref time.Time) time.Time {
	y, m, d := ref.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ref.Location()).Add(t.offset)
}

// String formats as HH:MM, or HH:MM:SS when seconds are set.
func (t TimeOfDay) String() string {
	ref := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(t.offset.Truncate(time.Second))
	if t.offset%time.Minute >= time.Second {
		return ref.Format(layoutHourMinuteSecond)
	}
	return ref.Format(layoutHourMinute)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
