// Package clock abstracts wall-clock reads and timers so that schedules can be
// driven by a fake clock in tests.
package clock

import "time"

// Clock provides the current time and delayed callbacks.
type Clock interface {
	// Now returns the current local wall-clock time.
	Now() time.Time
	// AfterFunc calls f in its own goroutine once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports false if the
	// callback already fired or was stopped.
	Stop() bool
}

// Real implements Clock on top of the time package.
type Real struct{}

// NewReal returns the system clock.
func NewReal() Real { return Real{} }

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

var (
	_ Clock = Real{}
	_ Clock = (*Fake)(nil)
)
