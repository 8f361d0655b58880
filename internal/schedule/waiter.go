package schedule

import (
	"context"
	"sync"
	"time"

	"valve_timer/internal/clock"
)

// Waiter resolves once, at the next occurrence of a time-of-day.
//
// The timer callback and callers polling the Waiter synchronize through a
// single mutex guarding the completion flag and the pending continuation,
// so a continuation attached concurrently with completion is never lost.
type Waiter struct {
	target   TimeOfDay
	deadline time.Time
	timer    clock.Timer

	mu        sync.Mutex
	completed bool
	wake      func()
	done      chan struct{}
}

// WaitUntil computes the delay until target once and arms a background timer.
func WaitUntil(c clock.Clock, target TimeOfDay) *Waiter {
	now := c.Now()
	delay := Until(now, target)
	w := &Waiter{
		target:   target,
		deadline: now.Add(delay),
		done:     make(chan struct{}),
	}
	// the timer may fire before AfterFunc returns when delay is zero
	t := c.AfterFunc(delay, w.complete)
	w.mu.Lock()
	w.timer = t
	w.mu.Unlock()
	return w
}

// Target returns the time-of-day being waited for.
func (w *Waiter) Target() TimeOfDay { return w.target }

// Deadline returns the instant the Waiter was computed to resolve at.
func (w *Waiter) Deadline() time.Time { return w.deadline }

// Poll reports whether the Waiter has resolved. When it has not, wake
// replaces any previously attached continuation and is invoked exactly once
// upon completion. Poll is idempotent.
func (w *Waiter) Poll(wake func()) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.completed {
		return true
	}
	if wake != nil {
		w.wake = wake
	}
	return false
}

// Done is closed once the Waiter resolves.
func (w *Waiter) Done() <-chan struct{} { return w.done }

// Wait blocks until the Waiter resolves or ctx is cancelled.
func (w *Waiter) Wait(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop disarms the background timer. A stopped Waiter never resolves.
// It reports whether the timer was still pending.
func (w *Waiter) Stop() bool {
	w.mu.Lock()
	t := w.timer
	if w.completed {
		w.mu.Unlock()
		return false
	}
	w.wake = nil
	w.mu.Unlock()
	if t == nil {
		return false
	}
	return t.Stop()
}

func (w *Waiter) complete() {
	w.mu.Lock()
	if w.completed {
		w.mu.Unlock()
		return
	}
	w.completed = true
	wake := w.wake
	w.wake = nil
	close(w.done)
	w.mu.Unlock()

	if wake != nil {
		wake()
	}
}
