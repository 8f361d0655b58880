package clock

import (
	"testing"
	"time"
)

func TestFake_FiresInDeadlineOrder(t *testing.T) {
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	c := NewFake(start)

	var order []int
	var seen []time.Time
	c.AfterFunc(3*time.Second, func() { order = append(order, 3); seen = append(seen, c.Now()) })
	c.AfterFunc(time.Second, func() { order = append(order, 1); seen = append(seen, c.Now()) })
	c.AfterFunc(10*time.Second, func() { order = append(order, 10) })

	c.Advance(5 * time.Second)
	if len(order) != 2 || order[0] != 1 || order[1] != 3 {
		t.Fatalf("fired %v, want [1 3]", order)
	}
	// callbacks observe the clock at their own deadline
	if !seen[0].Equal(start.Add(time.Second)) || !seen[1].Equal(start.Add(3*time.Second)) {
		t.Fatalf("callbacks saw %v", seen)
	}
	if !c.Now().Equal(start.Add(5*time.Second)) || c.Pending() != 1 {
		t.Fatalf("now=%v pending=%d", c.Now(), c.Pending())
	}
}

func TestFake_Stop(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	fired := false
	tm := c.AfterFunc(time.Minute, func() { fired = true })
	if !tm.Stop() {
		t.Fatalf("Stop on pending timer returned false")
	}
	if tm.Stop() {
		t.Fatalf("second Stop returned true")
	}
	c.Advance(time.Hour)
	if fired {
		t.Fatalf("stopped timer fired")
	}
}

func TestFake_NonPositiveDelayRunsImmediately(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	done := make(chan struct{})
	c.AfterFunc(0, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("zero delay callback never ran")
	}
	if c.Pending() != 0 {
		t.Fatalf("immediate timer left pending")
	}
}

func TestFake_BlockUntilTimesOut(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	if c.BlockUntil(1, 10*time.Millisecond) {
		t.Fatalf("BlockUntil reported armed timer")
	}
	c.AfterFunc(time.Second, func() {})
	if !c.BlockUntil(1, 10*time.Millisecond) {
		t.Fatalf("BlockUntil missed armed timer")
	}
}
