package schedule

import (
	"errors"
	"testing"
	"time"
)

func TestNewWindow_RejectsInvalidDuration(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second, Day, Day + time.Minute} {
		if _, err := NewWindow(d, nil); !errors.Is(err, ErrInvalidDuration) {
			t.Fatalf("NewWindow(%s) err = %v, want ErrInvalidDuration", d, err)
		}
	}
}

func TestNewWindow_DerivesOffDuration(t *testing.T) {
	start := NewTimeOfDay(6, 0, 0)
	w, err := NewWindow(90*time.Minute, &start)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	if w.DurationOff != Day-90*time.Minute {
		t.Fatalf("DurationOff = %s", w.DurationOff)
	}
	// the window keeps its own copy of the start time
	start = NewTimeOfDay(7, 0, 0)
	if w.StartTime.String() != "06:00" {
		t.Fatalf("StartTime aliased caller value: %s", w.StartTime)
	}
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow(10*time.Minute, "05:15")
	if err != nil {
		t.Fatalf("ParseWindow: %v", err)
	}
	if w.StartTime == nil || w.StartTime.String() != "05:15" {
		t.Fatalf("unexpected start: %v", w.StartTime)
	}

	w, err = ParseWindow(10*time.Minute, "")
	if err != nil || w.StartTime != nil {
		t.Fatalf("empty start: %v %v", w.StartTime, err)
	}
	fallback := NewTimeOfDay(1, 2, 3)
	if w.StartOr(fallback) != fallback {
		t.Fatalf("StartOr ignored fallback")
	}

	if _, err := ParseWindow(10*time.Minute, "25:00"); !errors.Is(err, ErrTimeParsing) {
		t.Fatalf("expected ErrTimeParsing, got %v", err)
	}
	if _, err := ParseWindow(0, "05:00"); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}
