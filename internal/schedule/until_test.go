package schedule

import (
	"errors"
	"testing"
	"time"

	"valve_timer/internal/clock"
)

func at(h, m, s int) time.Time {
	return time.Date(2026, 3, 10, h, m, s, 0, time.Local)
}

func TestUntil_Cases(t *testing.T) {
	cases := []struct {
		name   string
		now    time.Time
		target TimeOfDay
		want   time.Duration
	}{
		{"later_today", at(8, 0, 0), NewTimeOfDay(9, 30, 0), 90 * time.Minute},
		{"equal_fires_now", at(8, 0, 0), NewTimeOfDay(8, 0, 0), 0},
		{"one_minute_ago", at(8, 0, 0), NewTimeOfDay(7, 59, 0), Day - time.Minute},
		{"just_after_midnight", at(23, 59, 0), NewTimeOfDay(0, 1, 0), 2 * time.Minute},
		{"midnight_target", at(12, 0, 0), NewTimeOfDay(0, 0, 0), 12 * time.Hour},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Until(tc.now, tc.target); got != tc.want {
				t.Fatalf("Until(%s, %s) = %s, want %s", tc.now.Format("15:04:05"), tc.target, got, tc.want)
			}
		})
	}
}

func TestUntil_AlwaysWithinOneDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 13, 17, 42, 123456789, time.Local)
	for sec := 0; sec < 24*60*60; sec += 37 {
		target := NewTimeOfDay(0, 0, sec)
		got := Until(now, target)
		if got < 0 || got >= Day {
			t.Fatalf("Until(%s) = %s out of [0, 24h)", target, got)
		}
	}
}

func TestTimeUntil_UsesClock(t *testing.T) {
	fc := clock.NewFake(at(6, 0, 0))
	if got := TimeUntil(fc, NewTimeOfDay(6, 0, 0)); got != 0 {
		t.Fatalf("TimeUntil(now) = %s, want 0", got)
	}
	fc.Advance(time.Minute)
	if got := TimeUntil(fc, NewTimeOfDay(6, 0, 0)); got != Day-time.Minute {
		t.Fatalf("got %s, want %s", got, Day-time.Minute)
	}
}

func TestTimeOfDay_ParseAndWrap(t *testing.T) {
	tod, err := ParseTimeOfDay("23:30")
	if err != nil {
		t.Fatalf("ParseTimeOfDay: %v", err)
	}
	if tod.String() != "23:30" {
		t.Fatalf("String() = %q", tod.String())
	}
	stop := tod.Add(time.Hour)
	if stop.String() != "00:30" {
		t.Fatalf("wrapped stop = %q, want 00:30", stop.String())
	}
	if got := NewTimeOfDay(25, 0, 0); got != NewTimeOfDay(1, 0, 0) {
		t.Fatalf("NewTimeOfDay did not normalize: %s", got)
	}
	withSec, err := ParseTimeOfDay("07:05:09")
	if err != nil || withSec.String() != "07:05:09" {
		t.Fatalf("seconds layout: %v %q", err, withSec.String())
	}

	for _, bad := range []string{"", "7", "24:00", "12:60", "noon"} {
		if _, err := ParseTimeOfDay(bad); !errors.Is(err, ErrTimeParsing) {
			t.Fatalf("ParseTimeOfDay(%q) err = %v, want ErrTimeParsing", bad, err)
		}
	}
}

func TestTimeOfDay_TextRoundTrip(t *testing.T) {
	var tod TimeOfDay
	if err := tod.UnmarshalText([]byte("06:45")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	b, _ := tod.MarshalText()
	if string(b) != "06:45" {
		t.Fatalf("MarshalText = %q", b)
	}
	if err := tod.UnmarshalText([]byte("bogus")); !errors.Is(err, ErrTimeParsing) {
		t.Fatalf("expected ErrTimeParsing, got %v", err)
	}
}

func TestTimeOfDay_On(t *testing.T) {
	ref := at(15, 0, 0)
	got := NewTimeOfDay(6, 30, 0).On(ref)
	if !got.Equal(at(6, 30, 0)) {
		t.Fatalf("On = %v", got)
	}
}
