package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"valve_timer/internal/actuation"
	"valve_timer/internal/clock"
	"valve_timer/internal/gpio"
	"valve_timer/internal/models"
)

func TestMonitoringService_GetStatus(t *testing.T) {
	fc := clock.NewFake(time.Date(2026, 3, 10, 7, 0, 0, 0, time.Local))
	actor, sink := actuation.NewActor(gpio.NewSimDriver())
	sched := NewScheduler(sink, fc, nil)
	t.Cleanup(sched.Shutdown)

	if err := sched.Schedule(models.Timer{ID: "b", Channel: 2, DurationOnSec: 60, StartTime: "09:00"}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if err := sched.Schedule(models.Timer{ID: "a", Channel: 1, DurationOnSec: 60, StartTime: "08:00"}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	svc := NewMonitoringService(actor.Stats(), sched, fc)
	got, err := svc.GetStatus(context.Background())
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if got.Now.Location() != time.UTC || !got.Now.Equal(fc.Now()) {
		t.Errorf("now = %v, want %v in UTC", got.Now, fc.Now())
	}
	if got.Actuator.Running {
		t.Errorf("actor reported running before Run")
	}
	if len(got.Timers) != 2 || got.Timers[0].TimerID != "a" || got.Timers[1].Channel != 2 {
		t.Fatalf("unexpected timers %+v", got.Timers)
	}
}

func TestMonitoringService_GetStatus_NoRuntime(t *testing.T) {
	svc := NewMonitoringService(nil, nil, clock.NewReal())
	got, err := svc.GetStatus(context.Background())
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	// an empty list, not null, keeps the JSON shape stable
	if got.Timers == nil || len(got.Timers) != 0 {
		t.Fatalf("timers = %#v", got.Timers)
	}
}

func TestMonitoringService_GetStatus_CancelledContext(t *testing.T) {
	svc := NewMonitoringService(nil, nil, clock.NewReal())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.GetStatus(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
