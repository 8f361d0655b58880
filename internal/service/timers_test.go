package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"valve_timer/internal/actuation"
	"valve_timer/internal/clock"
	"valve_timer/internal/models"
	"valve_timer/internal/repository"
	"valve_timer/internal/schedule"
)

type timerFixture struct {
	svc    *TimerService
	repo   *memTimerRepo
	events *fakeEventRepo
	sched  *Scheduler
	sink   *captureSink
	clock  *clock.Fake
}

func newTimerFixture(t *testing.T) *timerFixture {
	t.Helper()
	f := &timerFixture{
		repo:   newMemTimerRepo(),
		events: &fakeEventRepo{},
		sink:   &captureSink{},
		clock:  clock.NewFake(day(8, 15)),
	}
	f.sched = NewScheduler(f.sink, f.clock, nil)
	t.Cleanup(f.sched.Shutdown)
	f.svc = NewTimerService(f.repo, f.events, f.sched, f.clock, 0, nil)
	return f
}

func intPtr(v int) *int { return &v }

func TestTimerService_Create(t *testing.T) {
	f := newTimerFixture(t)

	v, err := f.svc.Create(context.Background(), TimerInput{
		Name:          " lawn ",
		DurationOnSec: 1800,
		StartTime:     "09:00",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if v.ID == "" || v.Name != "lawn" || v.Channel != DefaultChannel {
		t.Fatalf("unexpected timer %+v", v.Timer)
	}
	if v.DurationOffSec != int64((schedule.Day-30*time.Minute)/time.Second) {
		t.Fatalf("duration off = %d", v.DurationOffSec)
	}
	if v.Status == nil || v.Status.Start.String() != "09:00" || v.Status.Stop.String() != "09:30" {
		t.Fatalf("status = %+v", v.Status)
	}
	if _, err := f.repo.Get(context.Background(), v.ID); err != nil {
		t.Fatalf("timer not stored: %v", err)
	}

	events := f.events.appendedEvents()
	if len(events) != 1 || events[0].Type != models.EventTimerCreated || events[0].Channel != DefaultChannel {
		t.Fatalf("events = %+v", events)
	}

	// the stored timer is live
	if !f.clock.BlockUntil(1, 2*time.Second) {
		t.Fatalf("controller never armed")
	}
	f.clock.Advance(45 * time.Minute)
	if got := waitMessages(t, f.sink, 1); got[0] != actuation.On(DefaultChannel) {
		t.Fatalf("first message = %+v", got[0])
	}
}

func TestTimerService_Create_EmptyStartPinnedToNow(t *testing.T) {
	f := newTimerFixture(t)
	v, err := f.svc.Create(context.Background(), TimerInput{Name: "now", Channel: intPtr(3), DurationOnSec: 60})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if v.StartTime != "08:15" {
		t.Fatalf("start time = %q, want 08:15", v.StartTime)
	}
}

// Between whole seconds the stored HH:MM:SS lies just behind the clock; the
// window must still open right away rather than a day later.
func TestTimerService_Create_EmptyStartFiresImmediately(t *testing.T) {
	f := newTimerFixture(t)
	f.clock.Advance(30*time.Second + 500*time.Millisecond)

	v, err := f.svc.Create(context.Background(), TimerInput{Name: "now", Channel: intPtr(3), DurationOnSec: 60})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if v.StartTime != "08:15:30" {
		t.Fatalf("start time = %q, want 08:15:30", v.StartTime)
	}
	if got := waitMessages(t, f.sink, 1); got[0] != actuation.On(3) {
		t.Fatalf("first message = %+v, want On(3)", got[0])
	}
	if !f.clock.BlockUntil(1, 2*time.Second) {
		t.Fatalf("off timer never armed")
	}
	f.clock.Advance(time.Minute)
	if got := waitMessages(t, f.sink, 2); got[1] != actuation.Off(3) {
		t.Fatalf("second message = %+v, want Off(3)", got[1])
	}

	// an update without a start time reopens the window at once as well
	if _, err := f.svc.Update(context.Background(), v.ID, TimerInput{Name: "now", Channel: intPtr(3), DurationOnSec: 90}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := waitMessages(t, f.sink, 3); got[2] != actuation.On(3) {
		t.Fatalf("third message = %+v, want On(3)", got[2])
	}
}

func TestTimerService_Create_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   TimerInput
		want error
	}{
		{"missing name", TimerInput{DurationOnSec: 60}, ErrInvalidInput},
		{"negative channel", TimerInput{Name: "x", Channel: intPtr(-1), DurationOnSec: 60}, ErrInvalidInput},
		{"zero duration", TimerInput{Name: "x"}, schedule.ErrInvalidDuration},
		{"full day", TimerInput{Name: "x", DurationOnSec: 86400}, schedule.ErrInvalidDuration},
		{"bad start", TimerInput{Name: "x", DurationOnSec: 60, StartTime: "7pm"}, schedule.ErrTimeParsing},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newTimerFixture(t)
			if _, err := f.svc.Create(context.Background(), tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if timers, _ := f.repo.List(context.Background()); len(timers) != 0 {
				t.Fatalf("invalid timer stored: %+v", timers)
			}
			if len(f.sched.Statuses()) != 0 {
				t.Fatalf("invalid timer scheduled")
			}
		})
	}
}

func TestTimerService_Create_SaveError(t *testing.T) {
	f := newTimerFixture(t)
	f.repo.saveErr = errors.New("disk full")
	if _, err := f.svc.Create(context.Background(), TimerInput{Name: "x", DurationOnSec: 60}); err == nil {
		t.Fatalf("expected save error")
	}
	if len(f.sched.Statuses()) != 0 {
		t.Fatalf("unsaved timer scheduled")
	}
}

func TestTimerService_Create_EventFailureIsNotFatal(t *testing.T) {
	f := newTimerFixture(t)
	f.events.appendErr = errors.New("log full")
	if _, err := f.svc.Create(context.Background(), TimerInput{Name: "x", DurationOnSec: 60}); err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestTimerService_UpdateReschedules(t *testing.T) {
	f := newTimerFixture(t)
	ctx := context.Background()
	v, err := f.svc.Create(ctx, TimerInput{Name: "a", Channel: intPtr(2), DurationOnSec: 60, StartTime: "09:00"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	u, err := f.svc.Update(ctx, v.ID, TimerInput{Name: "b", Channel: intPtr(2), DurationOnSec: 120, StartTime: "10:00"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if u.ID != v.ID || u.Name != "b" || u.Status == nil || u.Status.Start.String() != "10:00" {
		t.Fatalf("unexpected update result %+v", u)
	}
	if !u.CreatedAt.Equal(v.CreatedAt) {
		t.Fatalf("created_at changed on update")
	}
	if len(f.sched.Statuses()) != 1 {
		t.Fatalf("controllers = %d, want 1", len(f.sched.Statuses()))
	}

	events := f.events.appendedEvents()
	if events[len(events)-1].Type != models.EventTimerUpdated {
		t.Fatalf("last event = %+v", events[len(events)-1])
	}

	if _, err := f.svc.Update(ctx, "ghost", TimerInput{Name: "x", DurationOnSec: 60}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Update(ghost) = %v, want ErrNotFound", err)
	}
}

func TestTimerService_Delete(t *testing.T) {
	f := newTimerFixture(t)
	ctx := context.Background()
	v, _ := f.svc.Create(ctx, TimerInput{Name: "a", DurationOnSec: 60, StartTime: "09:00"})

	if err := f.svc.Delete(ctx, v.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, v.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Get after delete = %v", err)
	}
	if len(f.sched.Statuses()) != 0 || f.clock.Pending() != 0 {
		t.Fatalf("controller still running after delete")
	}
	events := f.events.appendedEvents()
	if events[len(events)-1].Type != models.EventTimerDeleted {
		t.Fatalf("last event = %+v", events[len(events)-1])
	}
	if err := f.svc.Delete(ctx, v.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestTimerService_List(t *testing.T) {
	f := newTimerFixture(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b"} {
		if _, err := f.svc.Create(ctx, TimerInput{Name: name, DurationOnSec: 60}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	got, err := f.svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	for _, v := range got {
		if v.Status == nil {
			t.Fatalf("timer %s has no live status", v.ID)
		}
	}
}
