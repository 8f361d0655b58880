package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"valve_timer/internal/clock"
	"valve_timer/internal/logger"
	"valve_timer/internal/models"
	"valve_timer/internal/repository"
	"valve_timer/internal/schedule"

	"github.com/google/uuid"
)

// DefaultChannel is the output used when a timer does not name one.
const DefaultChannel = 476

// TimerInput is the client-supplied part of a timer.
type TimerInput struct {
	Name          string
	Description   string
	Channel       *int
	DurationOnSec int64
	StartTime     string // HH:MM; empty means the moment the timer is created
}

// TimerView is a stored timer together with its live controller state.
type TimerView struct {
	models.Timer
	Status *schedule.Status `json:"status,omitempty"`
}

type TimerService struct {
	timerRepo      repository.TimerRepo
	eventRepo      repository.EventRepo
	scheduler      *Scheduler
	clock          clock.Clock
	defaultChannel int
	log            *logger.Logger
}

func NewTimerService(
	timerRepo repository.TimerRepo,
	eventRepo repository.EventRepo,
	scheduler *Scheduler,
	c clock.Clock,
	defaultChannel int,
	log *logger.Logger,
) *TimerService {
	if defaultChannel <= 0 {
		defaultChannel = DefaultChannel
	}
	return &TimerService{
		timerRepo:      timerRepo,
		eventRepo:      eventRepo,
		scheduler:      scheduler,
		clock:          c,
		defaultChannel: defaultChannel,
		log:            logger.OrNop(log),
	}
}

// Create validates in, stores it and starts its controller. An empty start
// time is pinned to the current time-of-day so a restart keeps the window.
func (s *TimerService) Create(ctx context.Context, in TimerInput) (TimerView, error) {
	t, startNow, err := s.build(in)
	if err != nil {
		return TimerView{}, err
	}
	t.ID = uuid.NewString()
	if _, err := s.timerRepo.Save(ctx, t); err != nil {
		return TimerView{}, err
	}
	saved, err := s.timerRepo.Get(ctx, t.ID)
	if err != nil {
		return TimerView{}, err
	}
	if err := s.schedule(saved, startNow); err != nil {
		return TimerView{}, err
	}
	s.record(ctx, models.EventTimerCreated, saved, "Timer created")
	return s.view(saved), nil
}

// Update replaces the definition of an existing timer and restarts its
// controller with the new window.
func (s *TimerService) Update(ctx context.Context, id string, in TimerInput) (TimerView, error) {
	if _, err := s.timerRepo.Get(ctx, id); err != nil {
		return TimerView{}, err
	}
	t, startNow, err := s.build(in)
	if err != nil {
		return TimerView{}, err
	}
	t.ID = id
	if _, err := s.timerRepo.Save(ctx, t); err != nil {
		return TimerView{}, err
	}
	saved, err := s.timerRepo.Get(ctx, id)
	if err != nil {
		return TimerView{}, err
	}
	if err := s.schedule(saved, startNow); err != nil {
		return TimerView{}, err
	}
	s.record(ctx, models.EventTimerUpdated, saved, "Timer updated")
	return s.view(saved), nil
}

// Delete stops the timer's controller and removes it. The output is left
// at whatever level it had.
func (s *TimerService) Delete(ctx context.Context, id string) error {
	t, err := s.timerRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.timerRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.scheduler.Unschedule(id)
	s.record(ctx, models.EventTimerDeleted, t, "Timer deleted")
	return nil
}

func (s *TimerService) Get(ctx context.Context, id string) (TimerView, error) {
	t, err := s.timerRepo.Get(ctx, id)
	if err != nil {
		return TimerView{}, err
	}
	return s.view(t), nil
}

func (s *TimerService) List(ctx context.Context) ([]TimerView, error) {
	timers, err := s.timerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TimerView, 0, len(timers))
	for _, t := range timers {
		out = append(out, s.view(t))
	}
	return out, nil
}

// schedule starts the controller for t. A timer pinned to "now" opens its
// first window immediately: the stored HH:MM:SS is already in the past.
func (s *TimerService) schedule(t models.Timer, startNow bool) error {
	if startNow {
		return s.scheduler.ScheduleNow(t)
	}
	return s.scheduler.Schedule(t)
}

// build validates in. startNow reports that the start time was omitted and
// pinned to the current time-of-day.
func (s *TimerService) build(in TimerInput) (t models.Timer, startNow bool, err error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Timer{}, false, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	channel := s.defaultChannel
	if in.Channel != nil {
		channel = *in.Channel
	}
	if channel < 0 {
		return models.Timer{}, false, fmt.Errorf("%w: channel must not be negative", ErrInvalidInput)
	}

	start := strings.TrimSpace(in.StartTime)
	if start == "" {
		startNow = true
		start = schedule.TimeOfDayOf(s.clock.Now()).String()
	}
	w, err := schedule.ParseWindow(time.Duration(in.DurationOnSec)*time.Second, start)
	if err != nil {
		return models.Timer{}, false, err
	}

	return models.Timer{
		Name:           name,
		Description:    strings.TrimSpace(in.Description),
		Channel:        channel,
		DurationOnSec:  in.DurationOnSec,
		DurationOffSec: int64(w.DurationOff / time.Second),
		StartTime:      w.StartTime.String(),
	}, startNow, nil
}

func (s *TimerService) view(t models.Timer) TimerView {
	v := TimerView{Timer: t}
	if st, ok := s.scheduler.Status(t.ID); ok {
		v.Status = &st
	}
	return v
}

// record appends a timer lifecycle event. The change already happened, so a
// failed append is only logged.
func (s *TimerService) record(ctx context.Context, typ string, t models.Timer, msg string) {
	err := s.eventRepo.Append(ctx, models.ActuationEvent{
		OccurredAt:  s.clock.Now().UTC(),
		Type:        typ,
		Channel:     t.Channel,
		Description: msg,
		Metadata: map[string]any{
			"timer_id":     t.ID,
			"name":         t.Name,
			"start_time":   t.StartTime,
			"duration_sec": t.DurationOnSec,
		},
	})
	if err != nil {
		s.log.Errorw("timer_event_append_failed", "type", typ, "timer_id", t.ID, "err", err)
	}
}
