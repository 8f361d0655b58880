package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"valve_timer/internal/actuation"
	"valve_timer/internal/clock"
	"valve_timer/internal/logger"
	"valve_timer/internal/models"
	"valve_timer/internal/repository"
	"valve_timer/internal/schedule"
)

var errSchedulerClosed = errors.New("scheduler is shut down")

// TimerStatus pairs a timer id with its controller state.
type TimerStatus struct {
	TimerID string `json:"timer_id"`
	schedule.Status
}

// Scheduler owns one running window controller per stored timer.
// Two timers may drive the same channel; their commands interleave in the
// actor queue in the order they are sent.
type Scheduler struct {
	sink  actuation.Sender
	clock clock.Clock
	log   *logger.Logger

	writeMu sync.Mutex // serializes Schedule and Unschedule

	mu          sync.Mutex
	controllers map[string]*schedule.Controller
	closed      bool
}

func NewScheduler(sink actuation.Sender, c clock.Clock, log *logger.Logger) *Scheduler {
	if c == nil {
		c = clock.NewReal()
	}
	return &Scheduler{
		sink:        sink,
		clock:       c,
		log:         logger.OrNop(log),
		controllers: make(map[string]*schedule.Controller),
	}
}

// Schedule starts a controller for t, replacing any controller already
// running for the same id.
func (s *Scheduler) Schedule(t models.Timer) error {
	w, err := schedule.ParseWindow(t.DurationOn(), t.StartTime)
	if err != nil {
		return fmt.Errorf("timer %s: %w", t.ID, err)
	}
	return s.replace(t, w)
}

// ScheduleNow is Schedule for a timer whose window opens at the moment it
// is scheduled. The first On is sent right away; later cycles follow the
// stored start time, which only has whole-second precision.
func (s *Scheduler) ScheduleNow(t models.Timer) error {
	w, err := schedule.NewWindow(t.DurationOn(), nil)
	if err != nil {
		return fmt.Errorf("timer %s: %w", t.ID, err)
	}
	return s.replace(t, w)
}

func (s *Scheduler) replace(t models.Timer, w schedule.Window) error {
	// one replacement at a time, so every started controller is tracked
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("timer %s: %w", t.ID, errSchedulerClosed)
	}
	prev := s.controllers[t.ID]
	s.mu.Unlock()

	// the old loop is stopped before the new one can fire
	if prev != nil {
		prev.Stop()
	}

	ctl := schedule.NewController(t.Channel, w, s.sink,
		schedule.WithClock(s.clock),
		schedule.WithLogger(s.log),
	)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("timer %s: %w", t.ID, errSchedulerClosed)
	}
	s.controllers[t.ID] = ctl.Start(context.Background())
	s.mu.Unlock()

	st := ctl.Status()
	s.log.Infow("timer_scheduled", "timer_id", t.ID, "channel", t.Channel, "start", st.Start, "stop", st.Stop)
	return nil
}

// Unschedule stops the controller for id. It reports whether one existed.
func (s *Scheduler) Unschedule(id string) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	ctl, ok := s.controllers[id]
	delete(s.controllers, id)
	s.mu.Unlock()
	if !ok {
		return false
	}
	ctl.Stop()
	s.log.Infow("timer_unscheduled", "timer_id", id, "channel", ctl.Channel())
	return true
}

// Restore schedules every stored timer. Timers that fail to parse are
// logged and skipped.
func (s *Scheduler) Restore(ctx context.Context, repo repository.TimerRepo) (int, error) {
	timers, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("restore timers: %w", err)
	}
	n := 0
	for _, t := range timers {
		if err := s.Schedule(t); err != nil {
			s.log.Errorw("timer_restore_failed", "timer_id", t.ID, "err", err)
			continue
		}
		n++
	}
	s.log.Infow("timers_restored", "count", n, "stored", len(timers))
	return n, nil
}

// Status returns the controller state for id.
func (s *Scheduler) Status(id string) (schedule.Status, bool) {
	s.mu.Lock()
	ctl, ok := s.controllers[id]
	s.mu.Unlock()
	if !ok {
		return schedule.Status{}, false
	}
	return ctl.Status(), true
}

// Statuses returns all controller states ordered by timer id.
func (s *Scheduler) Statuses() []TimerStatus {
	s.mu.Lock()
	out := make([]TimerStatus, 0, len(s.controllers))
	for id, ctl := range s.controllers {
		out = append(out, TimerStatus{TimerID: id, Status: ctl.Status()})
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].TimerID < out[j].TimerID })
	return out
}

// Shutdown stops every controller and refuses further scheduling.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	s.closed = true
	ctls := s.controllers
	s.controllers = make(map[string]*schedule.Controller)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, ctl := range ctls {
		wg.Add(1)
		go func(c *schedule.Controller) {
			defer wg.Done()
			c.Stop()
		}(ctl)
	}
	wg.Wait()
	s.log.Infow("scheduler_stopped", "controllers", len(ctls))
}
