package service

import (
	"context"
	"time"

	"valve_timer/internal/actuation"
	"valve_timer/internal/clock"
)

// SystemStatus is the runtime view served to operators.
type SystemStatus struct {
	Now      time.Time          `json:"now"`
	Actuator actuation.Snapshot `json:"actuator"`
	Timers   []TimerStatus      `json:"timers"`
}

type MonitoringService struct {
	stats     *actuation.Stats
	scheduler *Scheduler
	clock     clock.Clock
}

func NewMonitoringService(stats *actuation.Stats, scheduler *Scheduler, c clock.Clock) *MonitoringService {
	return &MonitoringService{stats: stats, scheduler: scheduler, clock: c}
}

// GetStatus combines actor counters with every controller's phase.
func (s *MonitoringService) GetStatus(ctx context.Context) (SystemStatus, error) {
	if err := ctx.Err(); err != nil {
		return SystemStatus{}, err
	}
	st := SystemStatus{
		Now:    toUTC(s.clock.Now()),
		Timers: []TimerStatus{},
	}
	if s.stats != nil {
		st.Actuator = s.stats.Snapshot()
	}
	if s.scheduler != nil {
		st.Timers = s.scheduler.Statuses()
	}
	return st, nil
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
