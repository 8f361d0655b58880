package service

import (
	"context"
	"errors"
	"time"

	"valve_timer/internal/actuation"
	"valve_timer/internal/clock"
	"valve_timer/internal/logger"
	"valve_timer/internal/models"
	"valve_timer/internal/repository"
)

// Errors shared by the services. Handlers map them to status codes.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrRateLimited  = errors.New("too many manual commands")
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Timers manages stored daily windows and keeps them scheduled.
type Timers interface {
	Create(ctx context.Context, in TimerInput) (TimerView, error)
	Update(ctx context.Context, id string, in TimerInput) (TimerView, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (TimerView, error)
	List(ctx context.Context) ([]TimerView, error)
}

// Outputs issues manual commands to output channels.
type Outputs interface {
	Set(ctx context.Context, channel int, level bool) error
	Pulse(ctx context.Context, channel int, d time.Duration) error
}

// Monitoring exposes read-only runtime state.
type Monitoring interface {
	GetStatus(ctx context.Context) (SystemStatus, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.ActuationEvent, error)
}

// Service aggregates all sub-services.
type Service struct {
	Timers
	Outputs
	Monitoring
	EventLog
	Authorization
}

// Deps carries the runtime pieces the services drive.
type Deps struct {
	Sink      actuation.Sender
	Stats     *actuation.Stats
	Scheduler *Scheduler
	Clock     clock.Clock
	Log       *logger.Logger

	Auth           AuthConfig
	Manual         ManualConfig
	DefaultChannel int
}

// NewService wires the repository layer and the actuation runtime into
// concrete services.
func NewService(repos *repository.Repository, d Deps) *Service {
	if d.Clock == nil {
		d.Clock = clock.NewReal()
	}
	log := logger.OrNop(d.Log)
	return &Service{
		Timers:        NewTimerService(repos.TimerRepo, repos.EventRepo, d.Scheduler, d.Clock, d.DefaultChannel, log.Named("timers")),
		Outputs:       NewOutputService(d.Sink, d.Clock, d.Manual, log.Named("outputs")),
		Monitoring:    NewMonitoringService(d.Stats, d.Scheduler, d.Clock),
		EventLog:      NewEventLogService(repos.EventRepo),
		Authorization: NewAuthService(repos.Auth, d.Auth),
	}
}
