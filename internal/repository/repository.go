package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"valve_timer/internal/models"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// TimerRepo stores timer definitions.
type TimerRepo interface {
	Save(ctx context.Context, t models.Timer) (*models.Timer, error)
	Get(ctx context.Context, id string) (models.Timer, error)
	List(ctx context.Context) ([]models.Timer, error)
	Delete(ctx context.Context, id string) error
}

// EventFilter narrows EventRepo.List. Zero values mean "no bound".
type EventFilter struct {
	From    time.Time
	To      time.Time
	Type    string
	Channel *int
	Limit   int
}

// EventRepo is the append-only actuation log.
type EventRepo interface {
	Append(ctx context.Context, e models.ActuationEvent) error
	List(ctx context.Context, f EventFilter) ([]models.ActuationEvent, error)
}

type Repository struct {
	TimerRepo TimerRepo
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		TimerRepo: NewTimerSQLite(db),
		EventRepo: NewEventSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
