package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"valve_timer/internal/models"

	"github.com/google/uuid"
)

const (
	upsertTimerSQL = `
		INSERT INTO timers (id, name, description, channel, duration_on_s, duration_off_s, start_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			description=excluded.description,
			channel=excluded.channel,
			duration_on_s=excluded.duration_on_s,
			duration_off_s=excluded.duration_off_s,
			start_time=excluded.start_time,
			updated_at=excluded.updated_at
	`
	selectTimerColumns = `SELECT id, name, description, channel, duration_on_s, duration_off_s, start_time, created_at, updated_at FROM timers`
	selectTimerByIDSQL = selectTimerColumns + ` WHERE id = ?`
	selectTimersSQL    = selectTimerColumns + ` ORDER BY created_at ASC`
	deleteTimerSQL     = `DELETE FROM timers WHERE id = ?`
)

type TimerSQLite struct {
	db *sql.DB
}

func NewTimerSQLite(db *sql.DB) *TimerSQLite {
	return &TimerSQLite{db: db}
}

// Save inserts or replaces the timer row and returns the previous version,
// or nil when the timer is new. A missing ID is generated.
func (r *TimerSQLite) Save(ctx context.Context, t models.Timer) (*models.Timer, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin save timer %s: %w", t.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	prev, err := scanTimer(tx.QueryRowContext(ctx, selectTimerByIDSQL, t.ID))
	switch {
	case errors.Is(err, ErrNotFound):
		prev = nil
	case err != nil:
		return nil, fmt.Errorf("load timer %s: %w", t.ID, err)
	default:
		// keep the original creation time on update
		t.CreatedAt = prev.CreatedAt
	}

	if _, err := tx.ExecContext(ctx, upsertTimerSQL,
		t.ID,
		t.Name,
		t.Description,
		t.Channel,
		t.DurationOnSec,
		t.DurationOffSec,
		t.StartTime,
		t.CreatedAt.UTC(),
		t.UpdatedAt.UTC(),
	); err != nil {
		return nil, fmt.Errorf("save timer %s: %w", t.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit timer %s: %w", t.ID, err)
	}
	return prev, nil
}

// Get returns ErrNotFound when id does not exist.
func (r *TimerSQLite) Get(ctx context.Context, id string) (models.Timer, error) {
	t, err := scanTimer(r.db.QueryRowContext(ctx, selectTimerByIDSQL, id))
	if err != nil {
		return models.Timer{}, err
	}
	return *t, nil
}

func (r *TimerSQLite) List(ctx context.Context) ([]models.Timer, error) {
	rows, err := r.db.QueryContext(ctx, selectTimersSQL)
	if err != nil {
		return nil, fmt.Errorf("list timers: %w", err)
	}
	defer rows.Close()

	var out []models.Timer
	for rows.Next() {
		t, err := scanTimer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete returns ErrNotFound when nothing was removed.
func (r *TimerSQLite) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteTimerSQL, id)
	if err != nil {
		return fmt.Errorf("delete timer %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete timer %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTimer(row rowScanner) (*models.Timer, error) {
	var t models.Timer
	var desc, start sql.NullString
	if err := row.Scan(
		&t.ID,
		&t.Name,
		&desc,
		&t.Channel,
		&t.DurationOnSec,
		&t.DurationOffSec,
		&start,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.Description = desc.String
	t.StartTime = start.String
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}
