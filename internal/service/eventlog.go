package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"valve_timer/internal/models"
	"valve_timer/internal/repository"
)

const (
	defaultLogLimit = 500
	maxLogLimit     = 5000
)

// LogFilter supports history filtering by time range, type and channel.
type LogFilter struct {
	From    time.Time // inclusive; zero means no lower bound
	To      time.Time // inclusive; zero means no upper bound
	Type    string    // "", "OUTPUT", "INPUT", "FAULT", "TIMER_CREATED", ...
	Channel *int
	Limit   int // 0 means the default page size
}

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
)

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (repository.EventFilter, error) {
	from := toUTC(f.From)
	to := toUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return repository.EventFilter{}, errInvalidTimeRange
	}

	limit := f.Limit
	switch {
	case limit <= 0:
		limit = defaultLogLimit
	case limit > maxLogLimit:
		limit = maxLogLimit
	}

	return repository.EventFilter{
		From:    from,
		To:      to,
		Type:    normalizeEventType(f.Type),
		Channel: f.Channel,
		Limit:   limit,
	}, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.ActuationEvent, error) {
	rf, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, rf)
}
