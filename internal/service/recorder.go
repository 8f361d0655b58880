package service

import (
	"context"
	"sync/atomic"
	"time"

	"valve_timer/internal/actuation"
	"valve_timer/internal/logger"
	"valve_timer/internal/models"
	"valve_timer/internal/repository"
)

const defaultRecorderBuffer = 256

// EventRecorder persists actor dispatches to the event log. Observe never
// blocks the actor: when the buffer is full the dispatch is dropped and
// counted.
type EventRecorder struct {
	eventRepo repository.EventRepo
	queue     chan actuation.Dispatch
	dropped   atomic.Uint64
	log       *logger.Logger
}

func NewEventRecorder(eventRepo repository.EventRepo, buffer int, log *logger.Logger) *EventRecorder {
	if buffer <= 0 {
		buffer = defaultRecorderBuffer
	}
	return &EventRecorder{
		eventRepo: eventRepo,
		queue:     make(chan actuation.Dispatch, buffer),
		log:       logger.OrNop(log),
	}
}

func (r *EventRecorder) Observe(d actuation.Dispatch) {
	select {
	case r.queue <- d:
	default:
		r.dropped.Add(1)
		r.log.Warnw("event_record_dropped", "channel", d.Channel, "kind", d.Kind)
	}
}

// Dropped returns how many dispatches were not recorded.
func (r *EventRecorder) Dropped() uint64 { return r.dropped.Load() }

// Run writes queued dispatches until ctx is cancelled, then drains what is
// already buffered.
func (r *EventRecorder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return
		case d := <-r.queue:
			r.write(ctx, d)
		}
	}
}

func (r *EventRecorder) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		select {
		case d := <-r.queue:
			r.write(ctx, d)
		default:
			return
		}
	}
}

func (r *EventRecorder) write(ctx context.Context, d actuation.Dispatch) {
	if err := r.eventRepo.Append(ctx, eventFromDispatch(d)); err != nil {
		r.log.Errorw("event_record_failed", "channel", d.Channel, "err", err)
	}
}

func eventFromDispatch(d actuation.Dispatch) models.ActuationEvent {
	e := models.ActuationEvent{
		OccurredAt: toUTC(d.At),
		Channel:    d.Channel,
		Level:      d.Level,
	}
	switch {
	case d.Err != nil:
		e.Type = models.EventFault
		e.Description = d.Err.Error()
		e.Metadata = map[string]any{"kind": d.Kind.String(), "level": actuation.LevelString(d.Level)}
	case d.Kind == actuation.KindInput:
		e.Type = models.EventInput
		e.Description = "Input requested"
	default:
		e.Type = models.EventOutput
		e.Description = "Output set " + actuation.LevelString(d.Level)
	}
	return e
}

var _ actuation.Observer = (*EventRecorder)(nil)
