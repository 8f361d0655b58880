package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"valve_timer/internal/actuation"
	"valve_timer/internal/models"
	"valve_timer/internal/repository"
)

// memTimerRepo is an in-memory repository.TimerRepo.
type memTimerRepo struct {
	mu      sync.Mutex
	timers  map[string]models.Timer
	saveErr error
	listErr error
}

func newMemTimerRepo(seed ...models.Timer) *memTimerRepo {
	r := &memTimerRepo{timers: map[string]models.Timer{}}
	for _, t := range seed {
		r.timers[t.ID] = t
	}
	return r
}

func (r *memTimerRepo) Save(ctx context.Context, t models.Timer) (*models.Timer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	now := time.Now().UTC()
	prev, ok := r.timers[t.ID]
	if ok {
		t.CreatedAt = prev.CreatedAt
	} else {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	r.timers[t.ID] = t
	if !ok {
		return nil, nil
	}
	return &prev, nil
}

func (r *memTimerRepo) Get(ctx context.Context, id string) (models.Timer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.timers[id]
	if !ok {
		return models.Timer{}, repository.ErrNotFound
	}
	return t, nil
}

func (r *memTimerRepo) List(ctx context.Context) ([]models.Timer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]models.Timer, 0, len(r.timers))
	for _, t := range r.timers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memTimerRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.timers[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.timers, id)
	return nil
}

// fakeEventRepo captures Append calls and the last List filter.
type fakeEventRepo struct {
	mu        sync.Mutex
	appended  []models.ActuationEvent
	appendErr error

	gotFilter repository.EventFilter
	events    []models.ActuationEvent
	err       error
	calls     int
}

func (f *fakeEventRepo) Append(ctx context.Context, e models.ActuationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, e)
	return f.appendErr
}

func (f *fakeEventRepo) List(ctx context.Context, filter repository.EventFilter) ([]models.ActuationEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotFilter = filter
	return f.events, f.err
}

func (f *fakeEventRepo) appendedEvents() []models.ActuationEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ActuationEvent(nil), f.appended...)
}

// captureSink records every message it is asked to send.
type captureSink struct {
	mu   sync.Mutex
	msgs []actuation.Message
	err  error
}

func (s *captureSink) Send(ctx context.Context, msg actuation.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.msgs = append(s.msgs, msg)
	return nil
}

func (s *captureSink) sent() []actuation.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]actuation.Message(nil), s.msgs...)
}
