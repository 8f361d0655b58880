package service

import (
	"context"
	"fmt"
	"time"

	"valve_timer/internal/actuation"
	"valve_timer/internal/clock"
	"valve_timer/internal/logger"
	"valve_timer/internal/schedule"

	"golang.org/x/time/rate"
)

const pulseOffTimeout = 5 * time.Second

// ManualConfig bounds how often manual commands may be issued.
// RatePerSec <= 0 disables the limit.
type ManualConfig struct {
	RatePerSec float64
	Burst      int
}

// OutputService sends operator commands through the same actor queue the
// timers use, so manual and scheduled writes never race on a pin.
type OutputService struct {
	sink    actuation.Sender
	clock   clock.Clock
	limiter *rate.Limiter
	log     *logger.Logger
}

func NewOutputService(sink actuation.Sender, c clock.Clock, cfg ManualConfig, log *logger.Logger) *OutputService {
	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
		if burst <= 0 {
			burst = int(cfg.RatePerSec) + 1
		}
	}
	return &OutputService{
		sink:    sink,
		clock:   c,
		limiter: rate.NewLimiter(limit, burst),
		log:     logger.OrNop(log),
	}
}

// Set drives channel to level.
func (s *OutputService) Set(ctx context.Context, channel int, level bool) error {
	if err := s.admit(channel); err != nil {
		return err
	}
	cmd := actuation.Command{Channel: channel, Level: level}
	if err := s.sink.Send(ctx, actuation.Output(cmd)); err != nil {
		s.log.Errorw("manual_output_send_failed", "channel", channel, "level", actuation.LevelString(level), "err", err)
		return err
	}
	s.log.Infow("manual_output_sent", "channel", channel, "level", actuation.LevelString(level))
	return nil
}

// Pulse turns channel on now and off again after d. The off command is sent
// from a timer and does not depend on ctx.
func (s *OutputService) Pulse(ctx context.Context, channel int, d time.Duration) error {
	if d <= 0 || d >= schedule.Day {
		return fmt.Errorf("%w: got %s", schedule.ErrInvalidDuration, d)
	}
	if err := s.admit(channel); err != nil {
		return err
	}
	if err := s.sink.Send(ctx, actuation.On(channel)); err != nil {
		s.log.Errorw("manual_pulse_send_failed", "channel", channel, "err", err)
		return err
	}
	s.clock.AfterFunc(d, func() {
		offCtx, cancel := context.WithTimeout(context.Background(), pulseOffTimeout)
		defer cancel()
		if err := s.sink.Send(offCtx, actuation.Off(channel)); err != nil {
			s.log.Errorw("manual_pulse_off_failed", "channel", channel, "err", err)
		}
	})
	s.log.Infow("manual_pulse_started", "channel", channel, "duration", d)
	return nil
}

func (s *OutputService) admit(channel int) error {
	if channel < 0 {
		return fmt.Errorf("%w: channel must not be negative", ErrInvalidInput)
	}
	if !s.limiter.Allow() {
		s.log.Warnw("manual_output_rate_limited", "channel", channel)
		return ErrRateLimited
	}
	return nil
}
