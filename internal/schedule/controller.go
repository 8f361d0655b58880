package schedule

import (
	"context"
	"sync"
	"time"

	"valve_timer/internal/actuation"
	"valve_timer/internal/clock"
	"valve_timer/internal/logger"
)

// Phase is the state of a Controller.
type Phase string

const (
	PhaseIdle       Phase = "IDLE"
	PhaseWaitingOn  Phase = "WAITING_FOR_ON"
	PhaseWaitingOff Phase = "WAITING_FOR_OFF"
	PhaseStopped    Phase = "STOPPED"
)

// Status is a snapshot of a Controller.
type Status struct {
	Channel      int       `json:"channel"`
	Phase        Phase     `json:"phase"`
	Start        TimeOfDay `json:"start_time"`
	Stop         TimeOfDay `json:"stop_time"`
	DurationOn   string    `json:"duration_on"`
	NextAt       time.Time `json:"next_at,omitempty"`
	Cycles       uint64    `json:"cycles"`
	SendFailures uint64    `json:"send_failures"`
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

func WithClock(c clock.Clock) ControllerOption {
	return func(ctl *Controller) { ctl.clock = c }
}

func WithLogger(l *logger.Logger) ControllerOption {
	return func(ctl *Controller) { ctl.log = logger.OrNop(l) }
}

// Controller drives one channel through a daily window: it waits for the
// start time, sends On, waits for start+DurationOn, sends Off, and repeats
// against the original start time.
type Controller struct {
	channel int
	window  Window
	start   TimeOfDay
	stop    TimeOfDay
	sink    actuation.Sender
	clock   clock.Clock
	log     *logger.Logger

	// fire the first On as soon as the loop starts instead of waiting for
	// start, which has already passed by the time the loop runs
	immediate bool
	done      chan struct{}

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
	status  Status
}

// NewController prepares a controller for channel. The window must come from
// NewWindow or ParseWindow; an unset start time resolves to the current
// time-of-day and the first cycle begins as soon as the controller starts.
// The stop time is start+DurationOn modulo 24h.
func NewController(channel int, w Window, sink actuation.Sender, opts ...ControllerOption) *Controller {
	c := &Controller{
		channel: channel,
		window:  w,
		sink:    sink,
		clock:   clock.NewReal(),
		log:     logger.Nop(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.immediate = w.StartTime == nil
	c.start = w.StartOr(TimeOfDayOf(c.clock.Now()))
	c.stop = c.start.Add(w.DurationOn)
	c.status = Status{
		Channel:    channel,
		Phase:      PhaseIdle,
		Start:      c.start,
		Stop:       c.stop,
		DurationOn: w.DurationOn.String(),
	}
	return c
}

// Start launches the control loop and returns c. The loop runs until ctx is
// cancelled or Stop is called. Calling Start more than once, or after Stop,
// has no effect.
func (c *Controller) Start(ctx context.Context) *Controller {
	c.mu.Lock()
	if c.cancel != nil || c.stopped {
		c.mu.Unlock()
		return c
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	go c.run(ctx)
	return c
}

// Stop cancels the loop, disarms its pending timer and waits for it to exit.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.stopped = true
	cancel := c.cancel
	if cancel == nil {
		c.status.Phase = PhaseStopped
		c.status.NextAt = time.Time{}
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	cancel()
	<-c.done
}

// Done is closed once the loop has exited.
func (c *Controller) Done() <-chan struct{} { return c.done }

// Channel returns the driven output channel.
func (c *Controller) Channel() int { return c.channel }

// Status returns a copy of the current state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) run(ctx context.Context) {
	defer close(c.done)
	defer c.setPhase(PhaseStopped, time.Time{})

	c.log.Infow("window_controller_started",
		"channel", c.channel, "start", c.start, "stop", c.stop, "duration_on", c.window.DurationOn)
	for first := true; ; first = false {
		if first && c.immediate {
			c.setPhase(PhaseWaitingOn, c.clock.Now())
		} else if !c.await(ctx, PhaseWaitingOn, c.start) {
			break
		}
		c.send(ctx, actuation.On(c.channel))

		if !c.await(ctx, PhaseWaitingOff, c.stop) {
			break
		}
		c.send(ctx, actuation.Off(c.channel))

		c.mu.Lock()
		c.status.Cycles++
		c.mu.Unlock()
	}
	c.log.Infow("window_controller_stopped", "channel", c.channel)
}

// await blocks until the next occurrence of target. It reports false when
// ctx was cancelled first.
func (c *Controller) await(ctx context.Context, phase Phase, target TimeOfDay) bool {
	w := WaitUntil(c.clock, target)
	c.setPhase(phase, w.Deadline())
	c.log.Debugw("window_controller_waiting", "channel", c.channel, "phase", phase, "until", target, "at", w.Deadline())

	select {
	case <-w.Done():
		return true
	case <-ctx.Done():
		w.Stop()
		return false
	}
}

// send delivers msg. Failures are logged and counted; the loop carries on.
func (c *Controller) send(ctx context.Context, msg actuation.Message) {
	err := c.sink.Send(ctx, msg)
	if err == nil {
		c.log.Infow("window_controller_sent", "channel", c.channel, "level", actuation.LevelString(msg.Command.Level))
		return
	}
	if ctx.Err() != nil {
		return
	}
	c.mu.Lock()
	c.status.SendFailures++
	c.mu.Unlock()
	c.log.Errorw("window_controller_send_failed",
		"channel", c.channel, "level", actuation.LevelString(msg.Command.Level), "err", err)
}

func (c *Controller) setPhase(p Phase, next time.Time) {
	c.mu.Lock()
	c.status.Phase = p
	c.status.NextAt = next
	c.mu.Unlock()
}
