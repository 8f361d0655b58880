package actuation

import (
	"context"
	"sync/atomic"
	"time"

	"valve_timer/internal/clock"
	"valve_timer/internal/gpio"
	"valve_timer/internal/logger"
)

// DefaultQueueSize bounds the number of pending messages.
const DefaultQueueSize = 32

// Dispatch records the outcome of one message handled by the actor.
type Dispatch struct {
	Kind    Kind
	Channel int
	Level   bool
	At      time.Time
	Err     error
}

// Observer is notified, on the actor goroutine, after every dispatch.
// Implementations must return quickly.
type Observer interface {
	Observe(d Dispatch)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(d Dispatch)

func (f ObserverFunc) Observe(d Dispatch) { f(d) }

// Option configures an Actor.
type Option func(*Actor)

func WithLogger(l *logger.Logger) Option {
	return func(a *Actor) { a.log = logger.OrNop(l) }
}

func WithQueueSize(n int) Option {
	return func(a *Actor) {
		if n > 0 {
			a.queueSize = n
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(a *Actor) { a.clock = c }
}

func WithObserver(o Observer) Option {
	return func(a *Actor) { a.observers = append(a.observers, o) }
}

// Actor is the single consumer of actuation messages. It alone owns the
// opened pin handles, so every write to the hardware is serialized in
// channel arrival order.
type Actor struct {
	driver    gpio.Driver
	msgs      chan Message
	done      chan struct{}
	queueSize int
	started   atomic.Bool

	// confined to the Run goroutine
	outputs map[int]gpio.Output
	inputs  map[int]gpio.Input

	observers []Observer
	stats     *Stats
	clock     clock.Clock
	log       *logger.Logger
}

// NewActor builds an actor and the sink producers use to reach it. The actor
// consumes nothing until Run is called.
func NewActor(driver gpio.Driver, opts ...Option) (*Actor, *Sink) {
	a := &Actor{
		driver:    driver,
		done:      make(chan struct{}),
		queueSize: DefaultQueueSize,
		outputs:   make(map[int]gpio.Output),
		inputs:    make(map[int]gpio.Input),
		stats:     newStats(),
		clock:     clock.NewReal(),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.msgs = make(chan Message, a.queueSize)
	return a, &Sink{msgs: a.msgs, done: a.done, stats: a.stats}
}

// Stats exposes the dispatch counters.
func (a *Actor) Stats() *Stats { return a.stats }

// Done is closed when Run returns.
func (a *Actor) Done() <-chan struct{} { return a.done }

// Run consumes messages until ctx is cancelled. Hardware faults are logged
// and counted; they never stop the loop.
func (a *Actor) Run(ctx context.Context) error {
	if !a.started.CompareAndSwap(false, true) {
		return ErrActorRunning
	}
	defer close(a.done)
	a.stats.setRunning(true)
	defer a.stats.setRunning(false)

	a.log.Debugw("actuation_actor_started", "queue_size", a.queueSize)
	for {
		select {
		case <-ctx.Done():
			a.log.Infow("actuation_actor_stopped", "reason", ctx.Err())
			return nil
		case msg, ok := <-a.msgs:
			if !ok {
				a.log.Infow("actuation_actor_stopped", "reason", "channel closed")
				return nil
			}
			a.dispatch(msg)
		}
	}
}

func (a *Actor) dispatch(msg Message) {
	a.stats.received(msg.Kind)
	a.log.Debugw("actuation_message_received", "kind", msg.Kind, "channel", msg.Channel)

	switch msg.Kind {
	case KindInput:
		a.handleInput(msg.Channel)
	case KindOutput:
		a.handleOutput(msg.Command)
	default:
		a.log.Warnw("actuation_message_unknown", "kind", msg.Kind, "channel", msg.Channel)
	}
}

func (a *Actor) handleInput(ch int) {
	d := Dispatch{Kind: KindInput, Channel: ch, At: a.clock.Now()}
	if _, ok := a.inputs[ch]; !ok {
		in, err := a.driver.OpenInput(ch)
		if err != nil {
			d.Err = &HardwareFault{Channel: ch, Op: OpOpen, Err: err}
			a.stats.fault(ch, d.Err)
			a.log.Errorw("actuation_input_open_failed", "channel", ch, "err", err)
			a.notify(d)
			return
		}
		a.inputs[ch] = in
		a.log.Infow("actuation_input_opened", "channel", ch)
	}
	a.log.Warnw("actuation_input_not_implemented", "channel", ch)
	a.notify(d)
}

func (a *Actor) handleOutput(cmd Command) {
	d := Dispatch{Kind: KindOutput, Channel: cmd.Channel, Level: cmd.Level, At: a.clock.Now()}
	if err := a.write(cmd); err != nil {
		d.Err = err
		a.stats.fault(cmd.Channel, err)
		a.log.Errorw("actuation_write_failed", "channel", cmd.Channel, "level", LevelString(cmd.Level), "err", err)
	} else {
		a.stats.written(cmd, d.At)
		a.log.Infow("actuation_write_ok", "channel", cmd.Channel, "level", LevelString(cmd.Level))
	}
	a.notify(d)
}

// write looks up or lazily opens the output handle and sets its level.
// No retry is attempted.
func (a *Actor) write(cmd Command) error {
	out, ok := a.outputs[cmd.Channel]
	if !ok {
		var err error
		out, err = a.driver.OpenOutput(cmd.Channel)
		if err != nil {
			return &HardwareFault{Channel: cmd.Channel, Op: OpOpen, Err: err}
		}
		a.outputs[cmd.Channel] = out
		a.log.Infow("actuation_output_opened", "channel", cmd.Channel)
	}
	if err := out.Set(cmd.Level); err != nil {
		return &HardwareFault{Channel: cmd.Channel, Op: OpWrite, Err: err}
	}
	return nil
}

func (a *Actor) notify(d Dispatch) {
	for _, o := range a.observers {
		o.Observe(d)
	}
}
