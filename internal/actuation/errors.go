package actuation

import (
	"errors"
	"fmt"
)

var (
	// ErrActorStopped is returned by Sink.Send once the actor has exited.
	ErrActorStopped = errors.New("hardware actor is not running")
	// ErrActorRunning is returned when Run is called twice.
	ErrActorRunning = errors.New("hardware actor already running")
)

// Hardware operations reported in a HardwareFault.
const (
	OpOpen  = "open"
	OpWrite = "write"
)

// HardwareFault describes a failed open or write on one channel.
type HardwareFault struct {
	Channel int
	Op      string
	Err     error
}

func (e *HardwareFault) Error() string {
	return fmt.Sprintf("gpio %s on channel %d: %v", e.Op, e.Channel, e.Err)
}

func (e *HardwareFault) Unwrap() error { return e.Err }
