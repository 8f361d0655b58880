package actuation

import "context"

// Sender is the capability handed to every producer of actuation messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Sink is the producer side of the actor's bounded queue. It is safe for
// concurrent use by any number of producers.
type Sink struct {
	msgs  chan<- Message
	done  <-chan struct{}
	stats *Stats
}

// Send enqueues msg, blocking while the queue is full. It fails with
// ErrActorStopped once the actor has exited, or with ctx's error when the
// producer gives up waiting.
func (s *Sink) Send(ctx context.Context, msg Message) error {
	select {
	case <-s.done:
		s.stats.sendFailed()
		return ErrActorStopped
	default:
	}
	select {
	case s.msgs <- msg:
		return nil
	case <-s.done:
		s.stats.sendFailed()
		return ErrActorStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of queued messages.
func (s *Sink) Pending() int { return len(s.msgs) }

var _ Sender = (*Sink)(nil)
