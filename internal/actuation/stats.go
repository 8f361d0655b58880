package actuation

import (
	"sort"
	"sync"
	"time"
)

// ChannelStatus is the last known state of one output channel.
type ChannelStatus struct {
	Channel   int       `json:"channel"`
	Level     bool      `json:"level"`
	Known     bool      `json:"known"` // false until a write succeeded, and after a failed one
	LastWrite time.Time `json:"last_write,omitempty"`
	Writes    uint64    `json:"writes"`
	Faults    uint64    `json:"faults"`
	LastError string    `json:"last_error,omitempty"`
}

// Snapshot is a point-in-time copy of the actor counters.
type Snapshot struct {
	Running        bool            `json:"running"`
	Received       uint64          `json:"received"`
	Written        uint64          `json:"written"`
	Inputs         uint64          `json:"inputs"`
	HardwareFaults uint64          `json:"hardware_faults"`
	SendFailures   uint64          `json:"send_failures"`
	Channels       []ChannelStatus `json:"channels"`
}

// Stats counts dispatch outcomes so operators can detect drift between the
// intended and the actual output state.
type Stats struct {
	mu       sync.Mutex
	snap     Snapshot
	channels map[int]*ChannelStatus
}

func newStats() *Stats {
	return &Stats{channels: make(map[int]*ChannelStatus)}
}

func (s *Stats) channel(ch int) *ChannelStatus {
	st, ok := s.channels[ch]
	if !ok {
		st = &ChannelStatus{Channel: ch}
		s.channels[ch] = st
	}
	return st
}

func (s *Stats) setRunning(v bool) {
	s.mu.Lock()
	s.snap.Running = v
	s.mu.Unlock()
}

func (s *Stats) received(kind Kind) {
	s.mu.Lock()
	s.snap.Received++
	if kind == KindInput {
		s.snap.Inputs++
	}
	s.mu.Unlock()
}

func (s *Stats) written(cmd Command, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Written++
	st := s.channel(cmd.Channel)
	st.Level = cmd.Level
	st.Known = true
	st.LastWrite = at
	st.Writes++
	st.LastError = ""
}

func (s *Stats) fault(ch int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.HardwareFaults++
	st := s.channel(ch)
	// the pin level after a failed write is undefined
	st.Known = false
	st.Faults++
	st.LastError = err.Error()
}

func (s *Stats) sendFailed() {
	s.mu.Lock()
	s.snap.SendFailures++
	s.mu.Unlock()
}

// Snapshot copies the current counters, channels ordered by number.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.snap
	out.Channels = make([]ChannelStatus, 0, len(s.channels))
	for _, st := range s.channels {
		out.Channels = append(out.Channels, *st)
	}
	sort.Slice(out.Channels, func(i, j int) bool {
		return out.Channels[i].Channel < out.Channels[j].Channel
	})
	return out
}
