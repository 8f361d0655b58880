package gpio

import (
	"sync"
	"time"
)

// Write is one level change recorded by SimDriver.
type Write struct {
	Channel int       `json:"channel"`
	Level   bool      `json:"level"`
	At      time.Time `json:"at"`
}

// SimDriver is an in-memory pin bank. Faults can be injected per channel.
type SimDriver struct {
	mu        sync.Mutex
	levels    map[int]bool
	opens     map[int]int
	writes    []Write
	failOpen  map[int]error
	failWrite map[int]error
	now       func() time.Time
}

// NewSimDriver returns an empty simulated pin bank.
func NewSimDriver() *SimDriver {
	return &SimDriver{
		levels:    make(map[int]bool),
		opens:     make(map[int]int),
		failOpen:  make(map[int]error),
		failWrite: make(map[int]error),
		now:       time.Now,
	}
}

// FailOpen makes opening channel return err; nil clears the fault.
func (d *SimDriver) FailOpen(channel int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.failOpen, channel)
		return
	}
	d.failOpen[channel] = err
}

// FailWrite makes every write to channel return err; nil clears the fault.
func (d *SimDriver) FailWrite(channel int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.failWrite, channel)
		return
	}
	d.failWrite[channel] = err
}

// Level returns the last level written to channel and whether it was ever written.
func (d *SimDriver) Level(channel int) (bool, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.levels[channel]
	return v, ok
}

// Writes returns a copy of all successful writes in order.
func (d *SimDriver) Writes() []Write {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Write, len(d.writes))
	copy(out, d.writes)
	return out
}

// Opens returns how many times channel was opened for output.
func (d *SimDriver) Opens(channel int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens[channel]
}

func (d *SimDriver) OpenOutput(channel int) (Output, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.failOpen[channel]; err != nil {
		return nil, err
	}
	d.opens[channel]++
	return &simPin{d: d, channel: channel}, nil
}

func (d *SimDriver) OpenInput(channel int) (Input, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.failOpen[channel]; err != nil {
		return nil, err
	}
	return &simPin{d: d, channel: channel}, nil
}

type simPin struct {
	d       *SimDriver
	channel int
}

func (p *simPin) Set(level bool) error {
	d := p.d
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.failWrite[p.channel]; err != nil {
		return err
	}
	d.levels[p.channel] = level
	d.writes = append(d.writes, Write{Channel: p.channel, Level: level, At: d.now().UTC()})
	return nil
}

func (p *simPin) Read() (bool, error) {
	d := p.d
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.levels[p.channel], nil
}

var (
	_ Driver = (*SimDriver)(nil)
	_ Driver = (*PeriphDriver)(nil)
)
