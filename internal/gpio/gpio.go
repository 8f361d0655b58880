// Package gpio abstracts the physical pins driven by the actuation actor.
//
// PeriphDriver talks to real hardware through periph.io; SimDriver keeps pin
// levels in memory so the service can run, and be tested, without a board.
package gpio

import "errors"

// Driver names accepted in configuration.
const (
	DriverPeriph = "periph"
	DriverSim    = "sim"
)

var (
	ErrUnknownPin    = errors.New("unknown gpio pin")
	ErrUnknownDriver = errors.New("unknown gpio driver")
)

// Output is an opened pin that can be driven high or low.
type Output interface {
	Set(level bool) error
}

// Input is an opened pin that can be sampled.
type Input interface {
	Read() (bool, error)
}

// Driver opens pins by channel number.
type Driver interface {
	OpenOutput(channel int) (Output, error)
	OpenInput(channel int) (Input, error)
}

// New returns the driver registered under name.
func New(name string) (Driver, error) {
	switch name {
	case DriverPeriph:
		return NewPeriphDriver()
	case DriverSim, "":
		return NewSimDriver(), nil
	default:
		return nil, ErrUnknownDriver
	}
}
