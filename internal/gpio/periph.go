package gpio

import (
	"fmt"
	"strconv"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphDriver resolves channels through the periph.io pin registry, which
// on Linux is backed by the sysfs and character-device GPIO drivers.
type PeriphDriver struct {
	byName func(string) pgpio.PinIO
}

// NewPeriphDriver initializes the host drivers once.
func NewPeriphDriver() (*PeriphDriver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	return &PeriphDriver{byName: gpioreg.ByName}, nil
}

func (d *PeriphDriver) lookup(channel int) (pgpio.PinIO, error) {
	p := d.byName(strconv.Itoa(channel))
	if p == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPin, channel)
	}
	return p, nil
}

// OpenOutput resolves the pin; it is configured as an output on first Set.
func (d *PeriphDriver) OpenOutput(channel int) (Output, error) {
	p, err := d.lookup(channel)
	if err != nil {
		return nil, err
	}
	return &periphOutput{pin: p}, nil
}

// OpenInput resolves the pin and configures it as a floating input.
func (d *PeriphDriver) OpenInput(channel int) (Input, error) {
	p, err := d.lookup(channel)
	if err != nil {
		return nil, err
	}
	if err := p.In(pgpio.Float, pgpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure pin %s as input: %w", p.Name(), err)
	}
	return &periphInput{pin: p}, nil
}

type periphOutput struct {
	pin pgpio.PinIO
}

func (o *periphOutput) Set(level bool) error {
	if err := o.pin.Out(pgpio.Level(level)); err != nil {
		return fmt.Errorf("write pin %s: %w", o.pin.Name(), err)
	}
	return nil
}

type periphInput struct {
	pin pgpio.PinIO
}

func (i *periphInput) Read() (bool, error) {
	return bool(i.pin.Read()), nil
}
