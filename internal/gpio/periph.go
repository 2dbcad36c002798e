package gpio

import (
	"fmt"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphReader reads a button pin through periph.io. It works on any host
// periph supports, including boards without a GPIO character device.
type PeriphReader struct {
	pin pgpio.PinIO
}

// NewPeriphReader initializes the periph host drivers and opens the named
// pin (e.g. "GPIO17") as an input with pull-up.
func NewPeriphReader(name string) (*PeriphReader, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("gpio pin %q not found", name)
	}
	return newPeriphReader(p)
}

func newPeriphReader(p pgpio.PinIO) (*PeriphReader, error) {
	if err := p.In(pgpio.PullUp, pgpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure pin %s: %w", p, err)
	}
	return &PeriphReader{pin: p}, nil
}

// Read returns the raw level of the pin.
func (r *PeriphReader) Read() (bool, error) {
	return r.pin.Read() == pgpio.High, nil
}

// Close halts the pin.
func (r *PeriphReader) Close() error {
	if err := r.pin.Halt(); err != nil {
		return fmt.Errorf("halt pin %s: %w", r.pin, err)
	}
	return nil
}
