//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads a button pin using the Linux GPIO character device.
type RealReader struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealReader requests the given line offset on chip as an input with the
// internal pull-up enabled, so an open button reads HIGH.
func NewRealReader(chipName string, pin int) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("button-sensor"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request pin %d: %w", pin, err)
	}

	return &RealReader{
		chip: chip,
		line: line,
	}, nil
}

// Read returns the raw level of the pin.
func (r *RealReader) Read() (bool, error) {
	v, err := r.line.Value()
	if err != nil {
		return false, fmt.Errorf("read pin: %w", err)
	}
	return v != 0, nil
}

// Close releases GPIO resources.
// The line is returned to input with pull-down (the Pi boot default) before
// closing so the pin does not float once the daemon exits.
func (r *RealReader) Close() error {
	var errs []error

	if r.line != nil {
		if err := r.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin: %w", err))
		}
		if err := r.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
