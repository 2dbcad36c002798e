// Package gpio provides raw button pin reading with hardware abstraction.
// The real implementations use the Linux GPIO character device or periph.io.
// The fake implementation allows testing without hardware.
package gpio

import "fmt"

// Reader reads the raw level of a single button pin.
type Reader interface {
	// Read returns the electrical level of the pin: true = HIGH, false = LOW.
	// Buttons are wired to ground with a pull-up, so LOW means pressed.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Defaults (BCM numbering)
const (
	DefaultChip = "gpiochip0"
	DefaultPin  = 17
)

// PinName returns the periph.io name of a BCM pin number, e.g. "GPIO17".
func PinName(bcm int) string {
	return fmt.Sprintf("GPIO%d", bcm)
}
