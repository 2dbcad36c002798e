// Package debounce turns raw, noisy pin reads into a clean level with edge
// detection and state duration tracking.
//
// A new level is adopted only after the raw reading has held it for the
// configured interval. The package has no hardware dependencies; pins and
// time are injected.
package debounce

import (
	"time"

	"github.com/sweeney/button-sensor/internal/clock"
)

// DefaultInterval is the settle time used until SetInterval is called.
const DefaultInterval = 10 * time.Millisecond

// Pin is the raw input being debounced. gpio.Reader satisfies it.
type Pin interface {
	Read() (bool, error)
}

// Debouncer tracks the stable level of one pin.
type Debouncer struct {
	clock    clock.Clock
	pin      Pin
	interval time.Duration

	// Current stable (debounced) level, true = HIGH
	stable bool
	// Last raw level seen and when it first appeared
	pending      bool
	pendingSince time.Time
	// When stable last changed, and how long the state before it lasted
	stableSince      time.Time
	previousDuration time.Duration

	changed bool
	err     error
}

// New creates a Debouncer with DefaultInterval. Attach must be called before
// Update.
func New(clk clock.Clock) *Debouncer {
	return &Debouncer{
		clock:    clk,
		interval: DefaultInterval,
		stable:   true,
		pending:  true,
	}
}

// Attach binds the debouncer to pin and takes its current level as the
// initial stable state without reporting an edge.
func (d *Debouncer) Attach(pin Pin) {
	now := d.clock.Now()
	d.pin = pin
	level, err := pin.Read()
	d.err = err
	if err != nil {
		level = true
	}
	d.stable = level
	d.pending = level
	d.pendingSince = now
	d.stableSince = now
	d.previousDuration = 0
	d.changed = false
}

// SetInterval sets how long a new raw level must persist before it is
// reported. Zero reports every change on the poll it is seen.
func (d *Debouncer) SetInterval(interval time.Duration) {
	d.interval = interval
}

// Interval returns the current settle time.
func (d *Debouncer) Interval() time.Duration {
	return d.interval
}

// Update samples the pin and reports whether the stable level changed on
// this poll. A read error leaves all state untouched and is kept in Err.
func (d *Debouncer) Update() bool {
	d.changed = false
	if d.pin == nil {
		return false
	}

	level, err := d.pin.Read()
	d.err = err
	if err != nil {
		return false
	}

	now := d.clock.Now()
	if level != d.pending {
		// New raw level, restart the settle timer
		d.pending = level
		d.pendingSince = now
	}

	if level == d.stable {
		return false
	}

	if now.Sub(d.pendingSince) >= d.interval {
		d.previousDuration = now.Sub(d.stableSince)
		d.stableSince = now
		d.stable = level
		d.changed = true
	}
	return d.changed
}

// Read returns the stable level, true = HIGH.
func (d *Debouncer) Read() bool {
	return d.stable
}

// Rose reports whether the last Update adopted a HIGH level.
func (d *Debouncer) Rose() bool {
	return d.changed && d.stable
}

// Fell reports whether the last Update adopted a LOW level.
func (d *Debouncer) Fell() bool {
	return d.changed && !d.stable
}

// CurrentDuration returns how long the current stable level has lasted.
func (d *Debouncer) CurrentDuration() time.Duration {
	return d.clock.Now().Sub(d.stableSince)
}

// PreviousDuration returns how long the stable level before the current one
// lasted.
func (d *Debouncer) PreviousDuration() time.Duration {
	return d.previousDuration
}

// Err returns the error from the most recent pin read, if any.
func (d *Debouncer) Err() error {
	return d.err
}
