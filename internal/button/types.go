// Package button classifies a debounced button signal into interaction
// events: press, release, single/double/triple/N-click, long click,
// repeating long press and idle timeout.
//
// The package is pure logic. It never blocks, logs or allocates during
// Update; the signal source and the clock are injected.
package button

import "time"

// Level is a debounced pin level. Buttons are wired with a pull-up, so Low
// is pressed.
type Level bool

const (
	High Level = true
	Low  Level = false
)

func (l Level) String() string {
	if l == High {
		return "HIGH"
	}
	return "LOW"
}

// Signal is the debounced input a Button classifies. debounce.Debouncer
// satisfies it.
type Signal interface {
	// Update samples the input and reports whether the level changed.
	Update() bool
	// Read returns the current level, true = HIGH.
	Read() bool
	Rose() bool
	Fell() bool
	CurrentDuration() time.Duration
	PreviousDuration() time.Duration
	SetInterval(d time.Duration)
}

// Event identifies one of the callback slots.
type Event uint8

const (
	Changed Event = iota
	Pressed
	Released
	Click
	DoubleClick
	TripleClick
	LongClick
	LongPress
	Idle

	numEvents
)

var eventNames = [numEvents]string{
	Changed:     "CHANGED",
	Pressed:     "PRESSED",
	Released:    "RELEASED",
	Click:       "CLICK",
	DoubleClick: "DOUBLE_CLICK",
	TripleClick: "TRIPLE_CLICK",
	LongClick:   "LONG_CLICK",
	LongPress:   "LONG_PRESS",
	Idle:        "IDLE",
}

func (e Event) String() string {
	if e < numEvents {
		return eventNames[e]
	}
	return "UNKNOWN"
}

// Events returns every event in callback priority order.
func Events() []Event {
	evs := make([]Event, numEvents)
	for i := range evs {
		evs[i] = Event(i)
	}
	return evs
}

// ParseEvent returns the Event with the given name.
func ParseEvent(name string) (Event, bool) {
	for i, n := range eventNames {
		if n == name {
			return Event(i), true
		}
	}
	return 0, false
}

// Handler is called synchronously from Update with the button that fired.
// A shared handler can tell buttons apart by UserID or UserState.
type Handler func(b *Button)

// Config holds the timing parameters of a Button.
type Config struct {
	// Gap after a release within which another press extends the burst
	MultiClickInterval time.Duration
	// Hold time separating a click from a long click, and the long press
	// repeat period
	LongClickDuration time.Duration
	// Silence after which the idle handler fires
	IdleTimeout time.Duration
	// Fire the long press handler every LongClickDuration instead of once
	RepeatLongPress bool
}

// DefaultConfig returns the standard timings: 250ms multi-click window,
// 750ms long click, 10s idle timeout, no long press repeat.
func DefaultConfig() Config {
	return Config{
		MultiClickInterval: 250 * time.Millisecond,
		LongClickDuration:  750 * time.Millisecond,
		IdleTimeout:        10 * time.Second,
	}
}

// Record is a value snapshot of a button at the moment an event fired.
type Record struct {
	Timestamp      time.Time
	Event          Event
	UserID         uint
	UserState      uint
	Pressed        bool
	ClickCount     int
	LongPressCount int
	// Duration of the current level for press/hold events, of the previous
	// level for release and click events
	Duration time.Duration
}
