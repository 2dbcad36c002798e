package button

import (
	"time"

	"github.com/sweeney/button-sensor/internal/clock"
	"github.com/sweeney/button-sensor/internal/debounce"
)

// Button classifies the events of one physical button. It is driven by
// calling Update from a polling loop and is not safe for concurrent use:
// setters and accessors must be called from the same loop.
type Button struct {
	signal    Signal
	hasSignal bool
	clock     clock.Clock
	ext       Extension

	enabled    bool
	disabledAt time.Time
	// Time spent disabled during the current and previous signal levels.
	// Subtracted from the signal durations so a pause never produces
	// catch-up events.
	frozen     time.Duration
	frozenPrev time.Duration

	state Level
	// Set HIGH on every press and LOW after every release. A release only
	// counts as a click when the press before it was observed.
	previousState  Level
	clickCounter   int
	prevClickCount int
	clickFired     bool
	longPressArmed bool
	longPressIndex int
	idleFlagged    bool
	lastEvent      time.Time

	userID    uint
	userState uint

	cfg      Config
	handlers [numEvents]Handler
}

// New creates a Button classifying sig.
func New(sig Signal, clk clock.Clock, cfg Config) *Button {
	b := newButton(clk, cfg)
	b.signal = sig
	b.hasSignal = sig != nil
	return b
}

// NewOnPin debounces pin with a fresh debounce.Debouncer and classifies it.
func NewOnPin(pin debounce.Pin, clk clock.Clock, cfg Config) (*Button, *debounce.Debouncer) {
	d := debounce.New(clk)
	d.Attach(pin)
	return New(d, clk, cfg), d
}

// NewDetached creates a Button with no signal source. Update performs no
// classification; only the extension hook and the idle timeout run.
func NewDetached(clk clock.Clock, cfg Config) *Button {
	return newButton(clk, cfg)
}

func newButton(clk clock.Clock, cfg Config) *Button {
	return &Button{
		clock:          clk,
		ext:            NopExtension{},
		enabled:        true,
		state:          High,
		previousState:  Low,
		clickFired:     true,
		longPressArmed: true,
		lastEvent:      clk.Now(),
		cfg:            cfg,
	}
}

// Update reads the signal and fires any handlers due. Handlers run in a
// fixed order: changed, pressed or released, long press, click family,
// idle.
func (b *Button) Update() {
	if !b.enabled {
		return
	}
	now := b.clock.Now()

	if b.hasSignal && b.signal.Update() {
		b.frozenPrev, b.frozen = b.frozen, 0
		b.markEvent(now)
		b.fire(Changed)
		b.state = Level(b.signal.Read())
		if b.signal.Fell() {
			b.previousState = High
			b.press()
		} else if b.signal.Rose() {
			b.release()
			b.previousState = Low
		}
	}

	b.ext.OnUpdate(b)

	if b.hasSignal {
		b.checkLongPress(now)
		b.resolveClicks(now)
	}
	b.checkIdle(now)
}

func (b *Button) press() {
	b.longPressArmed = true
	b.longPressIndex = 0
	b.fire(Pressed)
	b.ext.OnPress(b)
}

func (b *Button) release() {
	b.fire(Released)
	if b.previousState == High {
		b.clickFired = false
		b.clickCounter++
		b.prevClickCount = b.clickCounter
	}
	b.ext.OnRelease(b)
}

func (b *Button) checkLongPress(now time.Time) {
	if !b.longPressArmed || Level(b.signal.Read()) != Low {
		return
	}
	threshold := b.cfg.LongClickDuration * time.Duration(b.longPressIndex+1)
	if b.heldFor() <= threshold {
		return
	}
	b.markEvent(now)
	if b.longPressIndex == 0 || b.cfg.RepeatLongPress {
		b.fire(LongPress)
	}
	b.longPressIndex++
}

func (b *Button) resolveClicks(now time.Time) {
	if b.clickFired || b.state != High || b.heldFor() <= b.cfg.MultiClickInterval {
		return
	}
	b.clickFired = true
	b.markEvent(now)

	if b.lastHeldFor() > b.cfg.LongClickDuration {
		b.clickCounter = 0
		b.prevClickCount = 1
		b.longPressIndex = 0
		b.fire(LongClick)
		return
	}

	switch {
	case b.clickCounter == 3 && b.handlers[TripleClick] != nil:
		b.fire(TripleClick)
	case b.clickCounter == 2 && b.handlers[DoubleClick] != nil:
		b.fire(DoubleClick)
	default:
		b.fire(Click)
	}
	b.clickCounter = 0
}

func (b *Button) checkIdle(now time.Time) {
	if b.idleFlagged || b.handlers[Idle] == nil {
		return
	}
	if now.Sub(b.lastEvent) > b.cfg.IdleTimeout {
		b.idleFlagged = true
		b.fire(Idle)
	}
}

func (b *Button) markEvent(now time.Time) {
	b.lastEvent = now
	b.idleFlagged = false
}

func (b *Button) fire(ev Event) {
	if h := b.handlers[ev]; h != nil {
		h(b)
	}
}

// heldFor is the duration of the current level excluding time spent
// disabled.
func (b *Button) heldFor() time.Duration {
	return nonNegative(b.signal.CurrentDuration() - b.frozen)
}

func (b *Button) lastHeldFor() time.Duration {
	return nonNegative(b.signal.PreviousDuration() - b.frozenPrev)
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
