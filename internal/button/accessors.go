package button

import "time"

// ButtonState returns the debounced level. Without a signal source the
// button reads High.
func (b *Button) ButtonState() Level {
	if !b.hasSignal {
		return High
	}
	return Level(b.signal.Read())
}

// IsPressed reports whether the button is down.
func (b *Button) IsPressed() bool {
	return b.ButtonState() == Low
}

// CurrentDuration returns how long the signal has held its current level,
// not counting time the button spent disabled.
func (b *Button) CurrentDuration() time.Duration {
	if !b.hasSignal {
		return 0
	}
	return b.heldFor()
}

// PreviousDuration returns how long the signal held its previous level,
// not counting time the button spent disabled.
func (b *Button) PreviousDuration() time.Duration {
	if !b.hasSignal {
		return 0
	}
	return b.lastHeldFor()
}

// ClickCount returns the number of clicks in the last resolved burst, or in
// the burst in progress once a release has been counted.
func (b *Button) ClickCount() int { return b.prevClickCount }

// LongPressCount returns the 1-based long press repeat number. It advances
// every long click duration of the hold even when repeat is off.
func (b *Button) LongPressCount() int { return b.longPressIndex + 1 }

// SinceLastEvent returns the time since the last fired event.
func (b *Button) SinceLastEvent() time.Duration {
	return b.clock.Now().Sub(b.lastEvent)
}

func (b *Button) UserID() uint    { return b.userID }
func (b *Button) UserState() uint { return b.userState }
func (b *Button) Enabled() bool   { return b.enabled }

// HasSignal reports whether the button was created with a signal source.
func (b *Button) HasSignal() bool { return b.hasSignal }

func (b *Button) MultiClickInterval() time.Duration { return b.cfg.MultiClickInterval }
func (b *Button) LongClickDuration() time.Duration  { return b.cfg.LongClickDuration }
func (b *Button) IdleTimeout() time.Duration        { return b.cfg.IdleTimeout }
func (b *Button) LongPressRepeat() bool             { return b.cfg.RepeatLongPress }

// Config returns the current timing configuration.
func (b *Button) Config() Config { return b.cfg }

// Record snapshots the button for ev. Call it from a handler.
func (b *Button) Record(ev Event) Record {
	r := Record{
		Timestamp:      b.clock.Now(),
		Event:          ev,
		UserID:         b.userID,
		UserState:      b.userState,
		Pressed:        b.IsPressed(),
		ClickCount:     b.ClickCount(),
		LongPressCount: b.LongPressCount(),
	}
	switch ev {
	case Released, Click, DoubleClick, TripleClick, LongClick:
		r.Duration = b.PreviousDuration()
	default:
		r.Duration = b.CurrentDuration()
	}
	return r
}
