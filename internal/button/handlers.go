package button

import "time"

// SetHandler stores h in the slot for ev. A nil h clears the slot.
func (b *Button) SetHandler(ev Event, h Handler) {
	if ev < numEvents {
		b.handlers[ev] = h
	}
}

// SetChangedHandler fires on every debounced transition, before the
// pressed or released handler.
func (b *Button) SetChangedHandler(h Handler) { b.SetHandler(Changed, h) }

// SetPressedHandler fires when the button goes down.
func (b *Button) SetPressedHandler(h Handler) { b.SetHandler(Pressed, h) }

// SetReleasedHandler fires when the button comes up, before any click or
// long click handler.
func (b *Button) SetReleasedHandler(h Handler) { b.SetHandler(Released, h) }

// SetClickHandler fires once the multi-click interval has passed after a
// short press. ClickCount reports how many clicks made up the burst. It is
// not fired for double or triple clicks when those handlers are set.
func (b *Button) SetClickHandler(h Handler) { b.SetHandler(Click, h) }

// SetDoubleClickHandler fires instead of the click handler for a burst of
// exactly two clicks.
func (b *Button) SetDoubleClickHandler(h Handler) { b.SetHandler(DoubleClick, h) }

// SetTripleClickHandler fires instead of the click handler for a burst of
// exactly three clicks.
func (b *Button) SetTripleClickHandler(h Handler) { b.SetHandler(TripleClick, h) }

// SetLongClickHandler fires after the release of a press that lasted longer
// than the long click duration.
func (b *Button) SetLongClickHandler(h Handler) { b.SetHandler(LongClick, h) }

// SetLongPressHandler fires while the button is held past the long click
// duration. With repeat it fires again every further long click duration;
// LongPressCount reports the repeat number.
func (b *Button) SetLongPressHandler(h Handler, repeat bool) {
	b.SetHandler(LongPress, h)
	b.cfg.RepeatLongPress = repeat
}

// SetIdleHandler fires once after the button has been silent for the idle
// timeout.
func (b *Button) SetIdleHandler(h Handler) { b.SetHandler(Idle, h) }

// SetExtension installs a per-update hook. Nil restores the no-op hook.
func (b *Button) SetExtension(e Extension) {
	if e == nil {
		e = NopExtension{}
	}
	b.ext = e
}

// SetDebounceInterval is passed through to the signal source.
func (b *Button) SetDebounceInterval(d time.Duration) {
	if b.hasSignal {
		b.signal.SetInterval(d)
	}
}

func (b *Button) SetMultiClickInterval(d time.Duration) { b.cfg.MultiClickInterval = d }
func (b *Button) SetLongClickDuration(d time.Duration)  { b.cfg.LongClickDuration = d }
func (b *Button) SetLongPressRepeat(repeat bool)        { b.cfg.RepeatLongPress = repeat }
func (b *Button) SetIdleTimeout(d time.Duration)        { b.cfg.IdleTimeout = d }

// SetUserID tags the button for shared handlers. The classifier ignores it.
func (b *Button) SetUserID(id uint) { b.userID = id }

// SetUserState stores an arbitrary caller state (ON, OFF, a menu index...).
// The classifier ignores it.
func (b *Button) SetUserState(s uint) { b.userState = s }

// Enable turns classification on or off. While disabled Update does
// nothing; on re-enable the time spent disabled is excluded from every
// duration the classifier compares, so no catch-up events fire.
func (b *Button) Enable(e bool) {
	now := b.clock.Now()
	switch {
	case b.enabled && !e:
		b.disabledAt = now
	case !b.enabled && e:
		paused := nonNegative(now.Sub(b.disabledAt))
		b.frozen += paused
		b.lastEvent = b.lastEvent.Add(paused)
	}
	b.enabled = e
}
