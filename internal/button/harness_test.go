package button

import (
	"testing"
	"time"

	"github.com/sweeney/button-sensor/internal/clock"
	"github.com/sweeney/button-sensor/internal/gpio"
)

var testStart = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// harness drives a Button through a zero-interval debouncer, polling once
// per simulated millisecond.
type harness struct {
	t     *testing.T
	clk   *clock.Fake
	pin   *gpio.FakeReader
	btn   *Button
	fired []Record
}

func newHarness(t *testing.T, cfg Config) *harness {
	return newHarnessAt(t, cfg, true)
}

func newHarnessAt(t *testing.T, cfg Config, initial bool) *harness {
	t.Helper()
	clk := clock.NewFake(testStart)
	pin := gpio.NewFakeReader(initial)
	btn, deb := NewOnPin(pin, clk, cfg)
	deb.SetInterval(0)
	return &harness{t: t, clk: clk, pin: pin, btn: btn}
}

// record installs a handler for each event that appends a Record.
func (h *harness) record(evs ...Event) {
	for _, ev := range evs {
		ev := ev
		h.btn.SetHandler(ev, func(b *Button) {
			h.fired = append(h.fired, b.Record(ev))
		})
	}
}

// run polls the button every millisecond for d.
func (h *harness) run(d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += time.Millisecond {
		h.btn.Update()
		h.clk.Advance(time.Millisecond)
	}
}

func (h *harness) press(d time.Duration) {
	h.pin.Press()
	h.run(d)
}

func (h *harness) release(d time.Duration) {
	h.pin.Release()
	h.run(d)
}

func (h *harness) click(down, up time.Duration) {
	h.press(down)
	h.release(up)
}

func (h *harness) count(ev Event) int {
	n := 0
	for _, r := range h.fired {
		if r.Event == ev {
			n++
		}
	}
	return n
}

func (h *harness) last(ev Event) Record {
	h.t.Helper()
	for i := len(h.fired) - 1; i >= 0; i-- {
		if h.fired[i].Event == ev {
			return h.fired[i]
		}
	}
	h.t.Fatalf("no %s event recorded", ev)
	return Record{}
}

func (h *harness) sequence() []Event {
	evs := make([]Event, len(h.fired))
	for i, r := range h.fired {
		evs[i] = r.Event
	}
	return evs
}
