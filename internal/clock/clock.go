// Package clock provides the time source used by the debouncer and the
// button classifier. The daemon uses Poll; tests use Fake.
package clock

import "time"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// Poll is a clock that only moves when Set is called. The daemon sets it
// once per tick so the debouncer, the classifier and every Record built
// during one update agree on the instant.
type Poll struct {
	now time.Time
}

// NewPoll creates a Poll clock reading start.
func NewPoll(start time.Time) *Poll {
	return &Poll{now: start}
}

// Now returns the time of the last Set.
func (p *Poll) Now() time.Time {
	return p.now
}

// Set moves the clock to t. Earlier times are ignored.
func (p *Poll) Set(t time.Time) {
	if t.Before(p.now) {
		return
	}
	p.now = t
}
