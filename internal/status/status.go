// Package status provides a thread-safe status tracker for the button-sensor daemon.
// It is read by the HTTP handlers and by the MQTT lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/button-sensor/internal/button"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Backend         string
	Pin             int
	UserID          uint
	PollMs          int64
	DebounceMs      int64
	MultiClickMs    int64
	LongClickMs     int64
	IdleMs          int64
	RepeatLongPress bool
	HeartbeatMs     int64
	Broker          string
	HTTPPort        string
	WSBroker        string // Websocket broker URL for browser MQTT (empty = disabled)
	EventsTopic     string
}

// ButtonState is the live state of the classifier, refreshed every poll.
type ButtonState struct {
	Pressed        bool
	Enabled        bool
	UserState      uint
	ClickCount     int
	LongPressCount int
}

// EventCounts tracks how many times each event fired since startup.
type EventCounts map[button.Event]int

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Button        ButtonState
	LastEvent     *button.Record
	Counts        EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu     sync.RWMutex
	snap   Snapshot
	counts EventCounts
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		counts: make(EventCounts),
	}
}

// Record counts a fired event and remembers it as the last event.
func (t *Tracker) Record(rec button.Record) {
	t.mu.Lock()
	t.counts[rec.Event]++
	t.snap.LastEvent = &rec
	t.mu.Unlock()
}

// Update sets the live button state. Called from runLoop on every tick.
func (t *Tracker) Update(st ButtonState) {
	t.mu.Lock()
	t.snap.Button = st
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Counts = make(EventCounts, len(t.counts))
	for ev, n := range t.counts {
		s.Counts[ev] = n
	}
	if t.snap.LastEvent != nil {
		last := *t.snap.LastEvent
		s.LastEvent = &last
	}
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
