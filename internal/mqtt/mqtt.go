// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/button-sensor/internal/button"
)

// DefaultPrefix is the topic root for button events.
const DefaultPrefix = "home/button"

// TimeFormat is RFC3339 with millisecond precision; clicks are often less
// than a second apart.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Topics holds the topics for one button.
type Topics struct {
	Events string
	System string
}

// TopicsFor returns the topics of the button with the given user id,
// e.g. home/button/0/events and home/button/0/system.
func TopicsFor(prefix string, userID uint) Topics {
	base := fmt.Sprintf("%s/%d", prefix, userID)
	return Topics{
		Events: base + "/events",
		System: base + "/system",
	}
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a button event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(rec button.Record) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Button ButtonPayload `json:"button"`
}

// ButtonPayload contains the button event details.
type ButtonPayload struct {
	Timestamp      string `json:"timestamp"`
	Event          string `json:"event"`
	UserID         uint   `json:"user_id"`
	UserState      uint   `json:"user_state"`
	Pressed        bool   `json:"pressed"`
	ClickCount     int    `json:"click_count"`
	LongPressCount int    `json:"long_press_count"`
	DurationMs     int64  `json:"duration_ms"`
}

// FormatPayload creates the JSON payload for a button event.
func FormatPayload(rec button.Record) ([]byte, error) {
	payload := Payload{
		Button: ButtonPayload{
			Timestamp:      rec.Timestamp.UTC().Format(TimeFormat),
			Event:          rec.Event.String(),
			UserID:         rec.UserID,
			UserState:      rec.UserState,
			Pressed:        rec.Pressed,
			ClickCount:     rec.ClickCount,
			LongPressCount: rec.LongPressCount,
			DurationMs:     rec.Duration.Milliseconds(),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
