package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/button-sensor/internal/button"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string         `json:"event,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	Button        ButtonJSON     `json:"button"`
	LastEvent     *LastEventJSON `json:"last_event,omitempty"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     string         `json:"start_time"`
	Timestamp     string         `json:"timestamp"`
	MQTT          MQTTStatus     `json:"mqtt"`
	Counts        map[string]int `json:"event_counts"`
	Network       *NetworkJSON   `json:"network,omitempty"`
	Config        ConfigJSON     `json:"config"`
}

// ButtonJSON is the live classifier state.
type ButtonJSON struct {
	State          string `json:"state"`
	Enabled        bool   `json:"enabled"`
	UserState      uint   `json:"user_state"`
	ClickCount     int    `json:"click_count"`
	LongPressCount int    `json:"long_press_count"`
}

// LastEventJSON describes the most recent fired event.
type LastEventJSON struct {
	Event      string `json:"event"`
	Timestamp  string `json:"timestamp"`
	ClickCount int    `json:"click_count"`
	DurationMs int64  `json:"duration_ms"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	Topic     string `json:"topic"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Backend         string `json:"backend"`
	Pin             int    `json:"pin"`
	UserID          uint   `json:"user_id"`
	PollMs          int64  `json:"poll_ms"`
	DebounceMs      int64  `json:"debounce_ms"`
	MultiClickMs    int64  `json:"multi_click_ms"`
	LongClickMs     int64  `json:"long_click_ms"`
	IdleMs          int64  `json:"idle_ms"`
	RepeatLongPress bool   `json:"repeat_long_press"`
	HeartbeatMs     int64  `json:"heartbeat_ms"`
	HTTPPort        string `json:"http_port"`
	WSBroker        string `json:"ws_broker,omitempty"`
}

// StateName returns PRESSED or RELEASED.
func StateName(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}

func buildInner(snap Snapshot) StatusInner {
	counts := make(map[string]int, len(snap.Counts))
	for _, ev := range button.Events() {
		counts[ev.String()] = snap.Counts[ev]
	}

	inner := StatusInner{
		Button: ButtonJSON{
			State:          StateName(snap.Button.Pressed),
			Enabled:        snap.Button.Enabled,
			UserState:      snap.Button.UserState,
			ClickCount:     snap.Button.ClickCount,
			LongPressCount: snap.Button.LongPressCount,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Connected: snap.MQTTConnected,
			Broker:    snap.Config.Broker,
			Topic:     snap.Config.EventsTopic,
		},
		Counts: counts,
		Config: ConfigJSON{
			Backend:         snap.Config.Backend,
			Pin:             snap.Config.Pin,
			UserID:          snap.Config.UserID,
			PollMs:          snap.Config.PollMs,
			DebounceMs:      snap.Config.DebounceMs,
			MultiClickMs:    snap.Config.MultiClickMs,
			LongClickMs:     snap.Config.LongClickMs,
			IdleMs:          snap.Config.IdleMs,
			RepeatLongPress: snap.Config.RepeatLongPress,
			HeartbeatMs:     snap.Config.HeartbeatMs,
			HTTPPort:        snap.Config.HTTPPort,
			WSBroker:        snap.Config.WSBroker,
		},
	}

	if snap.LastEvent != nil {
		inner.LastEvent = &LastEventJSON{
			Event:      snap.LastEvent.Event.String(),
			Timestamp:  snap.LastEvent.Timestamp.UTC().Format(time.RFC3339),
			ClickCount: snap.LastEvent.ClickCount,
			DurationMs: snap.LastEvent.Duration.Milliseconds(),
		}
	}

	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// EventsJSON is the button activity summary served at /events.json.
type EventsJSON struct {
	Pressed   bool           `json:"pressed"`
	LastEvent *LastEventJSON `json:"last_event"`
	Counts    map[string]int `json:"event_counts"`
}

// FormatEventsJSON returns the activity summary: live pressed state, the
// last fired event and the per-event counts.
func FormatEventsJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(EventsJSON{
		Pressed:   snap.Button.Pressed,
		LastEvent: inner.LastEvent,
		Counts:    inner.Counts,
	}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
