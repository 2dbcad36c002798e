package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/button-sensor/internal/button"
	"github.com/sweeney/button-sensor/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		Backend:      "gpiocdev",
		Pin:          17,
		PollMs:       5,
		DebounceMs:   10,
		MultiClickMs: 250,
		LongClickMs:  750,
		IdleMs:       10000,
		HeartbeatMs:  900000,
		Broker:       "tcp://192.168.1.200:1883",
		HTTPPort:     ":80",
		EventsTopic:  "home/button/0/events",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func getJSON(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(status.ButtonState{Pressed: true, Enabled: true, ClickCount: 1, LongPressCount: 2})
	tr.Record(button.Record{Event: button.LongPress, Timestamp: time.Now(), LongPressCount: 2})
	tr.SetMQTTConnected(true)

	sj := getJSON(t, ts.URL+"/index.json")

	if sj.Status.Button.State != "PRESSED" {
		t.Errorf("Button.State: got %q, want PRESSED", sj.Status.Button.State)
	}
	if sj.Status.Button.LongPressCount != 2 {
		t.Errorf("Button.LongPressCount: got %d, want 2", sj.Status.Button.LongPressCount)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q", sj.Status.MQTT.Broker)
	}
	if sj.Status.Counts["LONG_PRESS"] != 1 {
		t.Errorf("Counts[LONG_PRESS]: got %d, want 1", sj.Status.Counts["LONG_PRESS"])
	}
	if sj.Status.Config.MultiClickMs != 250 {
		t.Errorf("Config.MultiClickMs: got %d, want 250", sj.Status.Config.MultiClickMs)
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.SetNetwork(&status.NetworkInfo{
		Type:   "wifi",
		IP:     "192.168.1.42",
		Status: "connected",
		SSID:   "MyNet",
	})

	sj := getJSON(t, ts.URL+"/index.json")

	if sj.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", sj.Status.Network.IP)
	}
}

func TestHTMLEndpoints(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(status.ButtonState{Pressed: false, Enabled: true, UserState: 3})
	tr.Record(button.Record{
		Event:      button.TripleClick,
		Timestamp:  time.Date(2026, 1, 1, 10, 20, 30, 0, time.UTC),
		ClickCount: 3,
		Duration:   90 * time.Millisecond,
	})

	for _, path := range []string{"/", "/index.html"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != 200 {
			t.Errorf("%s status: got %d, want 200", path, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("%s Content-Type: got %q, want text/html", path, ct)
		}
		page := string(body)
		for _, want := range []string{"RELEASED", "TRIPLE_CLICK x3 (90ms) at 10:20:30.000", "DOUBLE_CLICK", "home/button/0/events"} {
			if !strings.Contains(page, want) {
				t.Errorf("%s: expected page to contain %q", path, want)
			}
		}
		if strings.Contains(page, "mqtt.min.js") {
			t.Errorf("%s: live script should be omitted without a websocket broker", path)
		}
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	sj1 := getJSON(t, ts.URL+"/index.json")
	if sj1.Status.LastEvent != nil {
		t.Error("expected no last event initially")
	}

	tr.Record(button.Record{Event: button.Click, Timestamp: time.Now(), ClickCount: 1})
	tr.Update(status.ButtonState{Enabled: true, ClickCount: 1})

	sj2 := getJSON(t, ts.URL+"/index.json")
	if sj2.Status.LastEvent == nil || sj2.Status.LastEvent.Event != "CLICK" {
		t.Errorf("expected last event CLICK, got %+v", sj2.Status.LastEvent)
	}
	if sj2.Status.Button.ClickCount != 1 {
		t.Errorf("Button.ClickCount: got %d, want 1", sj2.Status.Button.ClickCount)
	}
}

func TestEventsEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(status.ButtonState{Pressed: true, Enabled: true})
	tr.Record(button.Record{Event: button.DoubleClick, Timestamp: time.Now(), ClickCount: 2, Duration: 80 * time.Millisecond})
	tr.Record(button.Record{Event: button.Pressed, Timestamp: time.Now()})

	resp, err := http.Get(ts.URL + "/events.json")
	if err != nil {
		t.Fatalf("GET /events.json: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
	var ev status.EventsJSON
	if err := json.NewDecoder(resp.Body).Decode(&ev); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if !ev.Pressed {
		t.Error("expected pressed=true")
	}
	if ev.LastEvent == nil || ev.LastEvent.Event != "PRESSED" {
		t.Errorf("expected last event PRESSED, got %+v", ev.LastEvent)
	}
	if ev.Counts["DOUBLE_CLICK"] != 1 || ev.Counts["PRESSED"] != 1 {
		t.Errorf("unexpected counts: %v", ev.Counts)
	}
	if n, ok := ev.Counts["TRIPLE_CLICK"]; !ok || n != 0 {
		t.Errorf("every event should be listed, TRIPLE_CLICK=%d present=%v", n, ok)
	}
}
