package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/button-sensor/internal/button"
	"github.com/sweeney/button-sensor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateName": status.StateName,
	"ms": func(d time.Duration) int64 {
		return d.Milliseconds()
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Button Sensor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.pressed { color: green; font-weight: bold; }
.released { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Button Sensor{{if .Config.WSBroker}}<span id="live-dot" class="live-dot pending" title="connecting"></span>{{end}}</h1>

<h2>Button</h2>
<table>
<tr><th>State</th><td id="state" class="{{if .Button.Pressed}}pressed{{else}}released{{end}}">{{stateName .Button.Pressed}}</td></tr>
<tr><th>Enabled</th><td>{{if .Button.Enabled}}yes{{else}}no{{end}}</td></tr>
<tr><th>User state</th><td id="user-state">{{.Button.UserState}}</td></tr>
<tr><th>Last event</th><td id="last-event">{{if .LastEvent}}{{.LastEvent.Event}} x{{.LastEvent.ClickCount}} ({{ms .LastEvent.Duration}}ms) at {{.LastEvent.Timestamp.UTC.Format "15:04:05.000"}}{{else}}none{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Topic</th><td>{{.Config.EventsTopic}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
{{range .Events}}<tr><th>{{.Name}}</th><td>{{.Count}}</td></tr>
{{end}}</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Input</th><td>{{.Config.Backend}} pin {{.Config.Pin}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Multi-click</th><td>{{.Config.MultiClickMs}}ms</td></tr>
<tr><th>Long click</th><td>{{.Config.LongClickMs}}ms{{if .Config.RepeatLongPress}} (repeat){{end}}</td></tr>
<tr><th>Idle</th><td>{{.Config.IdleMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/events.json">Events</a></p>
{{if .Config.WSBroker}}
<script src="https://unpkg.com/mqtt@5/dist/mqtt.min.js"></script>
<script>
(function() {
  var broker = "{{.Config.WSBroker}}";
  var topic = "{{.Config.EventsTopic}}";
  var dot = document.getElementById("live-dot");
  var stateEl = document.getElementById("state");
  var userEl = document.getElementById("user-state");
  var lastEl = document.getElementById("last-event");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  var client = mqtt.connect(broker, { reconnectPeriod: 5000 });

  client.on("connect", function() {
    setDot("ok", "live");
    client.subscribe(topic);
  });

  client.on("reconnect", function() {
    setDot("pending", "reconnecting");
  });

  client.on("offline", function() {
    setDot("err", "offline");
  });

  client.on("error", function() {
    setDot("err", "error");
  });

  client.on("message", function(t, payload) {
    try {
      var msg = JSON.parse(payload.toString());
      if (msg.button) {
        var b = msg.button;
        stateEl.textContent = b.pressed ? "PRESSED" : "RELEASED";
        stateEl.className = b.pressed ? "pressed" : "released";
        userEl.textContent = b.user_state;
        lastEl.textContent = b.event + " x" + b.click_count + " (" + b.duration_ms + "ms) at " + b.timestamp.substr(11, 12);
      }
    } catch (e) {}
  });
})();
</script>
{{end}}
</body>
</html>
`

type eventCount struct {
	Name  string
	Count int
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Events []eventCount
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	for _, ev := range button.Events() {
		data.Events = append(data.Events, eventCount{Name: ev.String(), Count: snap.Counts[ev]})
	}
	indexTmpl.Execute(w, data)
}
