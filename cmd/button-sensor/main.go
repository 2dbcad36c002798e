// Command button-sensor polls a push button on a GPIO pin, classifies clicks,
// double clicks and long presses, and publishes each event to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/button-sensor/internal/button"
	"github.com/sweeney/button-sensor/internal/clock"
	"github.com/sweeney/button-sensor/internal/debounce"
	"github.com/sweeney/button-sensor/internal/gpio"
	"github.com/sweeney/button-sensor/internal/mqtt"
	"github.com/sweeney/button-sensor/internal/status"
	"github.com/sweeney/button-sensor/internal/web"
)

type options struct {
	backend    string
	chip       string
	pin        int
	poll       time.Duration
	debounce   time.Duration
	button     button.Config
	userID     uint
	states     uint
	broker     string
	clientID   string
	heartbeat  time.Duration
	printState bool
	httpAddr   string
	wsBroker   string
}

func main() {
	var o options
	def := button.DefaultConfig()

	flag.StringVar(&o.backend, "backend", "gpiocdev", `GPIO backend ("gpiocdev" or "periph")`)
	flag.StringVar(&o.chip, "chip", gpio.DefaultChip, "GPIO chip (gpiocdev backend)")
	flag.IntVar(&o.pin, "pin", gpio.DefaultPin, "BCM pin number of the button")
	flag.DurationVar(&o.poll, "poll", 5*time.Millisecond, "GPIO polling interval")
	flag.DurationVar(&o.debounce, "debounce", debounce.DefaultInterval, "Debounce interval")
	flag.DurationVar(&o.button.MultiClickInterval, "multi-click", def.MultiClickInterval, "Maximum gap between clicks of a double or triple click")
	flag.DurationVar(&o.button.LongClickDuration, "long-click", def.LongClickDuration, "Hold time for a long click and between long press repeats")
	flag.DurationVar(&o.button.IdleTimeout, "idle", def.IdleTimeout, "Inactivity before an IDLE event")
	flag.BoolVar(&o.button.RepeatLongPress, "repeat", def.RepeatLongPress, "Repeat LONG_PRESS while the button is held")
	flag.UintVar(&o.userID, "user-id", 0, "Button id used in topics and payloads")
	flag.UintVar(&o.states, "states", 0, "Cycle user_state through this many states on each click (0 disables)")
	flag.StringVar(&o.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.StringVar(&o.clientID, "client-id", "button-sensor", "MQTT client id")
	flag.DurationVar(&o.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.BoolVar(&o.printState, "print-state", false, "Print current button state and exit")
	flag.StringVar(&o.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	wsBroker := flag.String("ws-broker", "=broker", `MQTT websocket URL for live UI ("=broker" derives from --broker, "off" disables)`)
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")

	flag.Parse()

	lvl, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	log.SetLevel(lvl)

	o.wsBroker = resolveWSBroker(*wsBroker, o.broker)
	if err := run(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func openReader(backend, chip string, pin int) (gpio.Reader, error) {
	switch backend {
	case "gpiocdev":
		r, err := gpio.NewRealReader(chip, pin)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "periph":
		r, err := gpio.NewPeriphReader(gpio.PinName(pin))
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func run(o options) error {
	reader, err := openReader(o.backend, o.chip, o.pin)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	if o.printState {
		high, err := reader.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Println(stateString(high))
		return nil
	}

	clk := clock.NewPoll(time.Now())
	btn, input := button.NewOnPin(reader, clk, o.button)
	btn.SetDebounceInterval(o.debounce)
	btn.SetUserID(o.userID)
	if o.states > 0 {
		btn.SetExtension(button.Cycler{States: o.states})
	}

	topics := mqtt.TopicsFor(mqtt.DefaultPrefix, o.userID)
	publisher, err := mqtt.NewRealPublisher(mqtt.Options{
		Broker:   o.broker,
		ClientID: o.clientID,
		Topics:   topics,
	})
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		Backend:         o.backend,
		Pin:             o.pin,
		UserID:          o.userID,
		PollMs:          o.poll.Milliseconds(),
		DebounceMs:      o.debounce.Milliseconds(),
		MultiClickMs:    o.button.MultiClickInterval.Milliseconds(),
		LongClickMs:     o.button.LongClickDuration.Milliseconds(),
		IdleMs:          o.button.IdleTimeout.Milliseconds(),
		RepeatLongPress: o.button.RepeatLongPress,
		HeartbeatMs:     o.heartbeat.Milliseconds(),
		Broker:          o.broker,
		HTTPPort:        o.httpAddr,
		WSBroker:        o.wsBroker,
		EventsTopic:     topics.Events,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.Update(buttonState(btn))
	tracker.SetMQTTConnected(publisher.IsConnected())

	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Warnf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", o.httpAddr)
	}

	log.WithFields(log.Fields{
		"backend":  o.backend,
		"pin":      o.pin,
		"poll":     o.poll,
		"debounce": o.debounce,
		"broker":   o.broker,
		"topic":    topics.Events,
	}).Info("started")

	ticker := time.NewTicker(o.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(btn, input, clk, publisher, publisher, tracker, o.heartbeat, ticker.C, sigCh)
}

// eventQueue holds the records fired during one Update so they are
// published after the classifier returns.
type eventQueue struct {
	records []button.Record
}

func (q *eventQueue) push(rec button.Record) {
	q.records = append(q.records, rec)
}

func (q *eventQueue) drain() []button.Record {
	out := q.records
	q.records = nil
	return out
}

// wireHandlers registers a handler for every event that queues its Record.
func wireHandlers(btn *button.Button, q *eventQueue) {
	for _, ev := range button.Events() {
		ev := ev
		btn.SetHandler(ev, func(b *button.Button) {
			q.push(b.Record(ev))
		})
	}
}

func buttonState(btn *button.Button) status.ButtonState {
	return status.ButtonState{
		Pressed:        btn.IsPressed(),
		Enabled:        btn.Enabled(),
		UserState:      btn.UserState(),
		ClickCount:     btn.ClickCount(),
		LongPressCount: btn.LongPressCount(),
	}
}

func runLoop(btn *button.Button, input *debounce.Debouncer, clk *clock.Poll, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, tick <-chan time.Time, sig <-chan os.Signal) error {
	queue := &eventQueue{}
	wireHandlers(btn, queue)

	lastHeartbeat := clk.Now()
	var lastErr error

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: clk.Now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Warnf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case t := <-tick:
			clk.Set(t)
			btn.Update()

			if input != nil {
				err := input.Err()
				if err != nil && (lastErr == nil || err.Error() != lastErr.Error()) {
					log.Warnf("gpio read error: %v", err)
				} else if err == nil && lastErr != nil {
					log.Printf("gpio read recovered")
				}
				lastErr = err
			}

			for _, rec := range queue.drain() {
				log.WithFields(log.Fields{
					"clicks":     rec.ClickCount,
					"user_state": rec.UserState,
					"duration":   rec.Duration,
				}).Infof("event: %s", rec.Event)
				if tracker != nil {
					tracker.Record(rec)
				}
				if err := publisher.Publish(rec); err != nil {
					log.Warnf("publish error: %v", err)
				}
			}

			if tracker != nil {
				tracker.Update(buttonState(btn))
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			if heartbeat > 0 && clk.Now().Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = clk.Now()
				hbEvent := mqtt.SystemEvent{
					Timestamp: lastHeartbeat,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
					log.Printf("heartbeat: uptime=%v counts=%v", snap.Uptime().Truncate(time.Second), snap.Counts)
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Warnf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

// stateString maps a raw pin level to the button state. The input is
// pulled up, so a pressed button reads LOW.
func stateString(high bool) string {
	return status.StateName(!high)
}

// resolveWSBroker converts the --ws-broker flag value into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; "off" disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Warnf("ws-broker: cannot parse --broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
