package mqtt

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/sweeney/button-sensor/internal/button"
)

// DefaultOutboxSize is how many messages are held while the broker is
// unreachable.
const DefaultOutboxSize = 256

// Options configures a RealPublisher.
type Options struct {
	Broker     string
	ClientID   string
	Topics     Topics
	OutboxSize int
}

// publishTimeout bounds how long one publish waits for the broker.
const publishTimeout = 5 * time.Second

// brokerClient is the part of paho.Client the publisher uses.
type brokerClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// RealPublisher publishes to an actual MQTT broker. Messages published while
// disconnected, or whose publish failed, are held in an outbox. The outbox
// is flushed on every reconnect and ahead of every later send, so held
// messages always go out before newer ones.
type RealPublisher struct {
	client    brokerClient
	topics    Topics
	outbox    *outbox
	mu        sync.Mutex // serializes sends, flushes and the connected transition
	connected atomic.Bool
	everUp    atomic.Bool
}

// NewRealPublisher creates a publisher for the given broker. The connection
// is retried in the background; an unreachable broker is not an error.
func NewRealPublisher(o Options) (*RealPublisher, error) {
	if o.OutboxSize == 0 {
		o.OutboxSize = DefaultOutboxSize
	}
	p := &RealPublisher{
		topics: o.Topics,
		outbox: newOutbox(o.OutboxSize),
	}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(o.Topics.System, will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	client := paho.NewClient(opts)
	p.client = client
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Warnf("mqtt: broker %s not reachable yet, buffering until connected", o.Broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// Publish sends a button event to the MQTT broker.
func (p *RealPublisher) Publish(rec button.Record) error {
	payload, err := FormatPayload(rec)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.send(pendingMsg{topic: p.topics.Events, payload: payload})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) - lifecycle events should not be lost
	return p.send(pendingMsg{topic: p.topics.System, payload: payload, qos: 1, retained: event.Retained})
}

func (p *RealPublisher) send(msg pendingMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.connected.Load() {
		p.outbox.push(msg)
		return nil
	}
	if err := p.flushLocked(); err != nil {
		p.outbox.push(msg)
		return err
	}
	if err := p.publish(msg); err != nil {
		p.outbox.push(msg)
		return err
	}
	return nil
}

func (p *RealPublisher) publish(msg pendingMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", msg.topic, err)
	}
	return nil
}

// flushLocked publishes the outbox in order. On the first failure the
// failed message and everything after it go back into the outbox.
// Callers hold p.mu.
func (p *RealPublisher) flushLocked() error {
	msgs, dropped := p.outbox.drain()
	if dropped > 0 {
		log.Warnf("mqtt: %d buffered messages were dropped while disconnected", dropped)
	}

	sent := 0
	var err error
	for i, m := range msgs {
		if err = p.publish(m); err != nil {
			log.Warnf("mqtt: replay failed, %d messages re-queued: %v", len(msgs)-i, err)
			for _, rest := range msgs[i:] {
				p.outbox.push(rest)
			}
			break
		}
		sent++
	}
	if sent > 0 {
		log.Printf("mqtt: replayed %d buffered messages", sent)
	}
	return err
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.connected.Load()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}

// onConnect runs on paho's goroutine after every (re)connect.
func (p *RealPublisher) onConnect(paho.Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.connected.Store(true)

	if p.everUp.Swap(true) {
		log.Printf("mqtt: reconnected")
		payload, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"})
		if err == nil {
			if err := p.publish(pendingMsg{topic: p.topics.System, payload: payload, qos: 1}); err != nil {
				log.Warnf("mqtt: %v", err)
			}
		}
	} else {
		log.Printf("mqtt: connected")
	}

	p.flushLocked()
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	p.connected.Store(false)
	log.Warnf("mqtt: connection lost: %v", err)
}
