package mqtt

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// pendingMsg is a serialized message waiting for the broker to come back.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a fixed-capacity FIFO of messages held while disconnected.
// When full the oldest message is overwritten. Safe for concurrent use:
// the poll loop pushes while paho's connect handler drains.
type outbox struct {
	mu      sync.Mutex
	buf     []pendingMsg
	head    int // next write position
	count   int
	dropped int // messages overwritten since the last drain
}

func newOutbox(capacity int) *outbox {
	if capacity < 1 {
		capacity = 1
	}
	return &outbox{buf: make([]pendingMsg, capacity)}
}

func (o *outbox) push(msg pendingMsg) {
	o.mu.Lock()
	defer o.mu.Unlock()

	capacity := len(o.buf)
	if o.count == capacity {
		if o.dropped == 0 {
			log.Warnf("mqtt: outbox full (%d messages), dropping oldest", capacity)
		}
		o.dropped++
	} else {
		o.count++
	}
	o.buf[o.head] = msg
	o.head = (o.head + 1) % capacity
}

// drain removes and returns all held messages, oldest first, plus the number
// that were lost to overflow.
func (o *outbox) drain() ([]pendingMsg, int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.count == 0 {
		return nil, 0
	}

	capacity := len(o.buf)
	out := make([]pendingMsg, o.count)
	start := (o.head - o.count + capacity) % capacity
	for i := range out {
		out[i] = o.buf[(start+i)%capacity]
	}

	dropped := o.dropped
	o.count = 0
	o.head = 0
	o.dropped = 0
	return out, dropped
}

func (o *outbox) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.count
}
