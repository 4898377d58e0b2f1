// Package events fans out decoded session traffic to in-process observers
// (CLI verbose output, a future TUI, test harnesses) without ever blocking
// the publisher.
package events

import (
	"sync"

	"github.com/soulgo/soulgo/internal/logging"
	"github.com/soulgo/soulgo/internal/metrics"
	"github.com/soulgo/soulgo/internal/wire"
)

// Direction identifies whether an Event was sent or received.
type Direction int

const (
	Outbound Direction = iota
	Inbound
)

func (d Direction) String() string {
	if d == Outbound {
		return "outbound"
	}
	return "inbound"
}

// Event is published on the bus for every frame a session sends or
// receives. Message is the decoded proto.ServerMessage/PeerMessage (or nil
// if decode failed), and DecodeErr carries the decode failure when present.
type Event struct {
	Direction Direction
	Frame     wire.Frame
	Message   any
	DecodeErr error
}

// Policy controls what happens when a subscriber's buffer is full.
type Policy int

const (
	PolicyDrop Policy = iota
	PolicyDisconnect
)

// Subscription is a single observer's inbound channel.
type Subscription struct {
	Out       chan Event
	closed    chan struct{}
	closeOnce sync.Once
}

// Close marks the subscription closed; idempotent.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
}

// Bus is an in-process publish/subscribe fan-out of session Events. It is
// not part of the wire protocol; a nil *Bus is valid everywhere a session
// accepts one, and Publish on a nil *Bus is a no-op.
type Bus struct {
	mu      sync.RWMutex
	subs    map[*Subscription]struct{}
	bufSize int
	policy  Policy
}

// New creates a Bus with the given per-subscriber buffer size and
// backpressure policy.
func New(bufSize int, policy Policy) *Bus {
	return &Bus{subs: make(map[*Subscription]struct{}), bufSize: bufSize, policy: policy}
}

// Subscribe registers a new observer and returns its subscription.
func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{Out: make(chan Event, b.bufSize), closed: make(chan struct{})}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes an observer, closing its subscription.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
	sub.Close()
}

// Publish fans an Event out to every subscriber honoring the bus's
// backpressure policy. It never blocks: under PolicyDrop a full subscriber
// buffer silently discards the event (and counts it); under
// PolicyDisconnect the lagging subscriber is closed instead.
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	for _, sub := range b.snapshot() {
		select {
		case sub.Out <- ev:
		default:
			switch b.policy {
			case PolicyDisconnect:
				b.Unsubscribe(sub)
				logging.L().Warn("event_bus_subscriber_disconnected")
			default:
				metrics.IncEventBusDropped()
			}
		}
	}
}

func (b *Bus) snapshot() []*Subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()
	subs := make([]*Subscription, 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	return subs
}

// Count returns the number of active subscribers.
func (b *Bus) Count() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
