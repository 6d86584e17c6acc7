package collect

import (
	"sync"

	"github.com/wethinkt/go-nudge/internal/nudgelog"
	"github.com/wethinkt/go-nudge/internal/telemetry"
)

// allInstances is the pub/sub key for subscribers tailing every instance.
const allInstances = ""

// EventPubSub provides in-memory fan-out of ingested events to WebSocket
// subscribers, keyed by instance id ("" tails everything).
type EventPubSub struct {
	mu   sync.RWMutex
	subs map[string][]*pubsubSubscriber
}

type pubsubSubscriber struct {
	ch     chan []telemetry.Event
	closed bool
}

// NewEventPubSub creates a new pub/sub instance.
func NewEventPubSub() *EventPubSub {
	return &EventPubSub{
		subs: make(map[string][]*pubsubSubscriber),
	}
}

// Subscribe returns a channel receiving event batches for the given
// instance id ("" for all). Call the returned function to unsubscribe and
// close the channel.
func (ps *EventPubSub) Subscribe(instanceID string) (<-chan []telemetry.Event, func()) {
	ch := make(chan []telemetry.Event, 64)
	sub := &pubsubSubscriber{ch: ch}

	ps.mu.Lock()
	ps.subs[instanceID] = append(ps.subs[instanceID], sub)
	ps.mu.Unlock()

	unsub := func() {
		ps.mu.Lock()
		defer ps.mu.Unlock()

		subs := ps.subs[instanceID]
		for i, s := range subs {
			if s == sub {
				ps.subs[instanceID] = append(subs[:i], subs[i+1:]...)
				if !s.closed {
					s.closed = true
					close(s.ch)
				}
				break
			}
		}
		if len(ps.subs[instanceID]) == 0 {
			delete(ps.subs, instanceID)
		}
	}

	return ch, unsub
}

// Publish sends events to subscribers of the instance and to firehose
// subscribers. Slow consumers whose buffers are full have batches dropped.
func (ps *EventPubSub) Publish(instanceID string, events []telemetry.Event) {
	ps.mu.RLock()
	subs := append([]*pubsubSubscriber{}, ps.subs[instanceID]...)
	if instanceID != allInstances {
		subs = append(subs, ps.subs[allInstances]...)
	}
	ps.mu.RUnlock()

	for _, sub := range subs {
		if sub.closed {
			continue
		}
		select {
		case sub.ch <- events:
		default:
			nudgelog.Log.Warn("Dropping events for slow WebSocket subscriber",
				"instance_id", instanceID)
		}
	}
}
