package collect

import (
	"testing"
	"time"

	"github.com/wethinkt/go-nudge/internal/telemetry"
)

func TestEventPubSub_SubscribeAndPublish(t *testing.T) {
	ps := NewEventPubSub()

	ch, unsub := ps.Subscribe("inst-1")
	defer unsub()

	events := []telemetry.Event{
		{ID: "e1", Name: "nudge_transition", Time: time.Now()},
	}
	ps.Publish("inst-1", events)

	select {
	case got := <-ch:
		if len(got) != 1 || got[0].ID != "e1" {
			t.Errorf("unexpected events: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published events")
	}
}

func TestEventPubSub_DifferentInstance(t *testing.T) {
	ps := NewEventPubSub()

	ch, unsub := ps.Subscribe("inst-1")
	defer unsub()

	// Publish to a different instance
	ps.Publish("inst-2", []telemetry.Event{{ID: "e1"}})

	select {
	case <-ch:
		t.Fatal("should not receive events for different instance")
	case <-time.After(100 * time.Millisecond):
		// ok, no message received
	}
}

func TestEventPubSub_FirehoseSeesAllInstances(t *testing.T) {
	ps := NewEventPubSub()

	ch, unsub := ps.Subscribe(allInstances)
	defer unsub()

	ps.Publish("inst-1", []telemetry.Event{{ID: "e1"}})
	ps.Publish("inst-2", []telemetry.Event{{ID: "e2"}})

	var seen []string
	for len(seen) < 2 {
		select {
		case got := <-ch:
			for _, e := range got {
				seen = append(seen, e.ID)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out, saw %v", seen)
		}
	}
}

func TestEventPubSub_Unsubscribe(t *testing.T) {
	ps := NewEventPubSub()

	ch, unsub := ps.Subscribe("inst-1")
	unsub()

	ps.Publish("inst-1", []telemetry.Event{{ID: "e1"}})

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("channel should be closed after unsubscribe")
		}
	case <-time.After(100 * time.Millisecond):
		// ok, channel closed or no message
	}
}

func TestEventPubSub_MultipleSubscribers(t *testing.T) {
	ps := NewEventPubSub()

	ch1, unsub1 := ps.Subscribe("inst-1")
	defer unsub1()
	ch2, unsub2 := ps.Subscribe("inst-1")
	defer unsub2()

	ps.Publish("inst-1", []telemetry.Event{{ID: "e1"}})

	for i, ch := range []<-chan []telemetry.Event{ch1, ch2} {
		select {
		case got := <-ch:
			if len(got) != 1 {
				t.Errorf("subscriber %d: unexpected events: %+v", i, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: timed out", i)
		}
	}
}
