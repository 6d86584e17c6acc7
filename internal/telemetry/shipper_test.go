package telemetry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestCollectorEmitterShipsBatchOnClose(t *testing.T) {
	var mu sync.Mutex
	var got []eventsPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/events" {
			t.Errorf("path = %q, want /v1/events", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("Authorization = %q, want Bearer secret", auth)
		}
		var p eventsPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		mu.Lock()
		got = append(got, p)
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	e := NewCollectorEmitter(CollectorEmitterConfig{
		URL:        srv.URL,
		Token:      "secret",
		InstanceID: "inst-1",
		SessionID:  "sess-1",
		FlushEvery: time.Hour, // only the close flush should fire
	})

	e.Emit(NewEvent("autotrigger", true))
	e.Emit(NewEvent("presstab", true).WithAttr("source", "test"))
	e.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("batches shipped = %d, want 1", len(got))
	}
	p := got[0]
	if p.InstanceID != "inst-1" || p.SessionID != "sess-1" {
		t.Errorf("payload ids = %q/%q, want inst-1/sess-1", p.InstanceID, p.SessionID)
	}
	if len(p.Events) != 2 {
		t.Fatalf("events in batch = %d, want 2", len(p.Events))
	}
	if p.Events[0].Name != "autotrigger" || p.Events[1].Name != "presstab" {
		t.Errorf("event names = %q, %q", p.Events[0].Name, p.Events[1].Name)
	}
	if p.Events[0].InstanceID != "inst-1" {
		t.Errorf("event instance id = %q, want inst-1", p.Events[0].InstanceID)
	}
	if p.Events[1].Attributes["source"] != "test" {
		t.Errorf("attribute source = %q, want test", p.Events[1].Attributes["source"])
	}
}

func TestCollectorEmitterNeverBlocks(t *testing.T) {
	// No server; queue of 1 fills immediately.
	e := NewCollectorEmitter(CollectorEmitterConfig{
		URL:        "http://127.0.0.1:0",
		QueueSize:  1,
		FlushEvery: time.Hour,
	})
	defer e.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			e.Emit(NewEvent("manualtrigger", true))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked on a full queue")
	}
}

func TestMultiEmitterFansOut(t *testing.T) {
	var a, b countingEmitter
	m := MultiEmitter{&a, &b}

	m.Emit(NewEvent("trymore", true))

	if a.n != 1 || b.n != 1 {
		t.Errorf("counts = %d/%d, want 1/1", a.n, b.n)
	}
}

type countingEmitter struct{ n int }

func (c *countingEmitter) Emit(Event) error {
	c.n++
	return nil
}
