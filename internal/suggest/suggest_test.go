package suggest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wethinkt/go-nudge/internal/editor"
)

type fakeProvider struct {
	resp  *Response
	err   error
	block chan struct{} // Fetch waits on this when non-nil
}

func (p *fakeProvider) Fetch(ctx context.Context, req Request) (*Response, error) {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.resp, p.err
}

func waitAction(t *testing.T, ch <-chan Action, kind ActionKind) Action {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case a := <-ch:
			if a.Kind == kind {
				return a
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q action", kind)
		}
	}
}

func TestRequestCompletesAndCountsValidTrigger(t *testing.T) {
	provider := &fakeProvider{resp: &Response{
		Recommendations: []Recommendation{{Text: "Items()"}, {Text: "All()"}},
	}}
	svc := NewService(provider, time.Second)

	events := make(chan Action, 8)
	svc.Subscribe(func(a Action) { events <- a })

	ed := editor.NewMemEditor("main.go", editor.KindFile, "proc")
	if !svc.Request(context.Background(), ed, Request{Trigger: TriggerAuto}) {
		t.Fatal("request should dispatch")
	}

	waitAction(t, events, ActionStarted)
	done := waitAction(t, events, ActionCompleted)

	if done.RecommendationCount() != 2 {
		t.Fatalf("got %d recommendations, want 2", done.RecommendationCount())
	}
	if svc.ValidTriggerCount() != 1 {
		t.Fatalf("got %d valid triggers, want 1", svc.ValidTriggerCount())
	}
	if svc.TotalTriggerCount() != 1 {
		t.Fatalf("got %d total triggers, want 1", svc.TotalTriggerCount())
	}
	if svc.RecommendationCount() != 2 {
		t.Fatalf("got %d shown, want 2", svc.RecommendationCount())
	}
	if svc.Running() {
		t.Fatal("service should be idle after completion")
	}
}

func TestSecondRequestDroppedWhileRunning(t *testing.T) {
	provider := &fakeProvider{
		resp:  &Response{Recommendations: []Recommendation{{Text: "x"}}},
		block: make(chan struct{}),
	}
	svc := NewService(provider, time.Second)

	events := make(chan Action, 8)
	svc.Subscribe(func(a Action) { events <- a })

	if !svc.Request(context.Background(), nil, Request{Trigger: TriggerAuto}) {
		t.Fatal("first request should dispatch")
	}
	if !svc.Running() {
		t.Fatal("service should be running")
	}
	if svc.Request(context.Background(), nil, Request{Trigger: TriggerOnDemand}) {
		t.Fatal("second request should be dropped while one is in flight")
	}

	close(provider.block)
	waitAction(t, events, ActionCompleted)

	if svc.TotalTriggerCount() != 1 {
		t.Fatalf("got %d total triggers, want 1: dropped requests must not count", svc.TotalTriggerCount())
	}
}

func TestFailedRequestDoesNotCountValid(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	svc := NewService(provider, time.Second)

	events := make(chan Action, 8)
	svc.Subscribe(func(a Action) { events <- a })

	svc.Request(context.Background(), nil, Request{Trigger: TriggerOnDemand})
	done := waitAction(t, events, ActionCompleted)

	if done.Err == nil {
		t.Fatal("completed action should carry the error")
	}
	if done.Response != nil {
		t.Fatal("failed action should carry no response")
	}
	if svc.ValidTriggerCount() != 0 {
		t.Fatalf("got %d valid triggers, want 0", svc.ValidTriggerCount())
	}
	if svc.RecommendationCount() != 0 {
		t.Fatal("nothing should be shown after a failure")
	}
}

func TestEmptyResponseIsNotValidTrigger(t *testing.T) {
	provider := &fakeProvider{resp: &Response{}}
	svc := NewService(provider, time.Second)

	events := make(chan Action, 8)
	svc.Subscribe(func(a Action) { events <- a })

	svc.Request(context.Background(), nil, Request{Trigger: TriggerAuto})
	waitAction(t, events, ActionCompleted)

	if svc.ValidTriggerCount() != 0 {
		t.Fatalf("got %d valid triggers, want 0 for an empty response", svc.ValidTriggerCount())
	}
}

func TestAcceptConsumesShownAndCounts(t *testing.T) {
	provider := &fakeProvider{resp: &Response{
		Recommendations: []Recommendation{{Text: "first"}, {Text: "second"}},
	}}
	svc := NewService(provider, time.Second)

	events := make(chan Action, 8)
	svc.Subscribe(func(a Action) { events <- a })

	svc.Request(context.Background(), nil, Request{})
	waitAction(t, events, ActionCompleted)

	rec, ok := svc.Accept(nil)
	if !ok || rec.Text != "first" {
		t.Fatalf("got %+v %v, want the primary recommendation", rec, ok)
	}
	waitAction(t, events, ActionAccepted)

	if svc.AcceptedCount() != 1 {
		t.Fatalf("got %d accepted, want 1", svc.AcceptedCount())
	}
	if svc.RecommendationCount() != 0 {
		t.Fatal("accepting should clear shown recommendations")
	}
	if _, ok := svc.Accept(nil); ok {
		t.Fatal("accept with nothing shown should report false")
	}
}

func TestDismissShownClearsWithoutCounting(t *testing.T) {
	provider := &fakeProvider{resp: &Response{
		Recommendations: []Recommendation{{Text: "x"}},
	}}
	svc := NewService(provider, time.Second)

	events := make(chan Action, 8)
	svc.Subscribe(func(a Action) { events <- a })

	svc.Request(context.Background(), nil, Request{})
	waitAction(t, events, ActionCompleted)

	svc.DismissShown()
	if svc.RecommendationCount() != 0 {
		t.Fatal("dismiss should clear shown recommendations")
	}
	if svc.AcceptedCount() != 0 {
		t.Fatal("dismiss must not count as acceptance")
	}
}

func TestUnsubscribeStopsActionDelivery(t *testing.T) {
	provider := &fakeProvider{resp: &Response{}}
	svc := NewService(provider, time.Second)

	events := make(chan Action, 8)
	unsub := svc.Subscribe(func(a Action) { events <- a })
	unsub()

	svc.Request(context.Background(), nil, Request{})

	// Drain with a short window: nothing should arrive.
	select {
	case a := <-events:
		t.Fatalf("got %q action after unsubscribe", a.Kind)
	case <-time.After(100 * time.Millisecond):
	}
}
