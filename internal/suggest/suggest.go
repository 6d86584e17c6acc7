// Package suggest provides inline code suggestions: a Provider abstraction
// (remote HTTP endpoint or the offline words heuristic), and a Service that
// tracks the in-flight request, the currently shown recommendations, and
// the process-wide counters the tutorial machine compares against.
package suggest

import (
	"context"
	"sync"
	"time"

	"github.com/wethinkt/go-nudge/internal/editor"
	"github.com/wethinkt/go-nudge/internal/nudgelog"
)

// TriggerKind says how a suggestion request was initiated.
type TriggerKind string

const (
	// TriggerAuto: the engine requested on its own (typing pause, line end).
	TriggerAuto TriggerKind = "auto"

	// TriggerOnDemand: the user asked explicitly (manual trigger key).
	TriggerOnDemand TriggerKind = "on_demand"
)

// Recommendation is one completion candidate.
type Recommendation struct {
	// Text is inserted at the caret verbatim when accepted.
	Text string `json:"text"`
}

// Request carries the context a provider needs to complete at the caret.
type Request struct {
	// Path is the buffer's file path, informational for the provider.
	Path string `json:"path"`

	// Lines is the full buffer content.
	Lines []string `json:"lines"`

	// Line and Col are the zero-based caret position.
	Line int `json:"line"`
	Col  int `json:"col"`

	// Trigger says whether the user asked or the engine did.
	Trigger TriggerKind `json:"trigger"`
}

// Response is a provider's answer.
type Response struct {
	Recommendations []Recommendation `json:"recommendations"`
	Model           string           `json:"model,omitempty"`
	Latency         time.Duration    `json:"-"`
}

// Provider fetches completions. Implementations must honor ctx.
type Provider interface {
	Fetch(ctx context.Context, req Request) (*Response, error)
}

// ActionKind phases a suggestion action event.
type ActionKind string

const (
	// ActionStarted: a request was dispatched.
	ActionStarted ActionKind = "started"

	// ActionCompleted: the request finished (Response/Err set accordingly).
	ActionCompleted ActionKind = "completed"

	// ActionAccepted: the user accepted the shown recommendation.
	ActionAccepted ActionKind = "accepted"
)

// Action is the suggestion lifecycle event consumers subscribe to.
type Action struct {
	Kind     ActionKind
	Editor   editor.Editor
	Trigger  TriggerKind
	Response *Response // ActionCompleted only, nil on failure
	Err      error     // ActionCompleted only
}

// RecommendationCount returns the response size, 0 when there is none.
func (a Action) RecommendationCount() int {
	if a.Response == nil {
		return 0
	}
	return len(a.Response.Recommendations)
}

// Service runs at most one suggestion request at a time and owns the
// counters downstream consumers read. Safe for concurrent use; action
// subscribers are called from the completing goroutine.
type Service struct {
	provider Provider
	timeout  time.Duration

	mu            sync.Mutex
	running       bool
	shown         []Recommendation
	accepted      int
	totalTriggers int
	validTriggers int
	subs          []*actionSub
}

type actionSub struct {
	fn func(Action)
}

// NewService creates a service over the provider. A non-positive timeout
// defaults to 5 seconds.
func NewService(provider Provider, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{provider: provider, timeout: timeout}
}

// Subscribe registers a callback for action events. Call the returned
// function to unsubscribe.
func (s *Service) Subscribe(fn func(Action)) func() {
	sub := &actionSub{fn: fn}

	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, x := range s.subs {
			if x == sub {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
	}
}

// Running reports whether a request is in flight.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Request dispatches a suggestion request unless one is already in flight.
// Completion is asynchronous: subscribers get ActionStarted now and
// ActionCompleted when the provider answers. Returns false when dropped.
func (s *Service) Request(ctx context.Context, ed editor.Editor, req Request) bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return false
	}
	s.running = true
	s.totalTriggers++
	s.mu.Unlock()

	s.publish(Action{Kind: ActionStarted, Editor: ed, Trigger: req.Trigger})

	go func() {
		start := time.Now()
		fctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		resp, err := s.provider.Fetch(fctx, req)

		s.mu.Lock()
		s.running = false
		if err == nil && resp != nil && len(resp.Recommendations) > 0 {
			resp.Latency = time.Since(start)
			s.validTriggers++
			s.shown = resp.Recommendations
		} else {
			s.shown = nil
		}
		s.mu.Unlock()

		if err != nil {
			nudgelog.Log.Warn("Suggestion request failed",
				"trigger", req.Trigger, "error", err)
			resp = nil
		}
		s.publish(Action{
			Kind:     ActionCompleted,
			Editor:   ed,
			Trigger:  req.Trigger,
			Response: resp,
			Err:      err,
		})
	}()
	return true
}

// Accept takes the primary shown recommendation, bumps the accepted
// counter, and emits ActionAccepted. Returns false when nothing is shown.
func (s *Service) Accept(ed editor.Editor) (Recommendation, bool) {
	s.mu.Lock()
	if len(s.shown) == 0 {
		s.mu.Unlock()
		return Recommendation{}, false
	}
	rec := s.shown[0]
	s.shown = nil
	s.accepted++
	s.mu.Unlock()

	s.publish(Action{Kind: ActionAccepted, Editor: ed})
	return rec, true
}

// DismissShown drops the shown recommendations without accepting.
func (s *Service) DismissShown() {
	s.mu.Lock()
	s.shown = nil
	s.mu.Unlock()
}

// Shown returns a copy of the currently shown recommendations.
func (s *Service) Shown() []Recommendation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recommendation, len(s.shown))
	copy(out, s.shown)
	return out
}

// RecommendationCount is the number of currently shown recommendations.
func (s *Service) RecommendationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.shown)
}

// AcceptedCount is the cumulative number of accepted suggestions.
func (s *Service) AcceptedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

// ValidTriggerCount is the cumulative number of triggers that returned at
// least one recommendation.
func (s *Service) ValidTriggerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validTriggers
}

// TotalTriggerCount is the cumulative number of dispatched triggers.
func (s *Service) TotalTriggerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalTriggers
}

func (s *Service) publish(a Action) {
	s.mu.Lock()
	subs := make([]*actionSub, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(a)
	}
}
