package tutorial

import (
	"sync"

	"github.com/wethinkt/go-nudge/internal/editor"
	"github.com/wethinkt/go-nudge/internal/nudgelog"
)

// tipPageViewTarget is how many tips-page views TryMoreEx expects before it
// considers the page "seen". The exit comparison below is kept exactly as
// shipped: a view count still under the target exits the tutorial.
const tipPageViewTarget = 1

// EventData is the per-evaluation input: what caused the refresh and what
// the suggestion pipeline looked like at that moment.
type EventData struct {
	// Source says what prompted the refresh. Tracker events carry their
	// reason; suggestion-service callbacks use ReasonSuggestion.
	Source editor.Reason

	// AtLineEnd reports whether the primary caret sits at the end of its
	// line.
	AtLineEnd bool

	// Running reports whether a suggestion request is in flight.
	Running bool

	// RecommendationCount is the size of the most recent suggestion
	// response, 0 when none.
	RecommendationCount int
}

// Counters exposes the process-wide counters the machine compares against.
// The suggestion service provides the first two; the tips-page counter
// provides the third.
type Counters interface {
	// AcceptedCount is the cumulative number of accepted suggestions.
	AcceptedCount() int

	// ValidTriggerCount is the cumulative number of triggers that
	// returned at least one recommendation.
	ValidTriggerCount() int

	// TipPageViews is the cumulative number of tips-page opens.
	TipPageViews() int
}

// Store persists tutorial progress across sessions. Optional: with no
// store the machine lives and dies with the process.
type Store interface {
	// LoadState returns the persisted state and whether one was found.
	LoadState() (State, bool)

	// SaveState persists the state.
	SaveState(State) error
}

// Machine holds the tutorial position plus the snapshots and flags the
// transitions compare against. All shared counter state lives here, passed
// around by reference; nothing is package-global. Safe for concurrent use.
type Machine struct {
	mu       sync.Mutex
	counters Counters
	store    Store
	state    State

	// acceptedSnapshot is the accepted-suggestion count as of the last
	// Autotrigger or PressTab render. Comparison happens before refresh,
	// so an acceptance between two evaluations is always caught.
	acceptedSnapshot int

	// Manualtrigger gate. Both reset on entry and stick once set.
	hasManualTrigger bool
	hasValidResponse bool

	// TryMoreEx entry snapshots.
	triggerSnapshot int
	pageViewFloor   int
}

// NewMachine creates a machine in Start, or in the persisted state when
// store is non-nil and has one. store may be nil.
func NewMachine(counters Counters, store Store) *Machine {
	m := &Machine{
		counters:         counters,
		store:            store,
		state:            StateStart,
		acceptedSnapshot: counters.AcceptedCount(),
	}
	if store != nil {
		if s, ok := store.LoadState(); ok && s.valid() {
			m.state = s
			if s == StateTryMoreEx {
				// Re-enter so the exit comparisons have fresh snapshots.
				m.enterLocked(s)
			}
		}
	}
	return m
}

// Current returns the machine's state.
func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Done reports whether the tutorial is over.
func (m *Machine) Done() bool {
	return m.Current() == StateEnd
}

// Evaluate applies one refresh: runs the transition for the current state,
// performs entry bookkeeping on a state change, and returns the
// post-transition state with its hint text. Empty text means nothing to
// show (Start, End, or a suppressed Manualtrigger).
func (m *Machine) Evaluate(d EventData) (State, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.transitionLocked(d)
	if next != m.state {
		nudgelog.Log.Debug("Tutorial transition",
			"from", m.state, "to", next, "source", d.Source)
		m.enterLocked(next)
		m.state = next
		m.persistLocked()
	}

	text := m.textLocked()

	// Autotrigger's acceptance snapshot tracks the latest render.
	if m.state == StateAutotrigger || m.state == StatePressTab {
		m.acceptedSnapshot = m.counters.AcceptedCount()
	}

	return m.state, text
}

// NoteSuggestionAction records an observed suggestion action for the
// Manualtrigger gate. onDemand marks a user-invoked trigger;
// recommendations is the response size (0 for failures). Only actions seen
// while in Manualtrigger count; both flags stick once set.
func (m *Machine) NoteSuggestionAction(onDemand bool, recommendations int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateManualtrigger || !onDemand {
		return
	}
	m.hasManualTrigger = true
	if recommendations > 0 {
		m.hasValidResponse = true
	}
}

// Dismiss forces the machine into End. This is the "[ESC] to exit"
// affordance; it is permanent.
func (m *Machine) Dismiss() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateEnd {
		return
	}
	nudgelog.Log.Info("Tutorial dismissed", "from", m.state)
	m.state = StateEnd
	m.persistLocked()
}

// transitionLocked computes the next state for one event. It mutates
// nothing; entry bookkeeping happens in enterLocked.
func (m *Machine) transitionLocked(d EventData) State {
	switch m.state {
	case StateStart:
		if d.AtLineEnd {
			return StateAutotrigger
		}
		return StateStart

	case StateAutotrigger, StatePressTab:
		// PressTab has no rules of its own: it re-runs Autotrigger's,
		// which is why ordinary edits drop it back to Autotrigger.
		return m.autotriggerNextLocked(d)

	case StateManualtrigger:
		if m.hasManualTrigger && m.hasValidResponse && d.Source == editor.ReasonSelection {
			return StateTryMoreEx
		}
		return StateManualtrigger

	case StateTryMoreEx:
		// Exit on a fresh valid trigger, or when the tips page has been
		// viewed fewer times than the floor captured at entry. The
		// second comparison is deliberately kept as shipped.
		if m.counters.ValidTriggerCount() > m.triggerSnapshot ||
			m.counters.TipPageViews() < m.pageViewFloor {
			return StateEnd
		}
		return StateTryMoreEx

	case StateEnd:
		return StateEnd
	}
	return m.state
}

func (m *Machine) autotriggerNextLocked(d EventData) State {
	if m.counters.AcceptedCount() > m.acceptedSnapshot {
		return StateManualtrigger
	}
	if d.Source == editor.ReasonSuggestion && !d.Running && d.RecommendationCount > 0 {
		return StatePressTab
	}
	return StateAutotrigger
}

// enterLocked runs entry bookkeeping for a state being entered.
func (m *Machine) enterLocked(next State) {
	switch next {
	case StateManualtrigger:
		m.hasManualTrigger = false
		m.hasValidResponse = false
	case StateTryMoreEx:
		m.triggerSnapshot = m.counters.ValidTriggerCount()
		m.pageViewFloor = tipPageViewTarget
	}
}

func (m *Machine) textLocked() string {
	switch m.state {
	case StateAutotrigger:
		return autotriggerHint()
	case StatePressTab:
		return pressTabHint()
	case StateManualtrigger:
		if m.hasManualTrigger && m.hasValidResponse {
			// Both gates passed: hide the hint until the selection
			// event completes the transition, so it doesn't flash.
			return ""
		}
		return manualTriggerHint()
	case StateTryMoreEx:
		return tryMoreHint()
	}
	return ""
}

func (m *Machine) persistLocked() {
	if m.store == nil {
		return
	}
	if err := m.store.SaveState(m.state); err != nil {
		nudgelog.Log.Warn("Failed to persist tutorial state", "error", err)
	}
}
