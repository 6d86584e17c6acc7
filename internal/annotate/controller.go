package annotate

import (
	"sync"
	"time"

	"github.com/wethinkt/go-nudge/internal/editor"
	"github.com/wethinkt/go-nudge/internal/nudgelog"
	"github.com/wethinkt/go-nudge/internal/suggest"
	"github.com/wethinkt/go-nudge/internal/telemetry"
	"github.com/wethinkt/go-nudge/internal/track"
	"github.com/wethinkt/go-nudge/internal/tutorial"
)

// SuggestionSource is the slice of the suggestion service the controllers
// consume.
type SuggestionSource interface {
	Running() bool
	RecommendationCount() int
	Subscribe(func(suggest.Action)) func()
}

// ConnectionState reports whether the user's credentials are usable.
type ConnectionState interface {
	Valid() bool

	// OnChange registers a callback for validity changes and returns an
	// unsubscribe function.
	OnChange(func()) func()
}

// AnnotationConfig wires an AnnotationController.
type AnnotationConfig struct {
	Tracker     *track.LineTracker
	Machine     *tutorial.Machine
	Suggestions SuggestionSource
	Connection  ConnectionState
	Surface     editor.HintSurface
	Emitter     telemetry.Emitter

	// RefreshDelay is the tracker-event debounce. Zero means
	// DefaultRefreshDelay.
	RefreshDelay time.Duration
}

// AnnotationController is the only writer of the hint decoration. Tracker
// events refresh it debounced; readiness, suggestion actions, and
// connection changes refresh it immediately. Every pass re-validates
// against the tracker before painting, so a pass that resumed after the
// selection moved on aborts without touching the screen.
type AnnotationController struct {
	tracker  *track.LineTracker
	machine  *tutorial.Machine
	sugg     SuggestionSource
	conn     ConnectionState
	surface  editor.HintSurface
	emitter  telemetry.Emitter
	debounce *Debouncer

	mu         sync.Mutex
	lastEditor editor.Editor
	lastState  tutorial.State
	stopped    bool
	unsubs     []func()
}

// NewAnnotationController creates the controller. Call Start to attach it.
func NewAnnotationController(cfg AnnotationConfig) *AnnotationController {
	emitter := cfg.Emitter
	if emitter == nil {
		emitter = telemetry.NopEmitter{}
	}
	return &AnnotationController{
		tracker:   cfg.Tracker,
		machine:   cfg.Machine,
		sugg:      cfg.Suggestions,
		conn:      cfg.Connection,
		surface:   cfg.Surface,
		emitter:   emitter,
		debounce:  NewDebouncer(cfg.RefreshDelay),
		lastState: cfg.Machine.Current(),
	}
}

// Start subscribes to the tracker, the suggestion service, and the
// connection state, and schedules the initial render on tracker readiness.
func (c *AnnotationController) Start() {
	c.mu.Lock()
	c.unsubs = append(c.unsubs,
		c.tracker.Subscribe(c.onLinesChanged),
		c.sugg.Subscribe(c.onSuggestionAction),
		c.conn.OnChange(c.onConnectionChanged),
	)
	c.mu.Unlock()

	c.tracker.OnReady(func() {
		c.refreshNow(editor.ReasonEditor)
	})
}

// Refresh schedules a debounced render pass.
func (c *AnnotationController) Refresh(reason editor.Reason) {
	c.debounce.Call(func() {
		c.refreshNow(reason)
	})
}

// DismissTutorial ends the tutorial permanently and clears the hint.
func (c *AnnotationController) DismissTutorial() {
	c.machine.Dismiss()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.noteStateLocked(tutorial.StateEnd)
	c.clearLocked()
}

// Dispose detaches from all sources, cancels pending refreshes, and
// clears the decoration.
func (c *AnnotationController) Dispose() {
	c.debounce.Cancel()

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	unsubs := c.unsubs
	c.unsubs = nil
	c.clearLocked()
	c.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
}

func (c *AnnotationController) onLinesChanged(ev editor.LinesChangeEvent) {
	c.Refresh(ev.Reason)
}

func (c *AnnotationController) onSuggestionAction(a suggest.Action) {
	if !c.tracker.IsReady() {
		return
	}
	if a.Kind == suggest.ActionCompleted && a.Trigger == suggest.TriggerOnDemand {
		c.machine.NoteSuggestionAction(true, a.RecommendationCount())
	}
	c.refreshNow(editor.ReasonSuggestion)
}

func (c *AnnotationController) onConnectionChanged() {
	c.refreshNow(editor.ReasonEditor)
}

// refreshNow runs one render pass immediately.
func (c *AnnotationController) refreshNow(reason editor.Reason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderLocked(reason)
}

func (c *AnnotationController) renderLocked(reason editor.Reason) {
	if c.stopped || !c.tracker.IsReady() {
		return
	}

	// Tutorial over: nothing ever renders again.
	if c.machine.Done() {
		c.clearLocked()
		return
	}

	if !c.conn.Valid() {
		c.clearLocked()
		return
	}

	ed := c.tracker.Editor()
	sels := c.tracker.Selections()
	if !editor.IsTextEditor(ed) || len(sels) == 0 {
		c.clearLocked()
		return
	}

	// The hint never survives an editor switch.
	if c.lastEditor != nil && c.lastEditor != ed {
		c.surface.ClearHint(c.lastEditor)
	}

	// Stale pass: the selection moved while this pass was queued or a
	// handler yielded. Leave the current decoration alone; the pass for
	// the newer selection will repaint.
	if !c.tracker.Includes(sels) {
		return
	}

	running := c.sugg.Running()
	state, text := c.machine.Evaluate(tutorial.EventData{
		Source:              reason,
		AtLineEnd:           editor.AtLineEnd(ed),
		Running:             running,
		RecommendationCount: c.sugg.RecommendationCount(),
	})
	c.noteStateLocked(state)

	if text == "" {
		c.surface.ClearHint(ed)
		c.lastEditor = ed
		return
	}
	if running && state.SuppressWhileRunning() {
		telemetry.CountHintSuppression()
		c.surface.ClearHint(ed)
		c.lastEditor = ed
		return
	}

	c.surface.ApplyHint(ed, sels[0].Active, text)
	c.lastEditor = ed
	telemetry.CountHintRender(state.ID())
}

// noteStateLocked emits the transition-edge event: exactly once per state
// change, keyed by the exited state's id, skipping edges out of Start.
func (c *AnnotationController) noteStateLocked(state tutorial.State) {
	if state == c.lastState {
		return
	}
	prev := c.lastState
	c.lastState = state
	if prev == tutorial.StateStart {
		return
	}

	telemetry.CountTransition(prev.ID())
	if err := c.emitter.Emit(telemetry.NewEvent(prev.ID(), true)); err != nil {
		nudgelog.Log.Debug("Telemetry emit failed", "event", prev.ID(), "error", err)
	}
}

func (c *AnnotationController) clearLocked() {
	if c.lastEditor == nil {
		return
	}
	c.surface.ClearHint(c.lastEditor)
	c.lastEditor = nil
}
