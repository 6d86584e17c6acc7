package annotate

import (
	"sync"

	"github.com/wethinkt/go-nudge/internal/editor"
	"github.com/wethinkt/go-nudge/internal/suggest"
	"github.com/wethinkt/go-nudge/internal/track"
)

// GutterConfig wires a GutterController.
type GutterConfig struct {
	Tracker     *track.LineTracker
	Suggestions SuggestionSource
	Surface     editor.GutterSurface
}

// GutterController mirrors the tracker stream into the gutter activity
// indicator: the active style while a suggestion request is in flight, the
// idle style otherwise. No debounce and no state machine; the indicator is
// the "thinking" light and has to move with the caret immediately.
type GutterController struct {
	tracker *track.LineTracker
	sugg    SuggestionSource
	surface editor.GutterSurface

	mu         sync.Mutex
	lastEditor editor.Editor
	stopped    bool
	unsubs     []func()
}

// NewGutterController creates the controller. Call Start to attach it.
func NewGutterController(cfg GutterConfig) *GutterController {
	return &GutterController{
		tracker: cfg.Tracker,
		sugg:    cfg.Suggestions,
		surface: cfg.Surface,
	}
}

// Start subscribes to the tracker and the suggestion service and renders
// once the tracker is ready.
func (c *GutterController) Start() {
	c.mu.Lock()
	c.unsubs = append(c.unsubs,
		c.tracker.Subscribe(func(editor.LinesChangeEvent) { c.Refresh() }),
		c.sugg.Subscribe(func(suggest.Action) { c.Refresh() }),
	)
	c.mu.Unlock()

	c.tracker.OnReady(c.Refresh)
}

// Refresh runs one render pass.
func (c *GutterController) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || !c.tracker.IsReady() {
		return
	}

	ed := c.tracker.Editor()
	sels := c.tracker.Selections()
	if !editor.IsTextEditor(ed) || len(sels) == 0 {
		c.clearLocked()
		return
	}

	// The indicator never survives an editor switch.
	if c.lastEditor != nil && c.lastEditor != ed {
		c.surface.ClearGutter(c.lastEditor)
	}

	// Stale pass: the selection moved under us. The newer pass repaints.
	if !c.tracker.Includes(sels) {
		return
	}

	style := editor.GutterIdle
	if c.sugg.Running() {
		style = editor.GutterActive
	}
	c.surface.ApplyGutter(ed, sels[0].Active, style)
	c.lastEditor = ed
}

// Dispose detaches from all sources and clears the indicator.
func (c *GutterController) Dispose() {
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

func (c *GutterController) clearLocked() {
	if c.lastEditor == nil {
		return
	}
	c.surface.ClearGutter(c.lastEditor)
	c.lastEditor = nil
}
