// Package track turns raw host-editor events into a deduplicated stream of
// line-selection changes. Everything downstream (hint and gutter
// controllers) consumes this stream instead of raw host events.
package track

import (
	"sync"

	"github.com/wethinkt/go-nudge/internal/editor"
	"github.com/wethinkt/go-nudge/internal/nudgelog"
)

// LineTracker owns the identity of the tracked editor and its current
// line selections. Handlers are cheap and synchronous; subscribers run on
// the calling goroutine, so per-subscriber event order matches handler
// call order.
type LineTracker struct {
	mu        sync.Mutex
	ed        editor.Editor
	sels      []editor.LineSelection
	suspended bool
	ready     bool

	subs     []*subscriber
	readyFns []func()
}

type subscriber struct {
	fn func(editor.LinesChangeEvent)
}

// NewLineTracker creates an idle tracker. Call Ready once the host has
// delivered its initial editor state; consumers must not render before
// that.
func NewLineTracker() *LineTracker {
	return &LineTracker{}
}

// Subscribe registers a callback for lines-change events. Delivery is
// synchronous on the goroutine that invoked the handler. Call the returned
// function to unsubscribe.
func (t *LineTracker) Subscribe(fn func(editor.LinesChangeEvent)) func() {
	sub := &subscriber{fn: fn}

	t.mu.Lock()
	t.subs = append(t.subs, sub)
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, s := range t.subs {
			if s == sub {
				t.subs = append(t.subs[:i], t.subs[i+1:]...)
				break
			}
		}
	}
}

// HandleEditorChanged records a new active editor. Identical editors (by
// ==, including nil to nil) are ignored; otherwise selections are
// recomputed from the new editor and an editor-sourced event is emitted.
func (t *LineTracker) HandleEditorChanged(e editor.Editor) {
	t.mu.Lock()
	if t.ed == e {
		t.mu.Unlock()
		return
	}
	t.ed = e
	t.sels = editor.LineSelections(e)
	ev, notify := t.eventLocked(editor.ReasonEditor)
	t.mu.Unlock()

	nudgelog.Log.Debug("Tracked editor changed", "has_editor", e != nil)
	if notify {
		t.emit(ev)
	}
}

// HandleSelectionChanged records a selection move. Events for a different,
// non-file editor are dropped. Events that leave the tracked editor and
// line selections unchanged are deduplicated. A selection event for a
// different file editor retracks onto it.
func (t *LineTracker) HandleSelectionChanged(e editor.Editor, sels []editor.Selection) {
	t.mu.Lock()
	if e != t.ed && !editor.IsTextEditor(e) {
		t.mu.Unlock()
		return
	}

	lineSels := reduce(sels)
	if e == t.ed && editor.SameLines(lineSels, t.sels) {
		t.mu.Unlock()
		return
	}

	t.ed = e
	t.sels = lineSels
	ev, notify := t.eventLocked(editor.ReasonSelection)
	t.mu.Unlock()

	if notify {
		t.emit(ev)
	}
}

// HandleDocumentChanged records a content edit. It only applies when the
// document is the tracked editor's and at least one content change
// occurred; selections are then recomputed from the editor and a
// content-sourced event is emitted without deduplication.
func (t *LineTracker) HandleDocumentChanged(doc editor.Document, contentChanges int) {
	t.mu.Lock()
	if t.ed == nil || doc == nil || contentChanges < 1 || t.ed.Document() != doc {
		t.mu.Unlock()
		return
	}
	t.sels = editor.LineSelections(t.ed)
	ev, notify := t.eventLocked(editor.ReasonContent)
	t.mu.Unlock()

	if notify {
		t.emit(ev)
	}
}

// Includes reports whether the given selection set structurally matches
// the tracked one. Controllers use it to detect stale render passes.
func (t *LineTracker) Includes(sels []editor.LineSelection) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return editor.SameLines(t.sels, sels)
}

// IncludesLine reports whether any tracked selection involves the line.
// With activeOnly, only the active caret line counts; otherwise the full
// anchor-to-active span does, regardless of direction.
func (t *LineTracker) IncludesLine(line int, activeOnly bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.sels {
		if s.Active == line {
			return true
		}
		if !activeOnly && s.ContainsLine(line) {
			return true
		}
	}
	return false
}

// Editor returns the tracked editor, or nil.
func (t *LineTracker) Editor() editor.Editor {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ed
}

// Selections returns a copy of the tracked line selections.
func (t *LineTracker) Selections() []editor.LineSelection {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sels == nil {
		return nil
	}
	out := make([]editor.LineSelection, len(t.sels))
	copy(out, t.sels)
	return out
}

// Ready marks the tracker ready and fires pending OnReady callbacks.
// Only the first call has any effect.
func (t *LineTracker) Ready() {
	t.mu.Lock()
	if t.ready {
		t.mu.Unlock()
		return
	}
	t.ready = true
	fns := t.readyFns
	t.readyFns = nil
	t.mu.Unlock()

	nudgelog.Log.Debug("Line tracker ready")
	for _, fn := range fns {
		fn()
	}
}

// IsReady reports whether Ready has been called.
func (t *LineTracker) IsReady() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ready
}

// OnReady registers a callback for the readiness signal. If the tracker is
// already ready the callback runs immediately.
func (t *LineTracker) OnReady(fn func()) {
	t.mu.Lock()
	if !t.ready {
		t.readyFns = append(t.readyFns, fn)
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()
	fn()
}

// Suspend suppresses event emission. Handlers keep updating tracked state
// while suspended.
func (t *LineTracker) Suspend() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.suspended = true
}

// Resume re-enables event emission.
func (t *LineTracker) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.suspended = false
}

// eventLocked builds the notification for the current state. The tracker
// mutex must be held.
func (t *LineTracker) eventLocked(reason editor.Reason) (editor.LinesChangeEvent, bool) {
	ev := editor.LinesChangeEvent{
		Editor:     t.ed,
		Selections: t.sels,
		Reason:     reason,
	}
	return ev, !t.suspended
}

// emit fans the event out to subscribers. Called without the mutex so
// handlers may call back into the tracker.
func (t *LineTracker) emit(ev editor.LinesChangeEvent) {
	t.mu.Lock()
	subs := make([]*subscriber, len(t.subs))
	copy(subs, t.subs)
	t.mu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}

func reduce(sels []editor.Selection) []editor.LineSelection {
	if len(sels) == 0 {
		return nil
	}
	out := make([]editor.LineSelection, len(sels))
	for i, s := range sels {
		out[i] = s.Lines()
	}
	return out
}
