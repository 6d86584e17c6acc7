// Package annotate drives the two render surfaces: the end-of-line tutorial
// hint and the gutter activity indicator. Controllers subscribe to the line
// tracker and the suggestion service, debounce bursts, and re-validate
// against the tracker before every write so a stale pass never paints.
package annotate

import (
	"sync"
	"time"
)

// DefaultRefreshDelay is the debounce interval for tracker-driven
// refreshes. Matches typing cadence: long enough to coalesce a burst of
// caret movement, short enough to feel immediate.
const DefaultRefreshDelay = 250 * time.Millisecond

// Debouncer coalesces bursts of calls: only the latest call's function
// runs, after the delay. Every call bumps a generation; a timer that fires
// for a superseded generation does nothing, which closes the window where
// Stop races an already-fired timer.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	gen   uint64
	timer *time.Timer
}

// NewDebouncer creates a debouncer. A non-positive delay falls back to
// DefaultRefreshDelay.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultRefreshDelay
	}
	return &Debouncer{delay: delay}
}

// Call schedules fn to run after the delay, superseding any pending call.
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
