package creds

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wethinkt/go-nudge/internal/nudgelog"
)

// Watcher caches the credentials file and re-reads it when it changes on
// disk, so logging in (or a token landing from another process) flips the
// connection state without restarting the editor. It implements the
// controllers' ConnectionState contract.
type Watcher struct {
	path string
	fsw  *fsnotify.Watcher
	done chan struct{}

	mu    sync.Mutex
	creds Credentials
	valid bool
	subs  []*changeSub
}

type changeSub struct {
	fn func()
}

// NewWatcher loads the credentials at path and starts watching its parent
// directory. The directory is watched rather than the file so create and
// remove are seen too.
func NewWatcher(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create credentials watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch credentials dir: %w", err)
	}

	w := &Watcher{
		path: path,
		fsw:  fsw,
		done: make(chan struct{}),
	}
	w.reload()
	go w.watchLoop()
	return w, nil
}

// Valid reports whether the cached credentials are currently usable.
// Expiry is evaluated against the clock on every call, so a token can go
// stale between file events.
func (w *Watcher) Valid() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.creds.Valid(time.Now())
}

// Token returns the cached bearer token, "" when none.
func (w *Watcher) Token() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.creds.Token
}

// OnChange registers a callback for validity flips. Call the returned
// function to unsubscribe.
func (w *Watcher) OnChange(fn func()) func() {
	sub := &changeSub{fn: fn}

	w.mu.Lock()
	w.subs = append(w.subs, sub)
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		for i, s := range w.subs {
			if s == sub {
				w.subs = append(w.subs[:i], w.subs[i+1:]...)
				break
			}
		}
	}
}

// ForceRefresh re-reads the file immediately and notifies on a validity
// flip.
func (w *Watcher) ForceRefresh() {
	if w.reload() {
		w.notify()
	}
}

// Close stops the watcher. The cached state stays readable.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

// reload re-reads the file and reports whether validity flipped.
func (w *Watcher) reload() bool {
	c, err := Load(w.path)
	if err != nil {
		nudgelog.Log.Warn("Failed to load credentials", "path", w.path, "error", err)
		c = Credentials{}
	}
	valid := c.Valid(time.Now())

	w.mu.Lock()
	defer w.mu.Unlock()
	flipped := valid != w.valid
	w.creds = c
	w.valid = valid
	return flipped
}

func (w *Watcher) notify() {
	w.mu.Lock()
	subs := make([]*changeSub, len(w.subs))
	copy(subs, w.subs)
	w.mu.Unlock()

	for _, s := range subs {
		s.fn()
	}
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Name != w.path {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			nudgelog.Log.Debug("Credentials file changed", "op", ev.Op.String())
			if w.reload() {
				w.notify()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			nudgelog.Log.Warn("Credentials watcher error", "error", err)
		}
	}
}
