// Package tui implements the reference editor host: a terminal line
// editor that feeds cursor and content events into the nudge engine and
// renders the engine's hint and gutter decorations. It is the demo
// surface for the onboarding tutorial, not a general-purpose editor.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/wethinkt/go-nudge/internal/annotate"
	"github.com/wethinkt/go-nudge/internal/config"
	"github.com/wethinkt/go-nudge/internal/creds"
	"github.com/wethinkt/go-nudge/internal/editor"
	"github.com/wethinkt/go-nudge/internal/nudgelog"
	"github.com/wethinkt/go-nudge/internal/suggest"
	"github.com/wethinkt/go-nudge/internal/telemetry"
	"github.com/wethinkt/go-nudge/internal/track"
	"github.com/wethinkt/go-nudge/internal/tutorial"
)

// Host wires the engine for the demo editor: tracker, suggestion
// service, tutorial machine, controllers, credentials watcher, and
// telemetry shipping.
type Host struct {
	cfg      config.Config
	tracker  *track.LineTracker
	svc      *suggest.Service
	machine  *tutorial.Machine
	tips     *telemetry.TipCounter
	conn     annotate.ConnectionState
	watcher  *creds.Watcher
	shipper  *telemetry.CollectorEmitter
	annot    *annotate.AnnotationController
	gutter   *annotate.GutterController
	surfaces *uiSurfaces

	editors []*editor.MemEditor
	paths   []string

	unsubs []func()
}

// staticConn is the connection state for the offline words provider,
// which needs no credentials.
type staticConn struct{ valid bool }

func (c staticConn) Valid() bool            { return c.valid }
func (c staticConn) OnChange(func()) func() { return func() {} }

// hostCounters joins the suggestion service counters with the tips-page
// counter to satisfy tutorial.Counters.
type hostCounters struct {
	svc  *suggest.Service
	tips *telemetry.TipCounter
}

func (c hostCounters) AcceptedCount() int     { return c.svc.AcceptedCount() }
func (c hostCounters) ValidTriggerCount() int { return c.svc.ValidTriggerCount() }
func (c hostCounters) TipPageViews() int      { return c.tips.Views() }

// NewHost builds the engine around the given files. Missing files open
// as empty buffers; no paths opens a single scratch buffer.
func NewHost(cfg config.Config, paths []string) (*Host, error) {
	if len(paths) == 0 {
		paths = []string{"scratch.txt"}
	}

	h := &Host{
		cfg:      cfg,
		tracker:  track.NewLineTracker(),
		surfaces: newUISurfaces(),
		paths:    paths,
	}

	for _, p := range paths {
		text := ""
		if data, err := os.ReadFile(p); err == nil {
			text = strings.TrimSuffix(string(data), "\n")
		}
		h.editors = append(h.editors, editor.NewMemEditor(filepath.Base(p), editor.KindFile, text))
	}

	dir, err := config.Dir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}

	// Provider and connection state
	switch cfg.Provider.Kind {
	case "http":
		watcher, err := creds.NewWatcher(creds.Path(dir))
		if err != nil {
			nudgelog.Log.Warn("Credentials watcher failed, assuming valid", "error", err)
			h.conn = staticConn{valid: true}
		} else {
			h.watcher = watcher
			h.conn = watcher
		}
		token := ""
		if h.watcher != nil {
			token = h.watcher.Token()
		}
		h.svc = suggest.NewService(suggest.NewHTTPProvider(suggest.HTTPProviderConfig{
			URL:        cfg.Provider.URL,
			Model:      cfg.Provider.Model,
			Token:      token,
			MaxResults: cfg.Provider.MaxResults,
		}), cfg.Provider.TimeoutDuration())
	default:
		// The offline provider needs no credentials.
		h.conn = staticConn{valid: true}
		h.svc = suggest.NewService(&suggest.WordsProvider{MaxResults: cfg.Provider.MaxResults},
			cfg.Provider.TimeoutDuration())
	}

	tipsPath, err := config.TipViewsPath()
	if err != nil {
		return nil, err
	}
	h.tips = telemetry.NewTipCounter(tipsPath)

	var store tutorial.Store
	if cfg.Tutorial.Persist {
		statePath, err := config.TutorialStatePath()
		if err != nil {
			return nil, err
		}
		store = tutorial.NewFileStore(statePath)
	}
	h.machine = tutorial.NewMachine(hostCounters{svc: h.svc, tips: h.tips}, store)

	emitter := h.buildEmitter()

	if cfg.Tutorial.Enabled {
		h.annot = annotate.NewAnnotationController(annotate.AnnotationConfig{
			Tracker:      h.tracker,
			Machine:      h.machine,
			Suggestions:  h.svc,
			Connection:   h.conn,
			Surface:      h.surfaces,
			Emitter:      emitter,
			RefreshDelay: cfg.Engine.RefreshDebounceDuration(),
		})
	}
	h.gutter = annotate.NewGutterController(annotate.GutterConfig{
		Tracker:     h.tracker,
		Suggestions: h.svc,
		Surface:     h.surfaces,
	})

	// Mirror suggestion actions and connection flips into the UI loop.
	h.unsubs = append(h.unsubs,
		h.svc.Subscribe(func(a suggest.Action) {
			h.surfaces.send(suggestionMsg{action: a})
		}),
		h.conn.OnChange(func() {
			h.surfaces.send(connMsg{valid: h.conn.Valid()})
		}),
	)

	return h, nil
}

// buildEmitter assembles the telemetry pipeline: always the log sink,
// plus collector shipping when enabled.
func (h *Host) buildEmitter() telemetry.Emitter {
	emitters := telemetry.MultiEmitter{telemetry.LogEmitter{}}
	if h.cfg.Collector.Enabled && h.cfg.Collector.URL != "" {
		h.shipper = telemetry.NewCollectorEmitter(telemetry.CollectorEmitterConfig{
			URL:        h.cfg.Collector.URL,
			Token:      h.cfg.Collector.Token,
			InstanceID: instanceID(),
			SessionID:  uuid.NewString(),
		})
		emitters = append(emitters, h.shipper)
	}
	return emitters
}

// instanceID returns the per-installation id, creating it on first use.
func instanceID() string {
	dir, err := config.Dir()
	if err != nil {
		return uuid.NewString()
	}
	path := filepath.Join(dir, "instance_id")
	if data, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}
	id := uuid.NewString()
	if err := os.MkdirAll(dir, 0755); err == nil {
		_ = os.WriteFile(path, []byte(id+"\n"), 0644)
	}
	return id
}

// Run starts the engine and blocks in the bubbletea loop until quit.
func (h *Host) Run() error {
	if h.annot != nil {
		h.annot.Start()
	}
	h.gutter.Start()

	h.tracker.HandleEditorChanged(h.editors[0])
	h.tracker.Ready()

	p := tea.NewProgram(newModel(h))
	_, err := p.Run()
	h.Close()
	return err
}

// Close detaches the controllers and flushes telemetry.
func (h *Host) Close() {
	if h.annot != nil {
		h.annot.Dispose()
	}
	h.gutter.Dispose()
	for _, unsub := range h.unsubs {
		unsub()
	}
	h.unsubs = nil
	if h.watcher != nil {
		h.watcher.Close()
	}
	if h.shipper != nil {
		h.shipper.Close()
	}
}
