package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/wethinkt/go-nudge/internal/nudgelog"
)

const (
	shipTimeout      = 10 * time.Second
	defaultQueueSize = 256
	defaultBatchMax  = 64
	defaultFlushTick = 3 * time.Second
)

// CollectorEmitterConfig configures shipping to a nudge collector.
type CollectorEmitterConfig struct {
	// URL is the collector base URL (e.g. "http://localhost:8790").
	URL string

	// Token is sent as a bearer token when non-empty.
	Token string

	// InstanceID stamps events missing one.
	InstanceID string

	// SessionID stamps events missing one.
	SessionID string

	// QueueSize bounds the in-memory queue; events beyond it are dropped.
	QueueSize int

	// FlushEvery is the background flush interval.
	FlushEvery time.Duration
}

// CollectorEmitter batches events and POSTs them to a collector in the
// background. Emit never blocks: when the queue is full the event is
// dropped and counted.
type CollectorEmitter struct {
	cfg    CollectorEmitterConfig
	client *http.Client

	ch   chan Event
	done chan struct{}
	wg   sync.WaitGroup
}

// eventsPayload is the wire format for POST /v1/events.
type eventsPayload struct {
	InstanceID string  `json:"instance_id,omitempty"`
	SessionID  string  `json:"session_id,omitempty"`
	Events     []Event `json:"events"`
}

// NewCollectorEmitter creates the emitter and starts its flush loop.
// Call Close to flush and stop it.
func NewCollectorEmitter(cfg CollectorEmitterConfig) *CollectorEmitter {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.FlushEvery <= 0 {
		cfg.FlushEvery = defaultFlushTick
	}

	e := &CollectorEmitter{
		cfg:    cfg,
		client: &http.Client{Timeout: shipTimeout},
		ch:     make(chan Event, cfg.QueueSize),
		done:   make(chan struct{}),
	}
	e.wg.Add(1)
	go e.flushLoop()
	return e
}

// Emit queues the event. It never blocks; a full queue drops the event.
func (e *CollectorEmitter) Emit(ev Event) error {
	if ev.InstanceID == "" {
		ev.InstanceID = e.cfg.InstanceID
	}
	if ev.SessionID == "" {
		ev.SessionID = e.cfg.SessionID
	}

	select {
	case e.ch <- ev:
		return nil
	default:
		droppedEventsTotal.Inc()
		nudgelog.Log.Debug("Telemetry queue full, dropping event", "name", ev.Name)
		return nil
	}
}

// Close flushes pending events and stops the loop.
func (e *CollectorEmitter) Close() error {
	close(e.done)
	e.wg.Wait()
	return nil
}

func (e *CollectorEmitter) flushLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.FlushEvery)
	defer ticker.Stop()

	var batch []Event
	flush := func() {
		if len(batch) == 0 {
			return
		}
		e.ship(batch)
		batch = nil
	}

	for {
		select {
		case ev := <-e.ch:
			batch = append(batch, ev)
			if len(batch) >= defaultBatchMax {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-e.done:
			// Drain what is already queued, then final flush.
			for {
				select {
				case ev := <-e.ch:
					batch = append(batch, ev)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (e *CollectorEmitter) ship(events []Event) {
	body, err := json.Marshal(eventsPayload{
		InstanceID: e.cfg.InstanceID,
		SessionID:  e.cfg.SessionID,
		Events:     events,
	})
	if err != nil {
		nudgelog.Log.Error("Failed to marshal telemetry batch", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shipTimeout)
	defer cancel()

	url := strings.TrimSuffix(e.cfg.URL, "/") + "/v1/events"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		nudgelog.Log.Error("Failed to create telemetry request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.Token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		nudgelog.Log.Warn("Telemetry ship failed", "events", len(events), "error", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		nudgelog.Log.Warn("Collector rejected telemetry batch",
			"status", resp.StatusCode, "events", len(events))
		return
	}
	shippedEventsTotal.Add(float64(len(events)))
	nudgelog.Log.Debug("Shipped telemetry batch", "events", len(events))
}

// Ping checks collector reachability.
func (e *CollectorEmitter) Ping(ctx context.Context) error {
	url := strings.TrimSuffix(e.cfg.URL, "/") + "/v1/collector/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}
	if e.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.Token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("ping collector: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("collector unhealthy: %d", resp.StatusCode)
	}
	return nil
}
