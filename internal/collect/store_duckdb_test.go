//go:build cgo

package collect

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/wethinkt/go-nudge/internal/telemetry"
)

// newTestStore creates a DuckDBStore in a temp directory for testing.
func newTestStore(t *testing.T) *DuckDBStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.duckdb")
	store, err := NewDuckDBStore(dbPath, 100, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewDuckDBStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// insertEvent writes an event row directly, bypassing the batch writer.
func insertEvent(t *testing.T, store *DuckDBStore, id, instanceID, sessionID, name string, passive bool, ts time.Time) {
	t.Helper()
	_, err := store.db.ExecContext(context.Background(), `
		INSERT INTO hint_events
			(id, instance_id, session_id, name, passive, time, attributes, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, instanceID, sessionID, name, passive, ts, "", time.Now(),
	)
	if err != nil {
		t.Fatalf("insert event %s: %v", id, err)
	}
}

// waitForEvents polls until the store has flushed at least n events.
func waitForEvents(t *testing.T, store *DuckDBStore, n int) []telemetry.Event {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		events, err := store.QueryEvents(context.Background(), EventFilter{Limit: 100})
		if err != nil {
			t.Fatalf("QueryEvents: %v", err)
		}
		if len(events) >= n {
			return events
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events to flush", n)
	return nil
}

func TestIngestBatchRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	req := IngestRequest{
		InstanceID: "inst-1",
		SessionID:  "sess-1",
		Events: []telemetry.Event{
			{ID: "ev-1", Name: "autotrigger", Passive: true, Time: now,
				InstanceID: "inst-1", SessionID: "sess-1",
				Attributes: map[string]string{"reason": "content"}},
			{ID: "ev-2", Name: "presstab", Passive: true, Time: now.Add(time.Second),
				InstanceID: "inst-1", SessionID: "sess-1"},
		},
	}
	if err := store.IngestBatch(ctx, req); err != nil {
		t.Fatalf("IngestBatch: %v", err)
	}

	events := waitForEvents(t, store, 2)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	// Newest first.
	if events[0].ID != "ev-2" || events[1].ID != "ev-1" {
		t.Errorf("unexpected order: %s, %s", events[0].ID, events[1].ID)
	}
	if events[1].Attributes["reason"] != "content" {
		t.Errorf("attributes not preserved: %v", events[1].Attributes)
	}
	if events[1].InstanceID != "inst-1" || events[1].SessionID != "sess-1" {
		t.Errorf("ids not preserved: %s/%s", events[1].InstanceID, events[1].SessionID)
	}
}

func TestIngestDeduplicatesByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ev := telemetry.Event{
		ID: "ev-dup", Name: "autotrigger", Passive: true,
		Time: time.Now().UTC(), InstanceID: "inst-1",
	}
	for i := 0; i < 2; i++ {
		req := IngestRequest{InstanceID: "inst-1", Events: []telemetry.Event{ev}}
		if err := store.IngestBatch(ctx, req); err != nil {
			t.Fatalf("IngestBatch %d: %v", i, err)
		}
	}

	events := waitForEvents(t, store, 1)
	time.Sleep(100 * time.Millisecond)
	events, err := store.QueryEvents(ctx, EventFilter{Limit: 100})
	if err != nil {
		t.Fatalf("QueryEvents: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("got %d events after duplicate ingest, want 1", len(events))
	}
}

func TestQueryEventsFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	insertEvent(t, store, "a-1", "inst-a", "sess-a", "autotrigger", true, now)
	insertEvent(t, store, "a-2", "inst-a", "sess-a", "presstab", true, now.Add(time.Minute))
	insertEvent(t, store, "b-1", "inst-b", "sess-b", "autotrigger", true, now.Add(2*time.Minute))

	byInstance, err := store.QueryEvents(ctx, EventFilter{InstanceID: "inst-a"})
	if err != nil {
		t.Fatalf("QueryEvents by instance: %v", err)
	}
	if len(byInstance) != 2 {
		t.Errorf("instance filter: got %d events, want 2", len(byInstance))
	}

	byName, err := store.QueryEvents(ctx, EventFilter{Name: "autotrigger"})
	if err != nil {
		t.Fatalf("QueryEvents by name: %v", err)
	}
	if len(byName) != 2 {
		t.Errorf("name filter: got %d events, want 2", len(byName))
	}

	since, err := store.QueryEvents(ctx, EventFilter{Since: now.Add(30 * time.Second)})
	if err != nil {
		t.Fatalf("QueryEvents since: %v", err)
	}
	if len(since) != 2 {
		t.Errorf("since filter: got %d events, want 2", len(since))
	}

	limited, err := store.QueryEvents(ctx, EventFilter{Limit: 1})
	if err != nil {
		t.Fatalf("QueryEvents limit: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit filter: got %d events, want 1", len(limited))
	}
	if limited[0].ID != "b-1" {
		t.Errorf("limit should keep the newest event, got %s", limited[0].ID)
	}
}

func TestQueryProgress(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	// inst-a exited start, autotrigger, then presstab twice.
	insertEvent(t, store, "a-1", "inst-a", "s", "start", true, now)
	insertEvent(t, store, "a-2", "inst-a", "s", "autotrigger", true, now.Add(time.Minute))
	insertEvent(t, store, "a-3", "inst-a", "s", "presstab", true, now.Add(2*time.Minute))
	insertEvent(t, store, "a-4", "inst-a", "s", "presstab", true, now.Add(3*time.Minute))
	// inst-b only exited start.
	insertEvent(t, store, "b-1", "inst-b", "s", "start", true, now)
	// Active events and unknown names do not count.
	insertEvent(t, store, "a-5", "inst-a", "s", "suggestion_accepted", false, now.Add(4*time.Minute))
	insertEvent(t, store, "a-6", "inst-a", "s", "other", true, now.Add(5*time.Minute))

	progress, err := store.QueryProgress(ctx)
	if err != nil {
		t.Fatalf("QueryProgress: %v", err)
	}
	if len(progress) != 2 {
		t.Fatalf("got %d instances, want 2", len(progress))
	}

	a := progress[0]
	if a.InstanceID != "inst-a" {
		t.Fatalf("progress not sorted by instance: %s first", a.InstanceID)
	}
	if a.FurthestState != "manualtrigger" {
		t.Errorf("inst-a furthest state = %s, want manualtrigger", a.FurthestState)
	}
	if a.Transitions != 4 {
		t.Errorf("inst-a transitions = %d, want 4", a.Transitions)
	}
	if !a.LastEvent.Equal(now.Add(3 * time.Minute)) {
		t.Errorf("inst-a last event = %v, want %v", a.LastEvent, now.Add(3*time.Minute))
	}

	b := progress[1]
	if b.FurthestState != "autotrigger" {
		t.Errorf("inst-b furthest state = %s, want autotrigger", b.FurthestState)
	}
	if b.Transitions != 1 {
		t.Errorf("inst-b transitions = %d, want 1", b.Transitions)
	}
}

func TestGetUsageStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	insertEvent(t, store, "e-1", "inst-1", "sess-1", "autotrigger", true, now)
	insertEvent(t, store, "e-2", "inst-1", "sess-1", "presstab", true, now)
	insertEvent(t, store, "e-3", "inst-2", "sess-2", "autotrigger", true, now)

	stats, err := store.GetUsageStats(ctx)
	if err != nil {
		t.Fatalf("GetUsageStats: %v", err)
	}
	if stats.TotalEvents != 3 {
		t.Errorf("TotalEvents = %d, want 3", stats.TotalEvents)
	}
	if stats.TotalSessions != 2 {
		t.Errorf("TotalSessions = %d, want 2", stats.TotalSessions)
	}
	if stats.DBSizeBytes <= 0 {
		t.Errorf("DBSizeBytes = %d, want > 0", stats.DBSizeBytes)
	}
}
