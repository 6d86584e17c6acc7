package collect

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wethinkt/go-nudge/internal/telemetry"
)

func newTestServer(t *testing.T, token string) *Server {
	t.Helper()
	return NewServerWithStore(CollectorConfig{Token: token, Quiet: true}, NewMemStore())
}

func postJSON(t *testing.T, handler http.Handler, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func getJSON(t *testing.T, handler http.Handler, path, token string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s response: %v", path, err)
		}
	}
	return rec
}

func TestIngestThenSearchRoundTrip(t *testing.T) {
	s := newTestServer(t, "")
	h := s.Handler()

	now := time.Now().UTC().Truncate(time.Second)
	rec := postJSON(t, h, "/v1/events", "", IngestRequest{
		InstanceID: "inst-1",
		SessionID:  "sess-1",
		Events: []telemetry.Event{
			{Name: "onboard_autotrigger", Passive: true, Time: now},
			{Name: "onboard_presstab", Passive: true, Time: now.Add(time.Second)},
		},
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("ingest status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp IngestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Accepted != 2 {
		t.Fatalf("accepted = %d, want 2", resp.Accepted)
	}

	var events []telemetry.Event
	rec = getJSON(t, h, "/v1/events/search?instance_id=inst-1", "", &events)
	if rec.Code != http.StatusOK {
		t.Fatalf("search status = %d", rec.Code)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	// Newest first
	if events[0].Name != "onboard_presstab" {
		t.Errorf("first event = %q, want onboard_presstab", events[0].Name)
	}
	if events[0].InstanceID != "inst-1" || events[0].SessionID != "sess-1" {
		t.Errorf("ids not inherited: %+v", events[0])
	}
}

func TestIngestRejectsMissingInstanceID(t *testing.T) {
	s := newTestServer(t, "")

	rec := postJSON(t, s.Handler(), "/v1/events", "", IngestRequest{
		Events: []telemetry.Event{{Name: "onboard_autotrigger", Time: time.Now()}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestIngestRejectsBatchWithNoValidEvents(t *testing.T) {
	s := newTestServer(t, "")

	rec := postJSON(t, s.Handler(), "/v1/events", "", IngestRequest{
		InstanceID: "inst-1",
		Events:     []telemetry.Event{{Name: ""}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestBearerAuthRejectsMissingAndWrongToken(t *testing.T) {
	s := newTestServer(t, "secret")
	h := s.Handler()

	rec := getJSON(t, h, "/v1/stats", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rec.Code)
	}

	rec = getJSON(t, h, "/v1/stats", "wrong", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: status = %d, want 401", rec.Code)
	}

	rec = getJSON(t, h, "/v1/stats", "secret", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, want 200", rec.Code)
	}
}

func TestHealthBypassesAuth(t *testing.T) {
	s := newTestServer(t, "secret")

	rec := getJSON(t, s.Handler(), "/v1/collector/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestProgressDerivation(t *testing.T) {
	s := newTestServer(t, "")
	h := s.Handler()

	now := time.Now().UTC()
	rec := postJSON(t, h, "/v1/events", "", IngestRequest{
		InstanceID: "inst-1",
		Events: []telemetry.Event{
			// Exited autotrigger, then presstab: furthest is manualtrigger
			{Name: "onboard_autotrigger", Passive: true, Time: now},
			{Name: "onboard_presstab", Passive: true, Time: now.Add(time.Second)},
		},
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("ingest status = %d", rec.Code)
	}

	var progress []TutorialProgress
	rec = getJSON(t, h, "/v1/progress", "", &progress)
	if rec.Code != http.StatusOK {
		t.Fatalf("progress status = %d", rec.Code)
	}
	if len(progress) != 1 {
		t.Fatalf("got %d instances, want 1", len(progress))
	}
	p := progress[0]
	if p.InstanceID != "inst-1" {
		t.Errorf("instance = %q", p.InstanceID)
	}
	if p.FurthestState != "onboard_manualtrigger" {
		t.Errorf("furthest = %q, want onboard_manualtrigger", p.FurthestState)
	}
	if p.Transitions != 2 {
		t.Errorf("transitions = %d, want 2", p.Transitions)
	}
}

func TestStatsCountsEventsAndInstances(t *testing.T) {
	s := newTestServer(t, "")
	h := s.Handler()

	now := time.Now().UTC()
	postJSON(t, h, "/v1/events", "", IngestRequest{
		InstanceID: "inst-1",
		SessionID:  "sess-1",
		Events:     []telemetry.Event{{Name: "onboard_autotrigger", Time: now}},
	})
	postJSON(t, h, "/v1/events", "", IngestRequest{
		InstanceID: "inst-2",
		SessionID:  "sess-2",
		Events:     []telemetry.Event{{Name: "onboard_autotrigger", Time: now}},
	})

	var stats CollectorStats
	rec := getJSON(t, h, "/v1/stats", "", &stats)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	if stats.TotalEvents != 2 {
		t.Errorf("total events = %d, want 2", stats.TotalEvents)
	}
	if stats.TotalSessions != 2 {
		t.Errorf("total sessions = %d, want 2", stats.TotalSessions)
	}
	if stats.TotalInstances != 2 {
		t.Errorf("total instances = %d, want 2", stats.TotalInstances)
	}
}

func TestRegisterAndListInstances(t *testing.T) {
	s := newTestServer(t, "")
	h := s.Handler()

	rec := postJSON(t, h, "/v1/instances/register", "", InstanceRegistration{
		InstanceID: "inst-1",
		Hostname:   "dev.local",
		Version:    "v1.0.0",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d", rec.Code)
	}

	var instances []InstanceInfo
	rec = getJSON(t, h, "/v1/instances", "", &instances)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if len(instances) != 1 || instances[0].InstanceID != "inst-1" {
		t.Fatalf("unexpected instances: %+v", instances)
	}
	if instances[0].Status != "active" {
		t.Errorf("status = %q, want active", instances[0].Status)
	}
}

func TestIngestDeduplicatesByEventID(t *testing.T) {
	s := newTestServer(t, "")
	h := s.Handler()

	ev := telemetry.Event{ID: "fixed-id", Name: "onboard_autotrigger", Time: time.Now().UTC()}
	for i := 0; i < 2; i++ {
		rec := postJSON(t, h, "/v1/events", "", IngestRequest{
			InstanceID: "inst-1",
			Events:     []telemetry.Event{ev},
		})
		if rec.Code != http.StatusAccepted {
			t.Fatalf("ingest %d status = %d", i, rec.Code)
		}
	}

	var events []telemetry.Event
	getJSON(t, h, "/v1/events/search", "", &events)
	if len(events) != 1 {
		t.Fatalf("got %d events after duplicate ingest, want 1", len(events))
	}
}
