package collect

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wethinkt/go-nudge/internal/telemetry"
)

// MemStore is an in-memory EventStore. Handler tests use it in place of
// DuckDB; writes are synchronous, so reads observe them immediately.
type MemStore struct {
	mu        sync.Mutex
	events    []telemetry.Event
	byID      map[string]bool
	startedAt time.Time
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		byID:      make(map[string]bool),
		startedAt: time.Now(),
	}
}

func (s *MemStore) IngestBatch(ctx context.Context, req IngestRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range req.Events {
		if s.byID[e.ID] {
			continue
		}
		s.byID[e.ID] = true
		s.events = append(s.events, e)
	}
	return nil
}

func (s *MemStore) QueryEvents(ctx context.Context, filter EventFilter) ([]telemetry.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []telemetry.Event
	for _, e := range s.events {
		if filter.InstanceID != "" && e.InstanceID != filter.InstanceID {
			continue
		}
		if filter.SessionID != "" && e.SessionID != filter.SessionID {
			continue
		}
		if filter.Name != "" && e.Name != filter.Name {
			continue
		}
		if !filter.Since.IsZero() && e.Time.Before(filter.Since) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemStore) QueryProgress(ctx context.Context) ([]TutorialProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type agg struct {
		maxRank     int
		transitions int64
		last        time.Time
	}
	byInstance := make(map[string]*agg)
	for _, e := range s.events {
		if !e.Passive || e.InstanceID == "" {
			continue
		}
		rank := stateRank(e.Name)
		if rank < 0 {
			continue
		}
		a, ok := byInstance[e.InstanceID]
		if !ok {
			a = &agg{maxRank: rank}
			byInstance[e.InstanceID] = a
		}
		if rank > a.maxRank {
			a.maxRank = rank
		}
		a.transitions++
		if e.Time.After(a.last) {
			a.last = e.Time
		}
	}

	progress := make([]TutorialProgress, 0, len(byInstance))
	for id, a := range byInstance {
		progress = append(progress, TutorialProgress{
			InstanceID:    id,
			FurthestState: furthestState(a.maxRank),
			Transitions:   a.transitions,
			LastEvent:     a.last,
		})
	}
	sort.Slice(progress, func(i, j int) bool {
		return progress[i].InstanceID < progress[j].InstanceID
	})
	return progress, nil
}

func (s *MemStore) GetUsageStats(ctx context.Context) (*CollectorStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := make(map[string]bool)
	for _, e := range s.events {
		if e.SessionID != "" {
			sessions[e.SessionID] = true
		}
	}
	return &CollectorStats{
		TotalEvents:   int64(len(s.events)),
		TotalSessions: int64(len(sessions)),
		StartedAt:     s.startedAt,
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
	}, nil
}

func (s *MemStore) Close() error { return nil }
