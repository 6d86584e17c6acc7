// Package collect implements the nudge collector: an HTTP server that
// receives hint-telemetry events from editor hosts, normalizes and stores
// them in DuckDB, and serves query, live-tail, and MCP surfaces over the
// collected data.
package collect

import (
	"context"
	"time"

	"github.com/wethinkt/go-nudge/internal/telemetry"
	"github.com/wethinkt/go-nudge/internal/tutorial"
)

// Default configuration values for the collector.
const (
	DefaultPort          = 8790
	DefaultHost          = "localhost"
	DefaultBatchSize     = 100
	DefaultFlushInterval = 2 * time.Second
)

// CollectorConfig holds configuration for the event collector.
type CollectorConfig struct {
	Port          int
	Host          string
	DBPath        string
	Token         string // bearer token for auth
	Quiet         bool
	BatchSize     int
	FlushInterval time.Duration
}

// DefaultCollectorConfig returns a CollectorConfig with default values.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		Port:          DefaultPort,
		Host:          DefaultHost,
		BatchSize:     DefaultBatchSize,
		FlushInterval: DefaultFlushInterval,
	}
}

// IngestRequest is the POST /v1/events request body shipped by editor
// hosts. The top-level ids fill in events that lack their own.
type IngestRequest struct {
	InstanceID string            `json:"instance_id"`
	SessionID  string            `json:"session_id"`
	Events     []telemetry.Event `json:"events"`
}

// IngestResponse is returned by POST /v1/events.
type IngestResponse struct {
	Accepted int    `json:"accepted"`
	Message  string `json:"message,omitempty"`
}

// InstanceRegistration is the POST /v1/instances/register request body.
type InstanceRegistration struct {
	InstanceID string    `json:"instance_id"`
	Hostname   string    `json:"hostname,omitempty"`
	Version    string    `json:"version,omitempty"`
	StartedAt  time.Time `json:"started_at"`
}

// InstanceInfo represents a registered editor host and its status.
type InstanceInfo struct {
	InstanceID    string    `json:"instance_id"`
	Hostname      string    `json:"hostname,omitempty"`
	Version       string    `json:"version,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
	EventCount    int64     `json:"event_count"`
	Status        string    `json:"status"` // "active" or "stale"
}

// CollectorStats contains aggregate collector statistics.
type CollectorStats struct {
	TotalEvents     int64     `json:"total_events"`
	TotalSessions   int64     `json:"total_sessions"`
	TotalInstances  int       `json:"total_instances"`
	ActiveInstances int       `json:"active_instances"`
	DBSizeBytes     int64     `json:"db_size_bytes"`
	UptimeSeconds   float64   `json:"uptime_seconds"`
	StartedAt       time.Time `json:"started_at"`
}

// EventFilter holds query parameters for filtering stored events.
type EventFilter struct {
	InstanceID string    `json:"instance_id,omitempty"`
	SessionID  string    `json:"session_id,omitempty"`
	Name       string    `json:"name,omitempty"`
	Since      time.Time `json:"since,omitempty"`
	Limit      int       `json:"limit,omitempty"`
	Offset     int       `json:"offset,omitempty"`
}

// TutorialProgress is the furthest tutorial position derived from the
// transition events an instance has shipped. Transition events are keyed
// by the exited state, so the furthest position is one step past the
// furthest exited state.
type TutorialProgress struct {
	InstanceID    string    `json:"instance_id"`
	FurthestState string    `json:"furthest_state"`
	Transitions   int64     `json:"transitions"`
	LastEvent     time.Time `json:"last_event"`
}

// EventStore is the storage interface for the collector.
type EventStore interface {
	// IngestBatch writes a normalized batch of events.
	IngestBatch(ctx context.Context, req IngestRequest) error
	// QueryEvents returns stored events matching the filter, newest first.
	QueryEvents(ctx context.Context, filter EventFilter) ([]telemetry.Event, error)
	// QueryProgress derives tutorial progress per instance.
	QueryProgress(ctx context.Context) ([]TutorialProgress, error)
	// GetUsageStats returns aggregate collector usage statistics.
	GetUsageStats(ctx context.Context) (*CollectorStats, error)
	// Close shuts down the store and releases resources.
	Close() error
}

// stateRank orders tutorial state ids for progress derivation. Unknown
// names rank below everything.
func stateRank(name string) int {
	for st := tutorial.StateStart; st <= tutorial.StateEnd; st++ {
		if st.ID() == name {
			return int(st)
		}
	}
	return -1
}

// furthestState maps the highest exited-state rank seen to the state the
// instance reached.
func furthestState(maxExited int) string {
	next := tutorial.State(maxExited) + 1
	if next > tutorial.StateEnd {
		next = tutorial.StateEnd
	}
	return next.ID()
}
