package collect

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wethinkt/go-nudge/internal/telemetry"
)

// NormalizeRequest validates and cleans an ingest request in place.
// It returns an error if the request is fundamentally invalid.
// Individual events that fail validation are removed and their count
// returned.
func NormalizeRequest(req *IngestRequest) (dropped int, err error) {
	req.InstanceID = strings.TrimSpace(req.InstanceID)
	req.SessionID = strings.TrimSpace(req.SessionID)

	if req.InstanceID == "" {
		return 0, fmt.Errorf("instance_id is required")
	}
	if len(req.Events) == 0 {
		return 0, fmt.Errorf("events must not be empty")
	}

	valid := make([]telemetry.Event, 0, len(req.Events))
	for i := range req.Events {
		e := &req.Events[i]
		if err := normalizeEvent(e, req.InstanceID, req.SessionID); err != nil {
			dropped++
			continue
		}
		valid = append(valid, *e)
	}
	req.Events = valid
	return dropped, nil
}

// normalizeEvent validates and cleans a single event. Empty names and
// zero times are dropped rather than guessed at; ids are filled in so the
// store's dedup-by-id holds even for hosts that don't set them.
func normalizeEvent(e *telemetry.Event, instanceID, sessionID string) error {
	e.Name = strings.ToLower(strings.TrimSpace(e.Name))
	if e.Name == "" {
		return fmt.Errorf("event name is required")
	}
	if e.Time.IsZero() {
		return fmt.Errorf("event time is required")
	}
	e.Time = e.Time.UTC()

	if strings.TrimSpace(e.ID) == "" {
		e.ID = uuid.NewString()
	}
	if e.InstanceID == "" {
		e.InstanceID = instanceID
	}
	if e.SessionID == "" {
		e.SessionID = sessionID
	}
	return nil
}
