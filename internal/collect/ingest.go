package collect

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/wethinkt/go-nudge/internal/nudgelog"
	"github.com/wethinkt/go-nudge/internal/telemetry"
	"github.com/wethinkt/go-nudge/internal/version"
)

// handleIngest receives a batch of telemetry events from an editor host.
//
//	@Summary		Ingest events
//	@Description	Receives a batch of hint-telemetry events from an editor host
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Param			request	body		IngestRequest	true	"Event batch"
//	@Success		202		{object}	IngestResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/v1/events [post]
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ingestRequestsTotal.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid JSON body")
		return
	}

	dropped, err := NormalizeRequest(&req)
	if err != nil {
		ingestRequestsTotal.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if dropped > 0 {
		ingestDroppedTotal.Add(float64(dropped))
		nudgelog.Log.Debug("Dropped invalid events", "instance", req.InstanceID, "dropped", dropped)
	}
	if len(req.Events) == 0 {
		ingestRequestsTotal.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "bad_request", "No valid events in batch")
		return
	}

	if err := s.store.IngestBatch(r.Context(), req); err != nil {
		ingestRequestsTotal.WithLabelValues("error").Inc()
		nudgelog.Log.Error("Ingest failed", "instance", req.InstanceID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to store events")
		return
	}

	s.registry.IncrementEventCount(req.InstanceID, int64(len(req.Events)))
	s.pubsub.Publish(req.InstanceID, req.Events)

	for _, e := range req.Events {
		ingestEventsTotal.WithLabelValues(e.Name).Inc()
	}
	ingestRequestsTotal.WithLabelValues("accepted").Inc()
	ingestDurationSeconds.Observe(time.Since(start).Seconds())

	writeJSON(w, http.StatusAccepted, IngestResponse{Accepted: len(req.Events)})
}

// handleSearchEvents queries stored events with optional filters.
//
//	@Summary		Search events
//	@Description	Returns stored events matching the filters, newest first
//	@Tags			events
//	@Produce		json
//	@Param			instance_id	query		string	false	"Filter by instance id"
//	@Param			session_id	query		string	false	"Filter by session id"
//	@Param			name		query		string	false	"Filter by event name"
//	@Param			since		query		string	false	"Only events after this RFC3339 time"
//	@Param			limit		query		int		false	"Max results (default 100)"
//	@Param			offset		query		int		false	"Results offset"
//	@Success		200			{array}		telemetry.Event
//	@Failure		400			{object}	ErrorResponse
//	@Router			/v1/events/search [get]
func (s *Server) handleSearchEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := EventFilter{
		InstanceID: q.Get("instance_id"),
		SessionID:  q.Get("session_id"),
		Name:       q.Get("name"),
		Limit:      100,
	}

	if since := q.Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "Invalid since time, expected RFC3339")
			return
		}
		filter.Since = t
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", "Invalid limit")
			return
		}
		filter.Limit = n
	}
	if offset := q.Get("offset"); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", "Invalid offset")
			return
		}
		filter.Offset = n
	}

	events, err := s.store.QueryEvents(r.Context(), filter)
	if err != nil {
		nudgelog.Log.Error("Event search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Query failed")
		return
	}
	if events == nil {
		events = []telemetry.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// handleGetUsageStats returns aggregate collector statistics.
//
//	@Summary		Collector statistics
//	@Description	Returns aggregate event, session, and instance counts
//	@Tags			stats
//	@Produce		json
//	@Success		200	{object}	CollectorStats
//	@Router			/v1/stats [get]
func (s *Server) handleGetUsageStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetUsageStats(r.Context())
	if err != nil {
		nudgelog.Log.Error("Stats query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Query failed")
		return
	}

	total, active := s.registry.Count()
	stats.TotalInstances = total
	stats.ActiveInstances = active
	stats.UptimeSeconds = time.Since(s.startedAt).Seconds()
	stats.StartedAt = s.startedAt

	dbSizeBytes.Set(float64(stats.DBSizeBytes))

	writeJSON(w, http.StatusOK, stats)
}

// handleGetProgress returns derived tutorial progress per instance.
//
//	@Summary		Tutorial progress
//	@Description	Derives each instance's furthest tutorial position from its transition events
//	@Tags			stats
//	@Produce		json
//	@Success		200	{array}	TutorialProgress
//	@Router			/v1/progress [get]
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.store.QueryProgress(r.Context())
	if err != nil {
		nudgelog.Log.Error("Progress query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Query failed")
		return
	}
	if progress == nil {
		progress = []TutorialProgress{}
	}
	writeJSON(w, http.StatusOK, progress)
}

// handleRegisterInstance registers an editor host with the collector.
//
//	@Summary		Register instance
//	@Description	Registers an editor host so it appears in instance listings
//	@Tags			instances
//	@Accept			json
//	@Produce		json
//	@Param			request	body		InstanceRegistration	true	"Instance details"
//	@Success		200		{object}	InstanceInfo
//	@Failure		400		{object}	ErrorResponse
//	@Router			/v1/instances/register [post]
func (s *Server) handleRegisterInstance(w http.ResponseWriter, r *http.Request) {
	var reg InstanceRegistration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid JSON body")
		return
	}
	if reg.InstanceID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "instance_id is required")
		return
	}
	if reg.StartedAt.IsZero() {
		reg.StartedAt = time.Now()
	}

	info := s.registry.Register(reg)
	writeJSON(w, http.StatusOK, info)
}

// handleListInstances lists registered editor hosts.
//
//	@Summary		List instances
//	@Description	Returns registered editor hosts with their status
//	@Tags			instances
//	@Produce		json
//	@Success		200	{array}	InstanceInfo
//	@Router			/v1/instances [get]
func (s *Server) handleListInstances(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}

// handleHealth is the collector health check. It bypasses auth so
// monitors and editor hosts can probe without a token.
//
//	@Summary		Health check
//	@Description	Returns collector health and version
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/v1/collector/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}
