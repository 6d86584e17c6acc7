package collect

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/wethinkt/go-nudge/internal/nudgelog"
)

const wsBackfillLimit = 50

// handleEventsWS upgrades to WebSocket and streams events in real time.
// An empty instance_id subscribes to events from all instances.
// Auth: either Authorization header (handled by bearerAuth middleware) or
// ?ticket= query param.
func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	instanceID := r.URL.Query().Get("instance_id")

	// Check ticket auth (for clients that can't set headers on WS)
	if ticket := r.URL.Query().Get("ticket"); ticket != "" {
		if !s.tickets.Redeem(ticket, instanceID) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired ticket")
			return
		}
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		nudgelog.Log.Error("WebSocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	// Backfill: send recent events
	afterParam := r.URL.Query().Get("after")
	var afterTime time.Time
	if afterParam != "" {
		afterTime, _ = time.Parse(time.RFC3339Nano, afterParam)
	}

	backfill, err := s.store.QueryEvents(ctx, EventFilter{
		InstanceID: instanceID,
		Limit:      wsBackfillLimit,
	})
	if err != nil {
		nudgelog.Log.Error("WS backfill query failed", "instance_id", instanceID, "error", err)
	} else {
		// QueryEvents returns newest first; replay oldest first
		for i := len(backfill) - 1; i >= 0; i-- {
			e := backfill[i]
			if !afterTime.IsZero() && !e.Time.After(afterTime) {
				continue
			}
			data, err := json.Marshal(e)
			if err != nil {
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				nudgelog.Log.Debug("WS backfill write failed", "error", err)
				return
			}
		}
	}

	// Subscribe to live events
	ch, unsub := s.pubsub.Subscribe(instanceID)
	defer unsub()

	wsConnectionsActive.Inc()
	defer wsConnectionsActive.Dec()
	nudgelog.Log.Info("WebSocket client connected", "instance_id", instanceID)

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "server shutting down")
			return
		case events, ok := <-ch:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "subscription closed")
				return
			}
			for _, e := range events {
				data, err := json.Marshal(e)
				if err != nil {
					continue
				}
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					nudgelog.Log.Debug("WS write failed", "instance_id", instanceID, "error", err)
					return
				}
			}
		}
	}
}

// handleIssueTicket issues a WebSocket auth ticket scoped to an instance.
// POST /v1/ws/ticket with body {"instance_id": "..."}; an empty id scopes
// the ticket to the firehose stream.
func (s *Server) handleIssueTicket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InstanceID string `json:"instance_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Failed to parse request body")
		return
	}

	ticket := s.tickets.Issue(req.InstanceID)
	writeJSON(w, http.StatusOK, map[string]string{"ticket": ticket})
}
