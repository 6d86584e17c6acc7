package collect

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/wethinkt/go-nudge/internal/nudgelog"
	"github.com/wethinkt/go-nudge/internal/telemetry"
)

const collectorSchema = `
CREATE TABLE IF NOT EXISTS hint_events (
    id VARCHAR PRIMARY KEY,
    instance_id VARCHAR,
    session_id VARCHAR,
    name VARCHAR,
    passive BOOLEAN DEFAULT FALSE,
    time TIMESTAMP,
    attributes VARCHAR,
    ingested_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// DuckDBStore implements EventStore backed by DuckDB.
type DuckDBStore struct {
	db            *sql.DB
	path          string
	startedAt     time.Time
	batchSize     int
	flushInterval time.Duration

	// Single-writer pattern: incoming requests go to a channel,
	// a single goroutine drains and writes them.
	ingestCh chan IngestRequest
	wg       sync.WaitGroup
	done     chan struct{}
}

// NewDuckDBStore opens (or creates) a DuckDB database for the collector
// and starts the background batch writer.
func NewDuckDBStore(dbPath string, batchSize int, flushInterval time.Duration) (*DuckDBStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	if _, err := db.Exec(collectorSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize collector schema: %w", err)
	}

	// Security hardening
	if _, err := db.Exec("SET enable_external_access=false"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set security settings: %w", err)
	}

	s := &DuckDBStore{
		db:            db,
		path:          dbPath,
		startedAt:     time.Now(),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		ingestCh:      make(chan IngestRequest, batchSize*2),
		done:          make(chan struct{}),
	}

	s.wg.Add(1)
	go s.batchWriter()

	return s, nil
}

// IngestBatch queues an ingest request for the batch writer.
func (s *DuckDBStore) IngestBatch(ctx context.Context, req IngestRequest) error {
	select {
	case s.ingestCh <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// batchWriter is the single goroutine that drains the ingest channel
// and writes batches to DuckDB.
func (s *DuckDBStore) batchWriter() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	var batch []IngestRequest

	for {
		select {
		case req := <-s.ingestCh:
			batch = append(batch, req)
			if batchEventCount(batch) >= s.batchSize {
				s.flushBatch(batch)
				batch = nil
			}

		case <-ticker.C:
			if len(batch) > 0 {
				s.flushBatch(batch)
				batch = nil
			}

		case <-s.done:
			// Drain remaining
			for {
				select {
				case req := <-s.ingestCh:
					batch = append(batch, req)
				default:
					if len(batch) > 0 {
						s.flushBatch(batch)
					}
					return
				}
			}
		}
	}
}

// batchEventCount returns the total number of events across all requests.
func batchEventCount(batch []IngestRequest) int {
	n := 0
	for _, req := range batch {
		n += len(req.Events)
	}
	return n
}

// flushBatch writes a batch of ingest requests in a single transaction.
func (s *DuckDBStore) flushBatch(batch []IngestRequest) {
	if len(batch) == 0 {
		return
	}
	start := time.Now()

	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		nudgelog.Log.Error("Failed to begin batch transaction", "error", err)
		return
	}

	for _, req := range batch {
		if err := writeRequest(tx, req); err != nil {
			nudgelog.Log.Error("Failed to write request in batch",
				"instance_id", req.InstanceID, "error", err)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		nudgelog.Log.Error("Failed to commit batch", "error", err)
		return
	}

	batchFlushDurationSeconds.Observe(time.Since(start).Seconds())
	nudgelog.Log.Debug("Flushed batch",
		"requests", len(batch), "events", batchEventCount(batch))
}

// writeRequest writes a single ingest request within a transaction.
func writeRequest(tx *sql.Tx, req IngestRequest) error {
	now := time.Now()
	for _, e := range req.Events {
		attrs := ""
		if len(e.Attributes) > 0 {
			if data, err := json.Marshal(e.Attributes); err == nil {
				attrs = string(data)
			}
		}
		_, err := tx.Exec(`
			INSERT OR IGNORE INTO hint_events
				(id, instance_id, session_id, name, passive, time, attributes, ingested_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, e.ID, e.InstanceID, e.SessionID, e.Name, e.Passive, e.Time, attrs, now)
		if err != nil {
			return fmt.Errorf("insert event %s: %w", e.ID, err)
		}
	}
	return nil
}

// QueryEvents returns stored events matching the filter, newest first.
func (s *DuckDBStore) QueryEvents(ctx context.Context, filter EventFilter) ([]telemetry.Event, error) {
	query := "SELECT id, instance_id, session_id, name, passive, time, attributes FROM hint_events"
	var conditions []string
	var args []any

	if filter.InstanceID != "" {
		conditions = append(conditions, "instance_id = ?")
		args = append(args, filter.InstanceID)
	}
	if filter.SessionID != "" {
		conditions = append(conditions, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Name != "" {
		conditions = append(conditions, "name = ?")
		args = append(args, filter.Name)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "time >= ?")
		args = append(args, filter.Since)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY time DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT %d", limit)
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []telemetry.Event
	for rows.Next() {
		var e telemetry.Event
		var attrs string
		if err := rows.Scan(&e.ID, &e.InstanceID, &e.SessionID, &e.Name,
			&e.Passive, &e.Time, &attrs); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if attrs != "" {
			json.Unmarshal([]byte(attrs), &e.Attributes)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// QueryProgress derives tutorial progress per instance from the stored
// transition events.
func (s *DuckDBStore) QueryProgress(ctx context.Context) ([]TutorialProgress, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT instance_id, name, COUNT(*), MAX(time)
		FROM hint_events
		WHERE passive AND instance_id != ''
		GROUP BY instance_id, name
	`)
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	type agg struct {
		maxRank     int
		transitions int64
		last        time.Time
	}
	byInstance := make(map[string]*agg)
	for rows.Next() {
		var instanceID, name string
		var count int64
		var last time.Time
		if err := rows.Scan(&instanceID, &name, &count, &last); err != nil {
			return nil, fmt.Errorf("scan progress row: %w", err)
		}
		rank := stateRank(name)
		if rank < 0 {
			continue
		}
		a, ok := byInstance[instanceID]
		if !ok {
			a = &agg{maxRank: rank}
			byInstance[instanceID] = a
		}
		if rank > a.maxRank {
			a.maxRank = rank
		}
		a.transitions += count
		if last.After(a.last) {
			a.last = last
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
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

// GetUsageStats returns aggregate collector usage statistics.
func (s *DuckDBStore) GetUsageStats(ctx context.Context) (*CollectorStats, error) {
	stats := &CollectorStats{
		StartedAt:     s.startedAt,
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
	}

	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM hint_events")
	if err := row.Scan(&stats.TotalEvents); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	row = s.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT session_id) FROM hint_events WHERE session_id != ''")
	if err := row.Scan(&stats.TotalSessions); err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}

	if info, err := os.Stat(s.path); err == nil {
		stats.DBSizeBytes = info.Size()
		dbSizeBytes.Set(float64(info.Size()))
	}

	return stats, nil
}

// Close stops the batch writer and closes the database.
func (s *DuckDBStore) Close() error {
	close(s.done)
	s.wg.Wait()
	return s.db.Close()
}
