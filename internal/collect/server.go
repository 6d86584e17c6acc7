package collect

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/wethinkt/go-nudge/internal/config"
	"github.com/wethinkt/go-nudge/internal/nudgelog"

	// Checked-in swagger docs for the collector API.
	_ "github.com/wethinkt/go-nudge/internal/collect/docs"
)

// Server is the collector HTTP server that receives events from editor
// hosts.
type Server struct {
	config    CollectorConfig
	store     EventStore
	registry  *InstanceRegistry
	pubsub    *EventPubSub
	tickets   *TicketStore
	router    chi.Router
	startedAt time.Time
}

// NewServer creates a collector server over a DuckDB store at the
// configured path.
func NewServer(cfg CollectorConfig) (*Server, error) {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dir, err := config.Dir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		dbPath = dir + "/events.duckdb"
	}

	store, err := NewDuckDBStore(dbPath, cfg.BatchSize, cfg.FlushInterval)
	if err != nil {
		return nil, fmt.Errorf("open collector store: %w", err)
	}
	return NewServerWithStore(cfg, store), nil
}

// NewServerWithStore creates a collector server over an explicit store.
// Tests use it with MemStore.
func NewServerWithStore(cfg CollectorConfig, store EventStore) *Server {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	s := &Server{
		config:    cfg,
		store:     store,
		registry:  NewInstanceRegistry(),
		pubsub:    NewEventPubSub(),
		tickets:   NewTicketStore(),
		startedAt: time.Now(),
	}
	s.router = s.setupRouter()
	return s
}

// setupRouter configures the collector HTTP routes and middleware.
func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(corsMiddleware)

	if !s.config.Quiet {
		r.Use(middleware.Logger)
	}

	// Bearer token auth
	if s.config.Token != "" {
		nudgelog.Log.Info("Collector authentication enabled")
		r.Use(bearerAuth(s.config.Token))
	} else {
		nudgelog.Log.Warn("Collector running without authentication - use --token to secure")
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/events", s.handleIngest)
		r.Get("/events/search", s.handleSearchEvents)
		r.Get("/events/ws", s.handleEventsWS)
		r.Post("/ws/ticket", s.handleIssueTicket)
		r.Get("/stats", s.handleGetUsageStats)
		r.Get("/progress", s.handleGetProgress)
		r.Post("/instances/register", s.handleRegisterInstance)
		r.Get("/instances", s.handleListInstances)
		r.Get("/collector/health", s.handleHealth)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler())

	return r
}

// MCP returns an MCP server over this collector's store and registry.
func (s *Server) MCP() *MCPServer {
	return NewMCPServer(s.store, s.registry)
}

// Handler returns the server's HTTP handler. Tests drive it directly via
// httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the collector server and blocks until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler: s.router,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	// Update port if auto-assigned
	if s.config.Port == 0 {
		s.config.Port = ln.Addr().(*net.TCPAddr).Port
	}

	// Register instance for discovery by editor hosts
	inst := config.Instance{
		Type:      config.InstanceCollect,
		PID:       os.Getpid(),
		Port:      s.config.Port,
		Host:      s.config.Host,
		StartedAt: time.Now(),
	}
	if err := config.RegisterInstance(inst); err != nil {
		nudgelog.Log.Warn("Failed to register collector instance", "error", err)
	}

	go s.sweepLoop(ctx)

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		config.UnregisterInstance(os.Getpid())
		s.store.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	fmt.Printf("Collector server running at http://%s:%d\n", s.config.Host, s.config.Port)
	return srv.Serve(ln)
}

// Addr returns the server address string.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// sweepLoop periodically removes stale instances and expired tickets.
func (s *Server) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.registry.CleanStale(StaleInstanceThreshold); removed > 0 {
				nudgelog.Log.Info("Cleaned stale instances", "removed", removed)
			}
			s.tickets.Cleanup()
			_, active := s.registry.Count()
			activeInstancesGauge.Set(float64(active))
		}
	}
}

// bearerAuth returns middleware that validates a bearer token using
// constant-time comparison to prevent timing attacks.
func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Allow health checks and metrics scrapes without auth
			if r.URL.Path == "/v1/collector/health" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}
			// WebSocket clients authenticate with a single-use ticket
			if r.URL.Path == "/v1/events/ws" && r.URL.Query().Get("ticket") != "" {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="nudge-collector"`)
				writeError(w, http.StatusUnauthorized, "unauthorized", "Missing Authorization header")
				return
			}

			const prefix = "Bearer "
			if len(auth) < len(prefix) || auth[:len(prefix)] != prefix {
				writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid Authorization header format")
				return
			}

			if subtle.ConstantTimeCompare([]byte(auth[len(prefix):]), []byte(token)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// corsMiddleware adds CORS headers for cross-origin requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is an API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, err string, msg string) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: msg})
}
