package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wethinkt/go-nudge/internal/collect"
	"github.com/wethinkt/go-nudge/internal/nudgelog"
)

// Collect command flags
var (
	collectPort    int
	collectHost    string
	collectStorage string
	collectToken   string
	collectQuiet   bool
	collectMCPPort int

	mcpAllowTools []string
	mcpDenyTools  []string
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Start the telemetry collector server",
	Long: `Start a collector server that receives hint-telemetry events from
nudge editor hosts.

The collector provides:
  - POST /v1/events endpoint for event ingestion
  - GET /v1/events/search and /v1/progress query endpoints
  - WebSocket live tail at /v1/events/ws
  - Instance registration and heartbeat tracking
  - DuckDB-backed storage for collected events
  - Prometheus metrics at /metrics and OpenAPI docs at /swagger/
  - Bearer token authentication (optional)

Examples:
  nudge collect                            # Start on port 8790
  nudge collect --port 9000                # Custom port
  nudge collect --token mytoken            # Require bearer token auth
  nudge collect --storage ./ev.duckdb      # Custom storage path
  nudge collect --mcp-port 8791            # Also serve MCP over SSE`,
	RunE: runCollect,
}

var collectMCPCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve collector MCP tools over stdio",
	Long: `Expose the collector's data as MCP tools over stdio, for use as an
MCP server in agent configurations.

Tools: get_hint_stats, list_hint_events, get_tutorial_progress.

Examples:
  nudge collect mcp                              # stdio transport
  nudge collect mcp --allow-tool get_hint_stats  # restrict tools`,
	RunE: runCollectMCP,
}

func collectorConfig() collect.CollectorConfig {
	sc := collect.DefaultCollectorConfig()
	if cfg.Collector.Port != 0 {
		sc.Port = cfg.Collector.Port
	}
	if cfg.Collector.Host != "" {
		sc.Host = cfg.Collector.Host
	}
	sc.DBPath = cfg.Collector.DBPath
	sc.Token = cfg.Collector.Token

	if collectPort != 0 {
		sc.Port = collectPort
	}
	if collectHost != "" {
		sc.Host = collectHost
	}
	if collectStorage != "" {
		sc.DBPath = collectStorage
	}
	if collectToken != "" {
		sc.Token = collectToken
	}
	sc.Quiet = collectQuiet
	return sc
}

func runCollect(cmd *cobra.Command, args []string) error {
	if logPath != "" {
		if err := nudgelog.Init(logPath); err != nil {
			return err
		}
		defer nudgelog.Log.Close()
	}

	sc := collectorConfig()
	nudgelog.Log.Info("Starting collector server", "port", sc.Port, "host", sc.Host)

	srv, err := collect.NewServer(sc)
	if err != nil {
		return fmt.Errorf("create collector server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		nudgelog.Log.Info("Received interrupt signal, shutting down")
		if !collectQuiet {
			fmt.Fprintln(os.Stderr, "\nShutting down...")
		}
		cancel()
	}()

	if !collectQuiet {
		fmt.Fprintf(os.Stderr, "Collector server starting on %s:%d\n", sc.Host, sc.Port)
		if sc.Token != "" {
			fmt.Fprintln(os.Stderr, "Authentication: enabled (bearer token)")
		} else {
			fmt.Fprintln(os.Stderr, "Authentication: disabled (use --token to secure)")
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})
	if collectMCPPort != 0 {
		mcpSrv := srv.MCP()
		mcpSrv.SetToolFilters(nil, nil)
		g.Go(func() error {
			return mcpSrv.RunHTTP(gctx, sc.Host, collectMCPPort)
		})
	}
	return g.Wait()
}

func runCollectMCP(cmd *cobra.Command, args []string) error {
	sc := collectorConfig()

	srv, err := collect.NewServer(sc)
	if err != nil {
		return fmt.Errorf("create collector server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		cancel()
	}()

	mcpSrv := srv.MCP()
	mcpSrv.SetToolFilters(mcpAllowTools, mcpDenyTools)
	return mcpSrv.RunStdio(ctx)
}
