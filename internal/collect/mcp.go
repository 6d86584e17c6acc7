package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wethinkt/go-nudge/internal/nudgelog"
	"github.com/wethinkt/go-nudge/internal/version"
)

// MCPServer exposes the collector's stored events to MCP clients so
// agents can inspect hint telemetry and tutorial progress.
type MCPServer struct {
	server     *mcp.Server
	store      EventStore
	registry   *InstanceRegistry
	allowTools map[string]bool
	denyTools  map[string]bool
}

// NewMCPServer creates an MCP server over the given event store.
func NewMCPServer(store EventStore, registry *InstanceRegistry) *MCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "nudge",
		Version: version.Get(),
	}, nil)

	return &MCPServer{
		server:   server,
		store:    store,
		registry: registry,
	}
}

// SetToolFilters configures which tools are allowed or denied and then
// registers the tools.
func (ms *MCPServer) SetToolFilters(allow, deny []string) {
	if len(allow) > 0 {
		ms.allowTools = make(map[string]bool)
		for _, t := range allow {
			ms.allowTools[strings.TrimSpace(t)] = true
		}
	}
	if len(deny) > 0 {
		ms.denyTools = make(map[string]bool)
		for _, t := range deny {
			ms.denyTools[strings.TrimSpace(t)] = true
		}
	}

	ms.registerTools()
}

// isToolAllowed checks if a tool should be registered.
func (ms *MCPServer) isToolAllowed(name string) bool {
	if ms.denyTools != nil && ms.denyTools[name] {
		return false
	}
	if ms.allowTools != nil && !ms.allowTools[name] {
		return false
	}
	return true
}

// registerTools adds allowed collector tools to the MCP server.
func (ms *MCPServer) registerTools() {
	if ms.isToolAllowed("get_hint_stats") {
		mcp.AddTool(ms.server, &mcp.Tool{
			Name:        "get_hint_stats",
			Description: "Get aggregate hint-telemetry statistics: event, session, and instance counts",
		}, ms.handleGetHintStats)
	}

	if ms.isToolAllowed("list_hint_events") {
		mcp.AddTool(ms.server, &mcp.Tool{
			Name:        "list_hint_events",
			Description: "List stored hint-telemetry events, newest first, with optional filters",
		}, ms.handleListHintEvents)
	}

	if ms.isToolAllowed("get_tutorial_progress") {
		mcp.AddTool(ms.server, &mcp.Tool{
			Name:        "get_tutorial_progress",
			Description: "Get each instance's furthest tutorial position derived from its transition events",
		}, ms.handleGetTutorialProgress)
	}
}

// Tool input/output types

type getHintStatsInput struct{}

type listHintEventsInput struct {
	InstanceID string `json:"instance_id,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Since      string `json:"since,omitempty"` // RFC3339
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

type hintEventInfo struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Time       string            `json:"time"`
	InstanceID string            `json:"instance_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type listHintEventsOutput struct {
	Events   []hintEventInfo `json:"events"`
	Returned int             `json:"returned"`
}

type getTutorialProgressInput struct{}

type tutorialProgressOutput struct {
	Instances []TutorialProgress `json:"instances"`
}

// Tool handlers

func (ms *MCPServer) handleGetHintStats(ctx context.Context, req *mcp.CallToolRequest, _ getHintStatsInput) (*mcp.CallToolResult, *CollectorStats, error) {
	stats, err := ms.store.GetUsageStats(ctx)
	if err != nil {
		return nil, nil, err
	}
	if ms.registry != nil {
		stats.TotalInstances, stats.ActiveInstances = ms.registry.Count()
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: formatJSON(stats)}},
	}, stats, nil
}

func (ms *MCPServer) handleListHintEvents(ctx context.Context, req *mcp.CallToolRequest, input listHintEventsInput) (*mcp.CallToolResult, listHintEventsOutput, error) {
	filter := EventFilter{
		InstanceID: input.InstanceID,
		SessionID:  input.SessionID,
		Name:       input.Name,
		Limit:      input.Limit,
		Offset:     input.Offset,
	}
	if filter.Limit == 0 {
		filter.Limit = 50
	}
	if input.Since != "" {
		t, err := time.Parse(time.RFC3339, input.Since)
		if err != nil {
			return nil, listHintEventsOutput{}, fmt.Errorf("invalid since time: %w", err)
		}
		filter.Since = t
	}

	events, err := ms.store.QueryEvents(ctx, filter)
	if err != nil {
		return nil, listHintEventsOutput{}, err
	}

	infos := make([]hintEventInfo, len(events))
	for i, e := range events {
		infos[i] = hintEventInfo{
			ID:         e.ID,
			Name:       e.Name,
			Time:       e.Time.Format(time.RFC3339),
			InstanceID: e.InstanceID,
			SessionID:  e.SessionID,
			Attributes: e.Attributes,
		}
	}
	output := listHintEventsOutput{Events: infos, Returned: len(infos)}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: formatJSON(output)}},
	}, output, nil
}

func (ms *MCPServer) handleGetTutorialProgress(ctx context.Context, req *mcp.CallToolRequest, _ getTutorialProgressInput) (*mcp.CallToolResult, tutorialProgressOutput, error) {
	progress, err := ms.store.QueryProgress(ctx)
	if err != nil {
		return nil, tutorialProgressOutput{}, err
	}
	output := tutorialProgressOutput{Instances: progress}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: formatJSON(output)}},
	}, output, nil
}

// RunStdio serves MCP over stdio until ctx is cancelled.
func (ms *MCPServer) RunStdio(ctx context.Context) error {
	return ms.server.Run(ctx, &mcp.LoggingTransport{Transport: &mcp.StdioTransport{}, Writer: os.Stderr})
}

// RunHTTP serves MCP over SSE until ctx is cancelled.
func (ms *MCPServer) RunHTTP(ctx context.Context, host string, port int) error {
	sseHandler := mcp.NewSSEHandler(func(req *http.Request) *mcp.Server { return ms.server }, nil)

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{Addr: addr, Handler: sseHandler}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	nudgelog.Log.Info("MCP server listening", "addr", addr)
	return srv.Serve(ln)
}

// Server returns the underlying MCP server.
func (ms *MCPServer) Server() *mcp.Server { return ms.server }

func formatJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
