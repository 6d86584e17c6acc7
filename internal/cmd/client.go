package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wethinkt/go-nudge/internal/collect"
	"github.com/wethinkt/go-nudge/internal/config"
)

// Collector client flags, shared by stats/events/tail/progress.
var (
	clientURL   string
	clientToken string
	clientJSON  bool
)

// collectorURL resolves the collector base URL: the --url flag, then a
// running collector from the instance registry, then the configured
// shipping URL, then the default bind address.
func collectorURL() string {
	if clientURL != "" {
		return strings.TrimSuffix(clientURL, "/")
	}
	if inst := config.FindCollector(); inst != nil {
		host := inst.Host
		if host == "" {
			host = "localhost"
		}
		return fmt.Sprintf("http://%s:%d", host, inst.Port)
	}
	if cfg.Collector.URL != "" {
		return strings.TrimSuffix(cfg.Collector.URL, "/")
	}
	return fmt.Sprintf("http://%s:%d", collect.DefaultHost, collect.DefaultPort)
}

func collectorToken() string {
	if clientToken != "" {
		return clientToken
	}
	return cfg.Collector.Token
}

// getJSON fetches path from the collector and decodes the response into
// out.
func getJSON(ctx context.Context, path string, out any) error {
	url := collectorURL() + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if token := collectorToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("collector request failed (is a collector running?): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("collector returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
