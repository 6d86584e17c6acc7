package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-nudge/internal/collect"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collector usage statistics",
	Long: `Show aggregate statistics from a running collector: event, session,
and instance counts, storage size, and uptime.

Examples:
  nudge stats                        # From the local collector
  nudge stats --url http://host:8790 # From a remote collector
  nudge stats --json                 # JSON output`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var stats collect.CollectorStats
	if err := getJSON(ctx, "/v1/stats", &stats); err != nil {
		return err
	}

	if clientJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Events:\t%d\n", stats.TotalEvents)
	fmt.Fprintf(w, "Sessions:\t%d\n", stats.TotalSessions)
	fmt.Fprintf(w, "Instances:\t%d (%d active)\n", stats.TotalInstances, stats.ActiveInstances)
	fmt.Fprintf(w, "Storage:\t%s\n", formatBytes(stats.DBSizeBytes))
	fmt.Fprintf(w, "Uptime:\t%s\n", (time.Duration(stats.UptimeSeconds) * time.Second).String())
	return w.Flush()
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
