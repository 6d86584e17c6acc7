package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-nudge/internal/telemetry"
)

// Events command flags
var (
	eventsInstance string
	eventsSession  string
	eventsName     string
	eventsSince    string
	eventsLimit    int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Search collected telemetry events",
	Long: `Search events stored by a running collector, newest first.

Examples:
  nudge events                            # Most recent events
  nudge events --name autotrigger         # Only autotrigger transitions
  nudge events --instance a3f8 --limit 10 # From one instance
  nudge events --since 2026-08-28T00:00:00Z --json`,
	RunE: runEvents,
}

func runEvents(cmd *cobra.Command, args []string) error {
	q := url.Values{}
	if eventsInstance != "" {
		q.Set("instance_id", eventsInstance)
	}
	if eventsSession != "" {
		q.Set("session_id", eventsSession)
	}
	if eventsName != "" {
		q.Set("name", eventsName)
	}
	if eventsSince != "" {
		if _, err := time.Parse(time.RFC3339, eventsSince); err != nil {
			return fmt.Errorf("invalid --since %q: %w", eventsSince, err)
		}
		q.Set("since", eventsSince)
	}
	q.Set("limit", strconv.Itoa(eventsLimit))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var events []telemetry.Event
	if err := getJSON(ctx, "/v1/events/search?"+q.Encode(), &events); err != nil {
		return err
	}

	if clientJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}

	if len(events) == 0 {
		fmt.Println("No events found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tNAME\tINSTANCE\tSESSION")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Time.Local().Format("2006-01-02 15:04:05"),
			e.Name, shortID(e.InstanceID), shortID(e.SessionID))
	}
	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
