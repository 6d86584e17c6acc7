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

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show tutorial progress per instance",
	Long: `Show how far each editor instance has gotten through the onboarding
tutorial, derived from the transition events the collector has stored.

Examples:
  nudge progress
  nudge progress --json`,
	RunE: runProgress,
}

func runProgress(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var progress []collect.TutorialProgress
	if err := getJSON(ctx, "/v1/progress", &progress); err != nil {
		return err
	}

	if clientJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(progress)
	}

	if len(progress) == 0 {
		fmt.Println("No tutorial activity recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INSTANCE\tFURTHEST STATE\tTRANSITIONS\tLAST EVENT")
	for _, p := range progress {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			shortID(p.InstanceID), p.FurthestState, p.Transitions,
			p.LastEvent.Local().Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}
