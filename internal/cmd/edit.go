package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wethinkt/go-nudge/internal/nudgelog"
	"github.com/wethinkt/go-nudge/internal/tui"
)

// Edit command flags
var (
	editProvider   string
	editNoTutorial bool
	editCollector  string
)

var editCmd = &cobra.Command{
	Use:   "edit [file...]",
	Short: "Open the demo editor",
	Long: `Open the demo editor with inline suggestions.

With no files, opens a single scratch buffer. Files that do not exist
open as empty buffers and are created on save.

Examples:
  nudge edit                        # Scratch buffer
  nudge edit notes.txt              # Open a file
  nudge edit --provider http        # Use the HTTP suggestion provider
  nudge edit --no-tutorial          # Skip the onboarding hints`,
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	if logPath != "" {
		if err := nudgelog.Init(logPath); err != nil {
			return err
		}
		defer nudgelog.Log.Close()
	}

	c := cfg
	if editProvider != "" {
		c.Provider.Kind = editProvider
	}
	if editNoTutorial {
		c.Tutorial.Enabled = false
	}
	if editCollector != "" {
		c.Collector.Enabled = true
		c.Collector.URL = editCollector
	}

	host, err := tui.NewHost(c, args)
	if err != nil {
		return err
	}
	return host.Run()
}
