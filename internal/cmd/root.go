// Package cmd provides the CLI commands for nudge.
package cmd

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-nudge/internal/config"
	nudgeI18n "github.com/wethinkt/go-nudge/internal/i18n"
)

// global flags
var (
	profileFile *os.File // held open for profiling
	logPath     string
	verbose     bool
)

// cfg is the loaded configuration, available to all commands after
// PersistentPreRunE.
var cfg config.Config

// rootCmd is the root command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "nudge",
	Short: "Inline suggestion engine with an onboarding tutorial",
	Long: `nudge is an inline code suggestion engine for the terminal. It shows
ghost-text completions while you type and walks new users through them
with a three-step tutorial.

Running without a subcommand opens the demo editor.

Commands:
  edit      Open the demo editor (default)
  collect   Start the telemetry collector server
  stats     Show collector usage statistics
  events    Search collected telemetry events
  tail      Live-tail telemetry events from a collector
  tutorial  Show or reset tutorial progress
  tips      Show the suggestion tips page

Examples:
  nudge                           # Open a scratch buffer
  nudge edit notes.txt            # Open a file
  nudge collect --token secret    # Start the collector with auth
  nudge tail                      # Follow events from the local collector`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Start pprof profiling if NUDGE_PROFILE is set
		if profilePath := os.Getenv("NUDGE_PROFILE"); profilePath != "" {
			f, err := os.Create(profilePath)
			if err != nil {
				return fmt.Errorf("create profile file: %w", err)
			}
			profileFile = f

			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				profileFile = nil
				return fmt.Errorf("start CPU profile: %w", err)
			}
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		nudgeI18n.Init(nudgeI18n.ResolveLocale(cfg.Language))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		// Stop CPU profiling
		if profileFile != nil {
			pprof.StopCPUProfile()
			profileFile.Close()
			profileFile = nil
		}
		return nil
	},
	RunE: runEdit,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Editor flags, both on the explicit subcommand and on root since
	// it opens the editor directly.
	for _, c := range []*cobra.Command{rootCmd, editCmd} {
		c.Flags().StringVar(&logPath, "log", "", "write debug log to file")
		c.Flags().StringVar(&editProvider, "provider", "", "suggestion provider (words|http)")
		c.Flags().BoolVar(&editNoTutorial, "no-tutorial", false, "disable the onboarding hints")
		c.Flags().StringVar(&editCollector, "collector", "", "ship telemetry to this collector URL")
	}

	collectCmd.Flags().IntVarP(&collectPort, "port", "p", 0, "server port (default from config)")
	collectCmd.Flags().StringVar(&collectHost, "host", "", "server host (default from config)")
	collectCmd.Flags().StringVar(&collectStorage, "storage", "", "DuckDB path (default ~/.nudge/events.duckdb)")
	collectCmd.Flags().StringVar(&collectToken, "token", "", "require bearer token auth")
	collectCmd.Flags().BoolVarP(&collectQuiet, "quiet", "q", false, "suppress HTTP request logging")
	collectCmd.Flags().IntVar(&collectMCPPort, "mcp-port", 0, "also serve MCP over SSE on this port")
	collectMCPCmd.Flags().StringSliceVar(&mcpAllowTools, "allow-tool", nil, "only expose these MCP tools")
	collectMCPCmd.Flags().StringSliceVar(&mcpDenyTools, "deny-tool", nil, "hide these MCP tools")
	collectCmd.AddCommand(collectMCPCmd)

	for _, c := range []*cobra.Command{statsCmd, eventsCmd, tailCmd, progressCmd} {
		c.Flags().StringVar(&clientURL, "url", "", "collector base URL (default: discover running collector)")
		c.Flags().StringVar(&clientToken, "token", "", "bearer token for the collector")
		c.Flags().BoolVar(&clientJSON, "json", false, "output as JSON")
	}
	eventsCmd.Flags().StringVar(&eventsInstance, "instance", "", "filter by instance id")
	eventsCmd.Flags().StringVar(&eventsSession, "session", "", "filter by session id")
	eventsCmd.Flags().StringVar(&eventsName, "name", "", "filter by event name")
	eventsCmd.Flags().StringVar(&eventsSince, "since", "", "only events after this RFC3339 time")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 50, "maximum events to return")
	tailCmd.Flags().StringVar(&tailInstance, "instance", "", "only events from this instance")

	tutorialCmd.AddCommand(tutorialStatusCmd)
	tutorialCmd.AddCommand(tutorialResetCmd)

	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(tailCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(tutorialCmd)
	rootCmd.AddCommand(tipsCmd)
	rootCmd.AddCommand(instancesCmd)
	rootCmd.AddCommand(languageCmd)
	rootCmd.AddCommand(versionCmd)
}
