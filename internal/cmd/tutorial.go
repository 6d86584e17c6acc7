package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-nudge/internal/config"
	"github.com/wethinkt/go-nudge/internal/telemetry"
	"github.com/wethinkt/go-nudge/internal/tutorial"
)

var tutorialCmd = &cobra.Command{
	Use:   "tutorial",
	Short: "Show or reset local tutorial progress",
}

var tutorialStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the persisted tutorial state",
	RunE: func(cmd *cobra.Command, args []string) error {
		statePath, err := config.TutorialStatePath()
		if err != nil {
			return err
		}

		store := tutorial.NewFileStore(statePath)
		state, ok := store.LoadState()
		if !ok {
			fmt.Println("Tutorial state: not started")
		} else {
			fmt.Printf("Tutorial state: %s\n", state.ID())
		}

		tipsPath, err := config.TipViewsPath()
		if err != nil {
			return err
		}
		views := telemetry.NewTipCounter(tipsPath).Views()
		fmt.Printf("Tips page views: %d\n", views)
		return nil
	},
}

var tutorialResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restart the tutorial from the beginning",
	RunE: func(cmd *cobra.Command, args []string) error {
		statePath, err := config.TutorialStatePath()
		if err != nil {
			return err
		}
		if err := os.Remove(statePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove tutorial state: %w", err)
		}
		fmt.Println("Tutorial progress reset. Hints will restart on the next editor session.")
		return nil
	},
}
