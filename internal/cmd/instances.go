package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-nudge/internal/config"
)

var instancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "List running nudge processes",
	Long: `List nudge processes registered on this machine, such as running
collectors. Entries for dead processes are cleaned up automatically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		instances, err := config.ListInstances()
		if err != nil {
			return err
		}

		if len(instances) == 0 {
			fmt.Println("No running nudge instances.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tPID\tADDRESS\tUPTIME")
		for _, inst := range instances {
			host := inst.Host
			if host == "" {
				host = "localhost"
			}
			addr := fmt.Sprintf("%s:%d", host, inst.Port)
			uptime := time.Since(inst.StartedAt).Truncate(time.Second)
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", inst.Type, inst.PID, addr, uptime)
		}
		return w.Flush()
	},
}
