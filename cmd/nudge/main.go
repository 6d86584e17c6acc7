// nudge is an inline suggestion engine for the terminal, with an
// onboarding tutorial and a telemetry collector.
package main

import (
	"fmt"
	"os"

	"github.com/wethinkt/go-nudge/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
