package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wethinkt/go-nudge/internal/telemetry"
)

var tailInstance string

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Live-tail telemetry events from a collector",
	Long: `Stream events from a running collector over WebSocket as they arrive.
Recent events are replayed first, then the stream follows live. The
connection reconnects automatically.

Examples:
  nudge tail                        # All instances
  nudge tail --instance a3f8b2c1    # One instance
  nudge tail --json                 # JSONL output`,
	RunE: runTail,
}

func runTail(cmd *cobra.Command, args []string) error {
	base := collectorURL()
	wsURL := strings.Replace(base, "http://", "ws://", 1)
	wsURL = strings.Replace(wsURL, "https://", "wss://", 1)
	wsURL += "/v1/events/ws"
	if tailInstance != "" {
		wsURL += "?instance_id=" + url.QueryEscape(tailInstance)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		cancel()
	}()

	ch, err := telemetry.StreamEvents(ctx, wsURL, collectorToken())
	if err != nil {
		return err
	}

	for ev := range ch {
		if clientJSON {
			data, _ := json.Marshal(ev)
			fmt.Println(string(data))
		} else {
			printTailEvent(ev)
		}
	}
	return nil
}

func printTailEvent(e telemetry.Event) {
	ts := e.Time.Local().Format("15:04:05")
	line := fmt.Sprintf("%s  %-24s %s", ts, e.Name, shortID(e.InstanceID))
	if len(e.Attributes) > 0 {
		keys := make([]string, 0, len(e.Attributes))
		for k := range e.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + "=" + e.Attributes[k]
		}
		line += "  " + strings.Join(pairs, " ")
	}
	fmt.Println(line)
}
