package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wethinkt/go-nudge/internal/config"
	"github.com/wethinkt/go-nudge/internal/telemetry"
	"github.com/wethinkt/go-nudge/internal/tui"
)

var tipsCmd = &cobra.Command{
	Use:   "tips",
	Short: "Show the suggestion tips page",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tipsPath, err := config.TipViewsPath(); err == nil {
			telemetry.NewTipCounter(tipsPath).Increment()
		}

		// Raw markdown when piped
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Print(tui.TipsMarkdown())
			return nil
		}

		width := 80
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && w < width {
			width = w
		}

		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			fmt.Print(tui.TipsMarkdown())
			return nil
		}
		out, err := r.Render(tui.TipsMarkdown())
		if err != nil {
			fmt.Print(tui.TipsMarkdown())
			return nil
		}
		fmt.Print(out)
		return nil
	},
}
