package tui

import (
	"github.com/charmbracelet/glamour"

	"github.com/wethinkt/go-nudge/internal/nudgelog"
)

// tipsMarkdown is the learn-more page shown by the tips overlay and the
// `nudge tips` command.
const tipsMarkdown = `# Nudge Tips

Nudge shows inline suggestions while you type. Three ways to work with
them:

## 1. Keep typing

Suggestions appear automatically when you pause at the end of a line.
Just keep typing to ignore one.

## 2. Accept with TAB

When ghost text appears after your cursor, press **TAB** to accept it.
Press **ESC** to dismiss it instead.

## 3. Trigger on demand

Press **Alt+C** to ask for a suggestion at any time, anywhere in the
line.

---

The indicator in the gutter shows when Nudge is thinking on your current
line. You can reopen this page with **Ctrl+T**.
`

// renderTips renders the tips page for the given width, falling back to
// the raw markdown if the renderer fails.
func renderTips(width int) string {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		nudgelog.Log.Warn("Tips renderer failed", "error", err)
		return tipsMarkdown
	}
	out, err := r.Render(tipsMarkdown)
	if err != nil {
		nudgelog.Log.Warn("Tips render failed", "error", err)
		return tipsMarkdown
	}
	return out
}

// TipsMarkdown exposes the tips page source for the CLI command.
func TipsMarkdown() string { return tipsMarkdown }
