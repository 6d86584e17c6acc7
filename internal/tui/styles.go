package tui

import (
	"sync"

	"charm.land/lipgloss/v2"
)

// Styles holds the computed lipgloss styles for the demo editor.
type Styles struct {
	LineNumber lipgloss.Style
	CursorCell lipgloss.Style
	Hint       lipgloss.Style
	Ghost      lipgloss.Style

	GutterActive lipgloss.Style
	GutterIdle   lipgloss.Style

	StatusBar   lipgloss.Style
	StatusState lipgloss.Style
	ConnOK      lipgloss.Style
	ConnBad     lipgloss.Style
	StatusDirty lipgloss.Style
	HelpText    lipgloss.Style
	BufferTitle lipgloss.Style
	TipsTitle   lipgloss.Style
}

var (
	stylesOnce sync.Once
	styles     Styles
)

// GetStyles returns the styles, building them on first use.
func GetStyles() *Styles {
	stylesOnce.Do(func() {
		styles = Styles{
			LineNumber: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
			CursorCell: lipgloss.NewStyle().Reverse(true),
			Hint:       lipgloss.NewStyle().Faint(true).Italic(true).Foreground(lipgloss.Color("245")),
			Ghost:      lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("242")),

			GutterActive: lipgloss.NewStyle().Foreground(lipgloss.Color("213")),
			GutterIdle:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),

			StatusBar:   lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("252")),
			StatusState: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111")),
			ConnOK:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			ConnBad:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
			StatusDirty: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			HelpText:    lipgloss.NewStyle().Faint(true),
			BufferTitle: lipgloss.NewStyle().Bold(true),
			TipsTitle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111")),
		}
	})
	return &styles
}
