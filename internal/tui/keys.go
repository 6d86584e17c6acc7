package tui

import "charm.land/bubbles/v2/key"

// editorKeyMap defines key bindings for the demo editor.
type editorKeyMap struct {
	Accept     key.Binding
	Trigger    key.Binding
	Dismiss    key.Binding
	Tips       key.Binding
	Save       key.Binding
	NextBuffer key.Binding
	Quit       key.Binding
}

func defaultEditorKeyMap() editorKeyMap {
	return editorKeyMap{
		Accept: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "accept suggestion"),
		),
		Trigger: key.NewBinding(
			key.WithKeys("alt+c"),
			key.WithHelp("alt+c", "trigger suggestion"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "dismiss"),
		),
		Tips: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "tips page"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		NextBuffer: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "next buffer"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// tipsKeyMap defines key bindings for the tips overlay.
type tipsKeyMap struct {
	Close key.Binding
	Quit  key.Binding
}

func defaultTipsKeyMap() tipsKeyMap {
	return tipsKeyMap{
		Close: key.NewBinding(
			key.WithKeys("esc", "ctrl+t", "q"),
			key.WithHelp("esc", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}
