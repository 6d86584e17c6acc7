package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/wethinkt/go-nudge/internal/editor"
	"github.com/wethinkt/go-nudge/internal/nudgelog"
	"github.com/wethinkt/go-nudge/internal/suggest"
)

// hintMsg carries a hint surface update into the bubbletea loop.
type hintMsg struct {
	editor editor.Editor
	line   int
	text   string
	clear  bool
}

// gutterMsg carries a gutter surface update into the bubbletea loop.
type gutterMsg struct {
	editor editor.Editor
	line   int
	style  editor.GutterStyle
	clear  bool
}

// suggestionMsg mirrors suggestion service actions into the loop so the
// ghost text and activity indicator repaint.
type suggestionMsg struct {
	action suggest.Action
}

// connMsg reports a credentials validity change.
type connMsg struct {
	valid bool
}

// uiSurfaces bridges the engine's render callbacks into tea messages. The
// engine calls Apply/Clear from its own goroutines; sends never block so a
// stalled UI cannot stall the engine.
type uiSurfaces struct {
	ch chan tea.Msg
}

func newUISurfaces() *uiSurfaces {
	return &uiSurfaces{ch: make(chan tea.Msg, 64)}
}

func (s *uiSurfaces) send(msg tea.Msg) {
	select {
	case s.ch <- msg:
	default:
		nudgelog.Log.Warn("Surface channel full, dropping update")
	}
}

// listen returns a command that delivers the next surface message. The
// model re-issues it after each receipt.
func (s *uiSurfaces) listen() tea.Cmd {
	return func() tea.Msg {
		return <-s.ch
	}
}

func (s *uiSurfaces) ApplyHint(e editor.Editor, line int, text string) {
	s.send(hintMsg{editor: e, line: line, text: text})
}

func (s *uiSurfaces) ClearHint(e editor.Editor) {
	s.send(hintMsg{editor: e, clear: true})
}

func (s *uiSurfaces) ApplyGutter(e editor.Editor, line int, style editor.GutterStyle) {
	s.send(gutterMsg{editor: e, line: line, style: style})
}

func (s *uiSurfaces) ClearGutter(e editor.Editor) {
	s.send(gutterMsg{editor: e, clear: true})
}
