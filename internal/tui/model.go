package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/wethinkt/go-nudge/internal/editor"
	"github.com/wethinkt/go-nudge/internal/i18n"
	"github.com/wethinkt/go-nudge/internal/suggest"
)

// bufferState is one open buffer: the mirrored engine editor plus the
// lines and caret the UI edits directly.
type bufferState struct {
	ed      *editor.MemEditor
	path    string
	lines   []string
	line    int
	col     int
	dirty   bool
	savedAt time.Time
}

func newBufferState(ed *editor.MemEditor, path string) *bufferState {
	return &bufferState{
		ed:    ed,
		path:  path,
		lines: strings.Split(ed.Buffer().Text(), "\n"),
	}
}

// Model is the top-level bubbletea model for the demo editor.
type Model struct {
	host  *Host
	keys  editorKeyMap
	tkeys tipsKeyMap

	bufs   []*bufferState
	active int

	width, height int
	scroll        int

	// Hint decoration, keyed to the editor it was applied to.
	hintEditor editor.Editor
	hintLine   int
	hintText   string

	// Gutter decoration.
	gutterEditor editor.Editor
	gutterLine   int
	gutterStyle  editor.GutterStyle
	gutterSet    bool

	ghost     string
	running   bool
	connValid bool

	spinner   spinner.Model
	tipsOpen  bool
	tipsView  viewport.Model
	tipsReady bool
}

func newModel(h *Host) Model {
	s := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(GetStyles().GutterActive),
	)

	bufs := make([]*bufferState, len(h.editors))
	for i, ed := range h.editors {
		bufs[i] = newBufferState(ed, h.paths[i])
	}

	return Model{
		host:      h,
		keys:      defaultEditorKeyMap(),
		tkeys:     defaultTipsKeyMap(),
		bufs:      bufs,
		spinner:   s,
		connValid: h.conn.Valid(),
	}
}

func (m Model) buf() *bufferState { return m.bufs[m.active] }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.host.surfaces.listen(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		contentWidth := msg.Width - 8
		contentHeight := msg.Height - 6
		if !m.tipsReady {
			m.tipsView = viewport.New()
			m.tipsReady = true
		}
		m.tipsView.SetWidth(contentWidth)
		m.tipsView.SetHeight(contentHeight)
		if m.tipsOpen {
			m.tipsView.SetContent(renderTips(contentWidth))
		}
		m.ensureVisible()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case hintMsg:
		if msg.clear {
			if m.hintEditor == nil || m.hintEditor == msg.editor {
				m.hintEditor = nil
				m.hintText = ""
			}
		} else {
			m.hintEditor = msg.editor
			m.hintLine = msg.line
			m.hintText = msg.text
		}
		return m, m.host.surfaces.listen()

	case gutterMsg:
		if msg.clear {
			if m.gutterEditor == nil || m.gutterEditor == msg.editor {
				m.gutterSet = false
				m.gutterEditor = nil
			}
		} else {
			m.gutterEditor = msg.editor
			m.gutterLine = msg.line
			m.gutterStyle = msg.style
			m.gutterSet = true
		}
		return m, m.host.surfaces.listen()

	case suggestionMsg:
		m.running = m.host.svc.Running()
		m.ghost = ""
		if shown := m.host.svc.Shown(); len(shown) > 0 {
			m.ghost = shown[0].Text
		}
		return m, m.host.surfaces.listen()

	case connMsg:
		m.connValid = msg.valid
		return m, m.host.surfaces.listen()

	case tea.KeyMsg:
		if m.tipsOpen {
			return m.updateTips(msg)
		}
		return m.updateEditor(msg)
	}

	return m, nil
}

func (m Model) updateTips(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.tkeys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.tkeys.Close):
		m.tipsOpen = false
		if m.host.annot != nil {
			m.host.annot.Refresh(editor.ReasonSelection)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.tipsView, cmd = m.tipsView.Update(msg)
	return m, cmd
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Save):
		m.save()
		return m, nil

	case key.Matches(msg, m.keys.Tips):
		m.openTips()
		return m, nil

	case key.Matches(msg, m.keys.Accept):
		m.acceptSuggestion()
		return m, nil

	case key.Matches(msg, m.keys.Trigger):
		m.requestSuggestion(suggest.TriggerOnDemand)
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		if m.ghost != "" {
			m.host.svc.DismissShown()
			m.ghost = ""
		} else if m.host.annot != nil {
			m.host.annot.DismissTutorial()
		}
		return m, nil

	case key.Matches(msg, m.keys.NextBuffer):
		m.switchBuffer()
		return m, nil
	}

	m.handleEditKey(msg.String())
	return m, nil
}

// handleEditKey applies a plain editing key to the active buffer.
func (m *Model) handleEditKey(s string) {
	b := m.buf()

	switch s {
	case "enter":
		b.lines, b.line, b.col = insertNewline(b.lines, b.line, b.col)
		m.syncContent()
	case "backspace":
		var changed bool
		b.lines, b.line, b.col, changed = deleteBack(b.lines, b.line, b.col)
		if changed {
			m.syncContent()
		}
	case "delete":
		var changed bool
		b.lines, changed = deleteForward(b.lines, b.line, b.col)
		if changed {
			m.syncContent()
		}
	case "left":
		if b.col > 0 {
			b.col--
		} else if b.line > 0 {
			b.line--
			b.col = len([]rune(b.lines[b.line]))
		}
		m.syncCursor()
	case "right":
		if b.col < len([]rune(b.lines[b.line])) {
			b.col++
		} else if b.line < len(b.lines)-1 {
			b.line++
			b.col = 0
		}
		m.syncCursor()
	case "up":
		if b.line > 0 {
			b.line--
			b.line, b.col = clampPos(b.lines, b.line, b.col)
		}
		m.syncCursor()
	case "down":
		if b.line < len(b.lines)-1 {
			b.line++
			b.line, b.col = clampPos(b.lines, b.line, b.col)
		}
		m.syncCursor()
	case "home":
		b.col = 0
		m.syncCursor()
	case "end":
		b.col = len([]rune(b.lines[b.line]))
		m.syncCursor()
	case "pgup":
		b.line -= m.editorHeight()
		b.line, b.col = clampPos(b.lines, b.line, b.col)
		m.syncCursor()
	case "pgdown":
		b.line += m.editorHeight()
		b.line, b.col = clampPos(b.lines, b.line, b.col)
		m.syncCursor()
	case "space":
		m.insertRunes(" ")
	default:
		if r := []rune(s); len(r) == 1 && r[0] >= ' ' {
			m.insertRunes(s)
		}
	}
}

func (m *Model) insertRunes(s string) {
	b := m.buf()
	b.lines, b.line, b.col = insertText(b.lines, b.line, b.col, s)
	m.syncContent()

	// Autotrigger at line end, like the engine expects from a real host.
	if editor.AtLineEnd(b.ed) && !m.host.svc.Running() {
		m.requestSuggestion(suggest.TriggerAuto)
	}
}

// syncContent mirrors lines and caret into the engine editor and fires
// the content-change event.
func (m *Model) syncContent() {
	b := m.buf()
	b.ed.Buffer().SetText(strings.Join(b.lines, "\n"))
	b.ed.SetCursor(b.line, b.col)
	b.dirty = true
	m.host.tracker.HandleDocumentChanged(b.ed.Document(), 1)
	m.ensureVisible()
}

// syncCursor mirrors the caret and fires the selection-change event.
func (m *Model) syncCursor() {
	b := m.buf()
	b.ed.SetCursor(b.line, b.col)
	m.host.tracker.HandleSelectionChanged(b.ed, b.ed.Selections())
	m.ensureVisible()
}

func (m *Model) requestSuggestion(trigger suggest.TriggerKind) {
	b := m.buf()
	lines := make([]string, len(b.lines))
	copy(lines, b.lines)
	m.host.svc.Request(context.Background(), b.ed, suggest.Request{
		Path:    b.path,
		Lines:   lines,
		Line:    b.line,
		Col:     b.col,
		Trigger: trigger,
	})
}

func (m *Model) acceptSuggestion() {
	b := m.buf()
	rec, ok := m.host.svc.Accept(b.ed)
	if !ok {
		return
	}
	m.ghost = ""
	b.lines, b.line, b.col = insertText(b.lines, b.line, b.col, rec.Text)
	m.syncContent()
}

func (m *Model) switchBuffer() {
	if len(m.bufs) < 2 {
		return
	}
	m.host.svc.DismissShown()
	m.ghost = ""
	m.active = (m.active + 1) % len(m.bufs)
	m.scroll = 0
	m.host.tracker.HandleEditorChanged(m.buf().ed)
	m.ensureVisible()
}

func (m *Model) save() {
	b := m.buf()
	data := strings.Join(b.lines, "\n") + "\n"
	if err := os.WriteFile(b.path, []byte(data), 0644); err != nil {
		return
	}
	b.dirty = false
	b.savedAt = time.Now()
}

func (m *Model) openTips() {
	m.tipsOpen = true
	m.host.tips.Increment()
	if m.tipsReady {
		m.tipsView.SetContent(renderTips(m.width - 8))
		m.tipsView.GotoTop()
	}
	if m.host.annot != nil {
		m.host.annot.Refresh(editor.ReasonSelection)
	}
}

// editorHeight is the number of buffer lines visible at once.
func (m Model) editorHeight() int {
	h := m.height - 3 // title, status, help
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) ensureVisible() {
	b := m.buf()
	h := m.editorHeight()
	if b.line < m.scroll {
		m.scroll = b.line
	}
	if b.line >= m.scroll+h {
		m.scroll = b.line - h + 1
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

func (m Model) View() tea.View {
	if m.width == 0 {
		v := tea.NewView("")
		v.AltScreen = true
		return v
	}

	var content string
	if m.tipsOpen {
		content = m.viewTips()
	} else {
		content = m.viewEditor()
	}

	v := tea.NewView(content)
	v.AltScreen = true
	return v
}

func (m Model) viewTips() string {
	st := GetStyles()
	title := st.TipsTitle.Render(i18n.T("tui.tips.title", "Nudge Tips"))
	help := st.HelpText.Render(i18n.T("tui.tips.help", "esc: close · ↑/↓: scroll"))
	return fmt.Sprintf("\n  %s\n\n%s\n\n  %s", title, m.tipsView.View(), help)
}

func (m Model) viewEditor() string {
	st := GetStyles()
	b := m.buf()
	h := m.editorHeight()

	var sb strings.Builder
	sb.WriteString(m.renderTitle())
	sb.WriteString("\n")

	for row := 0; row < h; row++ {
		i := m.scroll + row
		if i < len(b.lines) {
			sb.WriteString(m.renderLine(b, i, st))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(m.renderStatusBar())
	sb.WriteString("\n")
	sb.WriteString(st.HelpText.Render(m.helpLine()))
	return sb.String()
}

func (m Model) renderTitle() string {
	st := GetStyles()
	b := m.buf()
	name := b.path
	if b.dirty {
		name += " " + st.StatusDirty.Render("[+]")
	}
	title := st.BufferTitle.Render(name)
	if len(m.bufs) > 1 {
		title += st.HelpText.Render(fmt.Sprintf("  (%d/%d)", m.active+1, len(m.bufs)))
	}
	return " " + title
}

// renderLine composes gutter, line number, text with cursor and ghost,
// and the end-of-line hint for one buffer line.
func (m Model) renderLine(b *bufferState, i int, st *Styles) string {
	gutter := "  "
	if m.gutterSet && m.gutterEditor == b.ed && m.gutterLine == i {
		if m.gutterStyle == editor.GutterActive {
			gutter = m.spinner.View() + " "
		} else {
			gutter = st.GutterIdle.Render("○") + " "
		}
	}

	lineno := st.LineNumber.Render(fmt.Sprintf("%3d ", i+1))

	text := m.renderLineText(b, i, st)

	if m.hintText != "" && m.hintEditor == b.ed && m.hintLine == i {
		text += "  " + st.Hint.Render(m.hintText)
	}

	return ansi.Truncate(gutter+lineno+text, m.width, "…")
}

// renderLineText draws the line's runes with the cursor cell and, on the
// caret line, the ghost text.
func (m Model) renderLineText(b *bufferState, i int, st *Styles) string {
	runes := []rune(b.lines[i])
	if i != b.line {
		return string(runes)
	}

	col := b.col
	if col > len(runes) {
		col = len(runes)
	}
	before := string(runes[:col])
	after := string(runes[col:])

	ghost := ""
	if m.ghost != "" {
		g := m.ghost
		if nl := strings.IndexByte(g, '\n'); nl >= 0 {
			g = g[:nl] + "…"
		}
		ghost = st.Ghost.Render(g)
	}

	// Cursor: reverse the rune under the caret, or a trailing space when
	// the caret sits at end of line.
	if len(after) > 0 {
		afterRunes := []rune(after)
		return before + ghost + st.CursorCell.Render(string(afterRunes[0])) + string(afterRunes[1:])
	}
	return before + ghost + st.CursorCell.Render(" ")
}

func (m Model) renderStatusBar() string {
	st := GetStyles()

	state := st.StatusState.Render(m.host.machine.Current().ID())

	conn := st.ConnOK.Render("● " + i18n.T("tui.status.connected", "connected"))
	if !m.connValid {
		conn = st.ConnBad.Render("● " + i18n.T("tui.status.disconnected", "disconnected"))
	}

	var extra []string
	if m.running {
		extra = append(extra, m.spinner.View()+" "+i18n.T("tui.status.thinking", "thinking"))
	}
	b := m.buf()
	if !b.savedAt.IsZero() {
		extra = append(extra, i18n.Tf("tui.status.saved", "saved %s", i18n.RelativeTime(b.savedAt)))
	}

	parts := append([]string{state, conn}, extra...)
	bar := " " + strings.Join(parts, " │ ")
	pad := m.width - lipgloss.Width(bar)
	if pad > 0 {
		bar += strings.Repeat(" ", pad)
	}
	return st.StatusBar.Render(ansi.Truncate(bar, m.width, ""))
}

func (m Model) helpLine() string {
	bindings := []key.Binding{
		m.keys.Accept, m.keys.Trigger, m.keys.Tips, m.keys.Save,
	}
	if len(m.bufs) > 1 {
		bindings = append(bindings, m.keys.NextBuffer)
	}
	bindings = append(bindings, m.keys.Quit)

	parts := make([]string, len(bindings))
	for i, kb := range bindings {
		parts[i] = kb.Help().Key + " " + kb.Help().Desc
	}
	return " " + strings.Join(parts, " · ")
}
