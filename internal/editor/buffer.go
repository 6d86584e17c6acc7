package editor

import "strings"

// Buffer is an in-memory Document. The bundled TUI host backs each open
// file with one; tests use it directly.
type Buffer struct {
	lines   []string
	version int
}

// NewBuffer creates a buffer from text. The empty string yields a single
// empty line, matching how editors treat an empty file.
func NewBuffer(text string) *Buffer {
	return &Buffer{lines: strings.Split(text, "\n")}
}

func (b *Buffer) LineCount() int { return len(b.lines) }

func (b *Buffer) LineLen(line int) int {
	if line < 0 || line >= len(b.lines) {
		return 0
	}
	return len([]rune(b.lines[line]))
}

// Line returns the text of a zero-based line, or "" when out of range.
func (b *Buffer) Line(line int) string {
	if line < 0 || line >= len(b.lines) {
		return ""
	}
	return b.lines[line]
}

// Lines returns a copy of all lines.
func (b *Buffer) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Text returns the full buffer contents.
func (b *Buffer) Text() string { return strings.Join(b.lines, "\n") }

// SetText replaces the buffer contents and bumps the version.
func (b *Buffer) SetText(text string) {
	b.lines = strings.Split(text, "\n")
	b.version++
}

// Version increments on every content change. Hosts diff it to decide
// whether an update carried a document change.
func (b *Buffer) Version() int { return b.version }

// MemEditor is a pointer-identity Editor over a Buffer. Hosts keep one per
// open pane so == works as editor identity.
type MemEditor struct {
	name string
	kind Kind
	buf  *Buffer
	sels []Selection
}

// NewMemEditor creates an editor of the given kind over fresh text, with a
// collapsed caret at the origin.
func NewMemEditor(name string, kind Kind, text string) *MemEditor {
	return &MemEditor{
		name: name,
		kind: kind,
		buf:  NewBuffer(text),
		sels: []Selection{{}},
	}
}

// Name returns the display name (usually the file path).
func (e *MemEditor) Name() string { return e.name }

func (e *MemEditor) Document() Document { return e.buf }

// Buffer exposes the concrete document for hosts that edit it.
func (e *MemEditor) Buffer() *Buffer { return e.buf }

func (e *MemEditor) Selections() []Selection {
	out := make([]Selection, len(e.sels))
	copy(out, e.sels)
	return out
}

func (e *MemEditor) Kind() Kind { return e.kind }

// SetSelections replaces the selection set, primary first.
func (e *MemEditor) SetSelections(sels ...Selection) {
	e.sels = make([]Selection, len(sels))
	copy(e.sels, sels)
}

// SetCursor collapses the selection to a single caret.
func (e *MemEditor) SetCursor(line, col int) {
	p := Position{Line: line, Col: col}
	e.sels = []Selection{{Anchor: p, Active: p}}
}
