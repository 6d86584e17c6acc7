// Package editor defines the host-editor abstraction the nudge engine is
// written against. A host (the bundled TUI, an LSP bridge, a test harness)
// adapts its own buffer and cursor model to these interfaces and feeds
// events into the tracker; the engine never talks to a concrete editor
// directly.
//
// Editor and Document values are compared with ==. Hosts must hand out the
// same pointer-backed value for the same underlying editor across events;
// two editors showing identical content are still distinct.
package editor

// Kind classifies an editor surface. Only file editors participate in
// tracking; previews and virtual panes (logs, diffs, pickers) are ignored.
type Kind string

const (
	KindFile    Kind = "file"
	KindPreview Kind = "preview"
	KindVirtual Kind = "virtual"
)

// Document is the text buffer behind an editor. Identity is ==.
type Document interface {
	// LineCount returns the number of lines in the buffer.
	LineCount() int

	// LineLen returns the rune length of the given zero-based line,
	// or 0 when the line is out of range.
	LineLen(line int) int
}

// Editor is one visible editor pane. Identity is ==.
type Editor interface {
	// Document returns the buffer this editor displays.
	Document() Document

	// Selections returns the current selections, primary first.
	Selections() []Selection

	// Kind reports what sort of surface this editor is.
	Kind() Kind
}

// IsTextEditor reports whether e is a real, trackable file editor.
func IsTextEditor(e Editor) bool {
	return e != nil && e.Kind() == KindFile
}

// Reason says what caused a lines-change notification.
type Reason string

const (
	// ReasonEditor: a different editor became active.
	ReasonEditor Reason = "editor"

	// ReasonSelection: the caret or selection moved.
	ReasonSelection Reason = "selection"

	// ReasonContent: the document text changed.
	ReasonContent Reason = "content"

	// ReasonSuggestion is used by consumers that refresh in response to
	// the suggestion service rather than the tracker. The tracker itself
	// never emits it.
	ReasonSuggestion Reason = "suggestion"
)

// LinesChangeEvent is the tracker's deduplicated notification: the tracked
// editor and its selections reduced to line indices.
type LinesChangeEvent struct {
	Editor     Editor
	Selections []LineSelection
	Reason     Reason
}

// AtLineEnd reports whether the primary caret sits at the end of its line.
// False when the editor has no selections or no document.
func AtLineEnd(e Editor) bool {
	if e == nil || e.Document() == nil {
		return false
	}
	sels := e.Selections()
	if len(sels) == 0 {
		return false
	}
	active := sels[0].Active
	return active.Col >= e.Document().LineLen(active.Line)
}
