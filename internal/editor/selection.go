package editor

// Position is a caret location: zero-based line and rune column.
type Position struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// Selection is a full-fidelity selection span. A collapsed caret has
// Anchor == Active.
type Selection struct {
	Anchor Position `json:"anchor"`
	Active Position `json:"active"`
}

// LineSelection is a selection reduced to line indices. Anchor is where the
// selection started; Active is where the caret is. Anchor may be greater
// than Active for upward selections.
type LineSelection struct {
	Anchor int `json:"anchor"`
	Active int `json:"active"`
}

// Lines reduces a Selection to its line span.
func (s Selection) Lines() LineSelection {
	return LineSelection{Anchor: s.Anchor.Line, Active: s.Active.Line}
}

// LineSelections reduces an editor's current selections to line spans.
// Returns nil when the editor is nil.
func LineSelections(e Editor) []LineSelection {
	if e == nil {
		return nil
	}
	sels := e.Selections()
	if len(sels) == 0 {
		return nil
	}
	out := make([]LineSelection, len(sels))
	for i, s := range sels {
		out[i] = s.Lines()
	}
	return out
}

// SameLine reports whether two line selections cover the same span.
// Both endpoints participate in the comparison.
func SameLine(a, b LineSelection) bool {
	return a.Active == b.Active && a.Anchor == b.Anchor
}

// SameLines reports whether two selection sets are element-wise equal in
// order. Two empty sets are equal regardless of nil-ness.
func SameLines(a, b []LineSelection) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !SameLine(a[i], b[i]) {
			return false
		}
	}
	return true
}

// ContainsLine reports whether line falls within the selection span,
// inclusive of both endpoints and independent of selection direction.
func (s LineSelection) ContainsLine(line int) bool {
	lo, hi := s.Anchor, s.Active
	if lo > hi {
		lo, hi = hi, lo
	}
	return line >= lo && line <= hi
}
