package editor

// GutterStyle selects which gutter indicator is shown. The two styles are
// mutually exclusive per editor.
type GutterStyle string

const (
	// GutterActive: a suggestion request is in flight.
	GutterActive GutterStyle = "active"

	// GutterIdle: the engine is attached but idle.
	GutterIdle GutterStyle = "idle"
)

// HintSurface renders the end-of-line tutorial hint. Implementations must
// treat the hint as zero-width: it is pinned after the end of the line and
// never occupies document columns. Applying a hint replaces any previous
// hint on that editor.
type HintSurface interface {
	ApplyHint(e Editor, line int, text string)
	ClearHint(e Editor)
}

// GutterSurface renders the per-line activity indicator. Applying a style
// replaces the other style on that editor.
type GutterSurface interface {
	ApplyGutter(e Editor, line int, style GutterStyle)
	ClearGutter(e Editor)
}
