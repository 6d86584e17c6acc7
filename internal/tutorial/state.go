// Package tutorial implements the onboarding state machine behind the
// end-of-line hints. The machine walks a fixed sequence (welcome the user,
// teach accepting, teach manual triggering, point at the tips page) and
// parks in End forever once the user has seen it through or dismissed it.
//
// States:
//   - Start: armed, no hint yet. Waits for the caret to sit at a line end.
//   - Autotrigger: "start typing" hint.
//   - PressTab: "press TAB" hint, shown while a suggestion is on screen.
//     Falls back to Autotrigger on ordinary edits.
//   - Manualtrigger: "trigger manually" hint.
//   - TryMoreEx: "open the tips page" hint.
//   - End: tutorial over, never shows again.
package tutorial

import "github.com/wethinkt/go-nudge/internal/i18n"

// State is the current tutorial phase. Progression is monotonic: the
// machine never moves backwards, except for the PressTab/Autotrigger pair
// which swap freely while teaching the first tip.
type State int

const (
	StateStart State = iota
	StateAutotrigger
	StatePressTab
	StateManualtrigger
	StateTryMoreEx
	StateEnd
)

// String returns the human-readable name of the state.
func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateAutotrigger:
		return "autotrigger"
	case StatePressTab:
		return "presstab"
	case StateManualtrigger:
		return "manualtrigger"
	case StateTryMoreEx:
		return "trymoreex"
	case StateEnd:
		return "end"
	default:
		return "unknown"
	}
}

// ID returns the stable identifier used in telemetry. These values are
// recorded server-side; do not renumber.
func (s State) ID() string {
	switch s {
	case StateStart:
		return "onboard_start"
	case StateAutotrigger:
		return "onboard_autotrigger"
	case StatePressTab:
		return "onboard_presstab"
	case StateManualtrigger:
		return "onboard_manualtrigger"
	case StateTryMoreEx:
		return "onboard_trymore"
	case StateEnd:
		return "onboard_end"
	default:
		return "onboard_unknown"
	}
}

// SuppressWhileRunning reports whether this state's hint is hidden while a
// suggestion request is in flight. PressTab is the exception: its hint must
// stay up exactly when a suggestion is on screen.
func (s State) SuppressWhileRunning() bool {
	switch s {
	case StateAutotrigger, StateManualtrigger, StateTryMoreEx:
		return true
	default:
		return false
	}
}

// valid reports whether s is one of the defined states. Used when
// restoring persisted state.
func (s State) valid() bool {
	return s >= StateStart && s <= StateEnd
}

func autotriggerHint() string {
	return i18n.T("hint.autotrigger",
		"Nudge Tip 1/3: Start typing to get suggestions ([ESC] to exit)")
}

func pressTabHint() string {
	return i18n.T("hint.presstab",
		"Nudge Tip 1/3: Press [TAB] to accept ([ESC] to exit)")
}

func manualTriggerHint() string {
	return i18n.T("hint.manualtrigger",
		"Nudge Tip 2/3: Trigger suggestions with [ALT] + [C] ([ESC] to exit)")
}

func tryMoreHint() string {
	return i18n.T("hint.trymore",
		"Nudge Tip 3/3: For more examples, open the tips page with [CTRL] + [T] ([ESC] to exit)")
}
