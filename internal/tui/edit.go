package tui

import "strings"

// Line edit primitives for the demo editor buffer. All positions are
// zero-based rune offsets; out-of-range positions are clamped.

func clampPos(lines []string, line, col int) (int, int) {
	if len(lines) == 0 {
		return 0, 0
	}
	if line < 0 {
		line = 0
	}
	if line >= len(lines) {
		line = len(lines) - 1
	}
	n := len([]rune(lines[line]))
	if col < 0 {
		col = 0
	}
	if col > n {
		col = n
	}
	return line, col
}

// insertText inserts text (possibly multi-line) at the caret and returns
// the new lines and caret.
func insertText(lines []string, line, col int, text string) ([]string, int, int) {
	if len(lines) == 0 {
		lines = []string{""}
	}
	line, col = clampPos(lines, line, col)

	runes := []rune(lines[line])
	before := string(runes[:col])
	after := string(runes[col:])

	parts := strings.Split(text, "\n")
	if len(parts) == 1 {
		lines[line] = before + text + after
		return lines, line, col + len([]rune(text))
	}

	out := make([]string, 0, len(lines)+len(parts)-1)
	out = append(out, lines[:line]...)
	out = append(out, before+parts[0])
	out = append(out, parts[1:len(parts)-1]...)
	last := parts[len(parts)-1]
	out = append(out, last+after)
	out = append(out, lines[line+1:]...)

	return out, line + len(parts) - 1, len([]rune(last))
}

// insertNewline splits the caret line.
func insertNewline(lines []string, line, col int) ([]string, int, int) {
	return insertText(lines, line, col, "\n")
}

// deleteBack removes the rune before the caret, joining lines at column
// zero. Returns changed=false at the very start of the buffer.
func deleteBack(lines []string, line, col int) (out []string, l, c int, changed bool) {
	if len(lines) == 0 {
		return lines, 0, 0, false
	}
	line, col = clampPos(lines, line, col)

	if col > 0 {
		runes := []rune(lines[line])
		lines[line] = string(runes[:col-1]) + string(runes[col:])
		return lines, line, col - 1, true
	}
	if line == 0 {
		return lines, line, col, false
	}

	prevLen := len([]rune(lines[line-1]))
	lines[line-1] += lines[line]
	out = append(lines[:line], lines[line+1:]...)
	return out, line - 1, prevLen, true
}

// deleteForward removes the rune under the caret, joining with the next
// line at end of line. Returns changed=false at the very end.
func deleteForward(lines []string, line, col int) (out []string, changed bool) {
	if len(lines) == 0 {
		return lines, false
	}
	line, col = clampPos(lines, line, col)

	runes := []rune(lines[line])
	if col < len(runes) {
		lines[line] = string(runes[:col]) + string(runes[col+1:])
		return lines, true
	}
	if line == len(lines)-1 {
		return lines, false
	}

	lines[line] += lines[line+1]
	return append(lines[:line+1], lines[line+2:]...), true
}
