package tui

import (
	"reflect"
	"testing"
)

func TestInsertTextSingleLine(t *testing.T) {
	lines, line, col := insertText([]string{"helo world"}, 0, 3, "l")
	if want := []string{"hello world"}; !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}
	if line != 0 || col != 4 {
		t.Errorf("caret = (%d,%d), want (0,4)", line, col)
	}
}

func TestInsertTextMultiLine(t *testing.T) {
	lines, line, col := insertText([]string{"abXYcd"}, 0, 2, "one\ntwo\nthree")
	want := []string{"abone", "two", "threeXYcd"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}
	if line != 2 || col != 5 {
		t.Errorf("caret = (%d,%d), want (2,5)", line, col)
	}
}

func TestInsertTextClampsCaret(t *testing.T) {
	lines, line, col := insertText([]string{"ab"}, 9, 9, "c")
	if want := []string{"abc"}; !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}
	if line != 0 || col != 3 {
		t.Errorf("caret = (%d,%d), want (0,3)", line, col)
	}
}

func TestInsertTextEmptyBuffer(t *testing.T) {
	lines, line, col := insertText(nil, 0, 0, "hi")
	if want := []string{"hi"}; !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}
	if line != 0 || col != 2 {
		t.Errorf("caret = (%d,%d), want (0,2)", line, col)
	}
}

func TestInsertNewlineSplitsLine(t *testing.T) {
	lines, line, col := insertNewline([]string{"hello world"}, 0, 5)
	want := []string{"hello", " world"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}
	if line != 1 || col != 0 {
		t.Errorf("caret = (%d,%d), want (1,0)", line, col)
	}
}

func TestDeleteBackMidLine(t *testing.T) {
	lines, line, col, changed := deleteBack([]string{"abc"}, 0, 2)
	if !changed {
		t.Fatal("expected change")
	}
	if want := []string{"ac"}; !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}
	if line != 0 || col != 1 {
		t.Errorf("caret = (%d,%d), want (0,1)", line, col)
	}
}

func TestDeleteBackJoinsLines(t *testing.T) {
	lines, line, col, changed := deleteBack([]string{"ab", "cd"}, 1, 0)
	if !changed {
		t.Fatal("expected change")
	}
	if want := []string{"abcd"}; !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}
	if line != 0 || col != 2 {
		t.Errorf("caret = (%d,%d), want (0,2)", line, col)
	}
}

func TestDeleteBackAtBufferStart(t *testing.T) {
	lines, line, col, changed := deleteBack([]string{"ab"}, 0, 0)
	if changed {
		t.Error("expected no change at buffer start")
	}
	if want := []string{"ab"}; !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}
	if line != 0 || col != 0 {
		t.Errorf("caret = (%d,%d), want (0,0)", line, col)
	}
}

func TestDeleteForwardMidLine(t *testing.T) {
	lines, changed := deleteForward([]string{"abc"}, 0, 1)
	if !changed {
		t.Fatal("expected change")
	}
	if want := []string{"ac"}; !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}
}

func TestDeleteForwardJoinsLines(t *testing.T) {
	lines, changed := deleteForward([]string{"ab", "cd"}, 0, 2)
	if !changed {
		t.Fatal("expected change")
	}
	if want := []string{"abcd"}; !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}
}

func TestDeleteForwardAtBufferEnd(t *testing.T) {
	lines, changed := deleteForward([]string{"ab"}, 0, 2)
	if changed {
		t.Error("expected no change at buffer end")
	}
	if want := []string{"ab"}; !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}
}

func TestClampPos(t *testing.T) {
	lines := []string{"abc", "d"}
	cases := []struct {
		line, col         int
		wantLine, wantCol int
	}{
		{-1, -1, 0, 0},
		{0, 5, 0, 3},
		{5, 0, 1, 0},
		{1, 3, 1, 1},
	}
	for _, tc := range cases {
		l, c := clampPos(lines, tc.line, tc.col)
		if l != tc.wantLine || c != tc.wantCol {
			t.Errorf("clampPos(%d,%d) = (%d,%d), want (%d,%d)",
				tc.line, tc.col, l, c, tc.wantLine, tc.wantCol)
		}
	}
}

func TestUnicodeInsertAndDelete(t *testing.T) {
	lines, line, col := insertText([]string{"héllo"}, 0, 2, "ü")
	if want := []string{"héüllo"}; !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}
	if line != 0 || col != 3 {
		t.Errorf("caret = (%d,%d), want (0,3)", line, col)
	}

	lines, _, _, changed := deleteBack(lines, 0, 3)
	if !changed {
		t.Fatal("expected change")
	}
	if want := []string{"héllo"}; !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}
}
