package tutorial

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tutorial_state")
	s := NewFileStore(path)

	if _, ok := s.LoadState(); ok {
		t.Fatal("state found before any save")
	}

	if err := s.SaveState(StateEnd); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	got, ok := s.LoadState()
	if !ok || got != StateEnd {
		t.Fatalf("got %v %v, want end true", got, ok)
	}
}

func TestFileStoreIgnoresGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tutorial_state")
	if err := os.WriteFile(path, []byte("definitely-not-a-state\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, ok := NewFileStore(path).LoadState(); ok {
		t.Fatal("garbage state was trusted")
	}
}

func TestDismissedTutorialStaysDismissedAcrossMachines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tutorial_state")
	store := NewFileStore(path)
	c := &fakeCounters{}

	m := NewMachine(c, store)
	m.Evaluate(lineEnd())
	m.Dismiss()

	again := NewMachine(c, store)
	if !again.Done() {
		t.Fatal("fresh machine over the same store is not done")
	}
}
