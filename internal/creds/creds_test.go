package creds

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCredentialsValidity(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		creds Credentials
		want  bool
	}{
		{"empty", Credentials{}, false},
		{"whitespace token", Credentials{Token: "   "}, false},
		{"token no expiry", Credentials{Token: "tok"}, true},
		{"token future expiry", Credentials{Token: "tok", ExpiresAt: now.Add(time.Hour)}, true},
		{"token expired", Credentials{Token: "tok", ExpiresAt: now.Add(-time.Hour)}, false},
		{"token expires now", Credentials{Token: "tok", ExpiresAt: now}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.creds.Valid(now); got != tt.want {
				t.Fatalf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadMissingFileIsInvalidNotError(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "credentials.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Valid(time.Now()) {
		t.Fatal("missing credentials file must be invalid")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := Path(t.TempDir())
	want := Credentials{Token: "tok-123", ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second)}

	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Token != want.Token || !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Fatalf("got permissions %o, want 0600", perm)
	}
}

func TestWatcherSeesTokenArrival(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir)

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if w.Valid() {
		t.Fatal("valid before any credentials exist")
	}

	changed := make(chan struct{}, 4)
	w.OnChange(func() { changed <- struct{}{} })

	if err := Save(path, Credentials{Token: "tok"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification after token arrival")
	}
	if !w.Valid() {
		t.Fatal("invalid after token arrival")
	}
}

func TestWatcherSeesTokenRemoval(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir)
	if err := Save(path, Credentials{Token: "tok"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if !w.Valid() {
		t.Fatal("invalid despite credentials on disk")
	}

	changed := make(chan struct{}, 4)
	w.OnChange(func() { changed <- struct{}{} })

	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification after token removal")
	}
	if w.Valid() {
		t.Fatal("still valid after token removal")
	}
}

func TestForceRefreshPicksUpEdit(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir)

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	// Close first so only ForceRefresh can observe the write.
	w.Close()

	if err := Save(path, Credentials{Token: "tok"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	w.ForceRefresh()
	if !w.Valid() {
		t.Fatal("invalid after ForceRefresh over a fresh token")
	}
}
