package tutorial

import (
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists the tutorial state as a single name in a file, so a
// finished tutorial stays finished across sessions.
type FileStore struct {
	path string
}

// NewFileStore creates a store at path. The file need not exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// LoadState reads the persisted state. Missing or unreadable files mean
// no state; an unknown name is ignored rather than trusted.
func (s *FileStore) LoadState() (State, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return StateStart, false
	}
	name := strings.TrimSpace(string(data))
	for st := StateStart; st <= StateEnd; st++ {
		if st.String() == name {
			return st, true
		}
	}
	return StateStart, false
}

// SaveState writes the state name, creating parent directories as needed.
func (s *FileStore) SaveState(st State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(st.String()+"\n"), 0644)
}
