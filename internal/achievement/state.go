package achievement

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fakeyudi/stride/internal/store"
)

// FileState persists unlock state as achievements.json in a data directory.
type FileState struct {
	path string
}

// NewFileState returns a FileState rooted at dir.
func NewFileState(dir string) *FileState {
	return &FileState{path: filepath.Join(dir, "achievements.json")}
}

// Load restores persisted unlock state into e. A missing file leaves e
// untouched.
func (f *FileState) Load(e *Engine) error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read achievements: %w", err)
	}
	var states []Achievement
	if err := json.Unmarshal(data, &states); err != nil {
		return fmt.Errorf("failed to parse achievements: %w", err)
	}
	e.Restore(states)
	return nil
}

// Save writes the engine's current state atomically.
func (f *FileState) Save(e *Engine) error {
	if err := store.WriteJSONAtomic(f.path, e.Snapshot()); err != nil {
		return fmt.Errorf("failed to persist achievements: %w", err)
	}
	return nil
}
