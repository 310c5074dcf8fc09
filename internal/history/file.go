package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eohjun/cultivator/internal/assess"
)

// FileBackend persists the history map as a single JSON document.
// The file's top level is the notePath → records mapping itself.
type FileBackend struct {
	path string
}

// NewFileBackend creates a JSON-file history backend at the given path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Load reads the history file. A missing file is empty history, not an
// error; a corrupt file is an error and the store will degrade it to empty.
func (b *FileBackend) Load() (map[string][]assess.Record, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]assess.Record{}, nil
		}
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	var records map[string][]assess.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(b.path), err)
	}
	if records == nil {
		records = map[string][]assess.Record{}
	}
	return records, nil
}

// Save writes the entire map, creating parent directories as needed.
func (b *FileBackend) Save(records map[string][]assess.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}
	return os.WriteFile(b.path, data, 0o644)
}
