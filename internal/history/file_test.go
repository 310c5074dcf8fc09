package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eohjun/cultivator/internal/assess"
)

// ─── FileBackend ─────────────────────────────────────────────────────────────

func TestFileBackend_LoadMissingFileIsEmpty(t *testing.T) {
	backend := NewFileBackend(filepath.Join(t.TempDir(), "history.json"))

	records, err := backend.Load()
	if err != nil {
		t.Fatalf("Load of missing file should succeed, got: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

func TestFileBackend_SaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "history.json")
	backend := NewFileBackend(path)

	in := map[string][]assess.Record{
		"notes/spacing-effect.md": {
			testRecord("notes/spacing-effect.md", 62, 1700000000000),
			testRecord("notes/spacing-effect.md", 71, 1700000100000),
		},
		"notes/zettelkasten.md": {
			testRecord("notes/zettelkasten.md", 48, 1700000200000),
		},
	}

	if err := backend.Save(in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out, err := backend.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}

	got := out["notes/spacing-effect.md"]
	if len(got) != 2 {
		t.Fatalf("spacing-effect records = %d, want 2", len(got))
	}
	if got[1].TotalScore != 71 {
		t.Errorf("second record total = %d, want 71", got[1].TotalScore)
	}
	if got[1].AssessedAt != 1700000100000 {
		t.Errorf("second record assessedAt = %d, want 1700000100000", got[1].AssessedAt)
	}
	if got[0].DimensionScores[assess.DimClarity] != 62 {
		t.Errorf("clarity score = %d, want 62", got[0].DimensionScores[assess.DimClarity])
	}
}

func TestFileBackend_SaveCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "history.json")
	backend := NewFileBackend(path)

	if err := backend.Save(map[string][]assess.Record{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("history file should exist after Save: %v", err)
	}
}

func TestFileBackend_LoadCorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	_, err := NewFileBackend(path).Load()
	if err == nil {
		t.Fatal("Load of corrupt file should fail")
	}
	if !strings.Contains(err.Error(), "history.json") {
		t.Errorf("error should name the file, got: %v", err)
	}
}

func TestFileBackend_CorruptFileDegradesThroughStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	store := NewStore(NewFileBackend(path), 10)
	store.Initialize()

	// Corrupt persisted state must behave like no history at all.
	if _, ok := store.Latest("notes/a.md"); ok {
		t.Error("corrupt history should degrade to empty, got a record")
	}
	if err := store.Add(testRecord("notes/a.md", 50, 1000)); err != nil {
		t.Errorf("Add after corrupt load should succeed, got: %v", err)
	}
}

func TestFileBackend_FileLayoutIsBareMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	backend := NewFileBackend(path)

	if err := backend.Save(map[string][]assess.Record{
		"notes/a.md": {testRecord("notes/a.md", 50, 1000)},
	}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	text := string(data)
	// The top level is the notePath mapping with the plugin's field names.
	if !strings.Contains(text, `"notes/a.md"`) {
		t.Errorf("file should key records by note path, got: %s", text)
	}
	for _, field := range []string{`"notePath"`, `"totalScore"`, `"dimensionScores"`, `"maturityLevel"`, `"assessedAt"`} {
		if !strings.Contains(text, field) {
			t.Errorf("file should contain field %s, got: %s", field, text)
		}
	}
}
