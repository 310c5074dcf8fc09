package history

import (
	"errors"
	"fmt"
	"testing"

	"github.com/eohjun/cultivator/internal/assess"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

// stubBackend is an in-memory Backend with injectable failures.
type stubBackend struct {
	loadResult map[string][]assess.Record
	loadErr    error
	saveErr    error
	loadCalls  int
	saveCalls  int
	saved      map[string][]assess.Record
}

func (b *stubBackend) Load() (map[string][]assess.Record, error) {
	b.loadCalls++
	return b.loadResult, b.loadErr
}

func (b *stubBackend) Save(records map[string][]assess.Record) error {
	b.saveCalls++
	if b.saveErr != nil {
		return b.saveErr
	}
	b.saved = records
	return nil
}

// testRecord builds a minimal record for store tests.
func testRecord(notePath string, total int, assessedAt int64) assess.Record {
	return assess.Record{
		ID:         fmt.Sprintf("rec-%s-%d", notePath, assessedAt),
		NotePath:   notePath,
		TotalScore: total,
		DimensionScores: map[assess.Dimension]int{
			assess.DimAtomicity:    total,
			assess.DimConnectivity: total,
			assess.DimClarity:      total,
			assess.DimEvidence:     total,
			assess.DimOriginality:  total,
		},
		MaturityLevel: assess.StageSeedling,
		AssessedAt:    assessedAt,
	}
}

// ─── Initialize ──────────────────────────────────────────────────────────────

func TestInitialize_LoadsOnce(t *testing.T) {
	backend := &stubBackend{loadResult: map[string][]assess.Record{}}
	store := NewStore(backend, 10)

	store.Initialize()
	store.Initialize()
	store.Initialize()

	if backend.loadCalls != 1 {
		t.Errorf("loadCalls = %d, want 1 (Initialize must be idempotent)", backend.loadCalls)
	}
}

func TestInitialize_LoadFailureDegradesToEmpty(t *testing.T) {
	backend := &stubBackend{loadErr: errors.New("disk on fire")}
	store := NewStore(backend, 10)

	store.Initialize()

	if _, ok := store.Latest("notes/a.md"); ok {
		t.Error("failed load should yield empty history, got a record")
	}
	// A later Add must still work against the empty map.
	if err := store.Add(testRecord("notes/a.md", 50, 1000)); err != nil {
		t.Errorf("Add after failed load should succeed, got: %v", err)
	}
}

func TestInitialize_LazyOnFirstUse(t *testing.T) {
	backend := &stubBackend{loadResult: map[string][]assess.Record{
		"notes/a.md": {testRecord("notes/a.md", 60, 1000)},
	}}
	store := NewStore(backend, 10)

	// No explicit Initialize: first read triggers the load.
	rec, ok := store.Latest("notes/a.md")
	if !ok {
		t.Fatal("Latest should find the preloaded record")
	}
	if rec.TotalScore != 60 {
		t.Errorf("TotalScore = %d, want 60", rec.TotalScore)
	}
	if backend.loadCalls != 1 {
		t.Errorf("loadCalls = %d, want 1", backend.loadCalls)
	}
}

// ─── Add ─────────────────────────────────────────────────────────────────────

func TestAdd_PersistsAfterEveryCall(t *testing.T) {
	backend := &stubBackend{}
	store := NewStore(backend, 10)

	for i := 0; i < 3; i++ {
		if err := store.Add(testRecord("notes/a.md", 50+i, int64(1000+i))); err != nil {
			t.Fatalf("Add %d failed: %v", i, err)
		}
	}

	if backend.saveCalls != 3 {
		t.Errorf("saveCalls = %d, want 3 (write-through, no batching)", backend.saveCalls)
	}
	if got := len(backend.saved["notes/a.md"]); got != 3 {
		t.Errorf("saved records = %d, want 3", got)
	}
}

func TestAdd_SaveFailurePropagates(t *testing.T) {
	backend := &stubBackend{saveErr: errors.New("write denied")}
	store := NewStore(backend, 10)

	err := store.Add(testRecord("notes/a.md", 50, 1000))
	if err == nil {
		t.Fatal("Add should surface the backend save failure")
	}
	if !errors.Is(err, backend.saveErr) {
		t.Errorf("error should wrap the backend failure, got: %v", err)
	}
}

func TestAdd_EvictsOldestBeyondCap(t *testing.T) {
	backend := &stubBackend{}
	store := NewStore(backend, 3)

	// Insert maxPerNote + 2 records.
	for i := 0; i < 5; i++ {
		if err := store.Add(testRecord("notes/a.md", 10*i, int64(1000+i))); err != nil {
			t.Fatalf("Add %d failed: %v", i, err)
		}
	}

	records := store.ForNote("notes/a.md")
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	// The most recent three, in original relative order.
	wantTotals := []int{20, 30, 40}
	for i, want := range wantTotals {
		if records[i].TotalScore != want {
			t.Errorf("records[%d].TotalScore = %d, want %d", i, records[i].TotalScore, want)
		}
	}
}

func TestAdd_CapIsPerNote(t *testing.T) {
	backend := &stubBackend{}
	store := NewStore(backend, 2)

	for i := 0; i < 3; i++ {
		_ = store.Add(testRecord("notes/a.md", i, int64(1000+i)))
	}
	_ = store.Add(testRecord("notes/b.md", 99, 2000))

	if got := len(store.ForNote("notes/a.md")); got != 2 {
		t.Errorf("a.md records = %d, want 2", got)
	}
	if got := len(store.ForNote("notes/b.md")); got != 1 {
		t.Errorf("b.md records = %d, want 1", got)
	}
}

func TestNewStore_InvalidCapFallsBackToDefault(t *testing.T) {
	store := NewStore(&stubBackend{}, 0)
	if store.maxPerNote != DefaultMaxPerNote {
		t.Errorf("maxPerNote = %d, want %d", store.maxPerNote, DefaultMaxPerNote)
	}
}

// ─── Latest ──────────────────────────────────────────────────────────────────

func TestLatest_EmptyHistory(t *testing.T) {
	store := NewStore(&stubBackend{}, 10)
	if _, ok := store.Latest("notes/missing.md"); ok {
		t.Error("Latest on empty history should report no record")
	}
}

func TestLatest_ReturnsLastInserted(t *testing.T) {
	store := NewStore(&stubBackend{}, 10)
	_ = store.Add(testRecord("notes/a.md", 40, 1000))
	_ = store.Add(testRecord("notes/a.md", 55, 2000))

	rec, ok := store.Latest("notes/a.md")
	if !ok {
		t.Fatal("Latest should find a record")
	}
	if rec.TotalScore != 55 {
		t.Errorf("TotalScore = %d, want 55", rec.TotalScore)
	}
}

// ─── Delta ───────────────────────────────────────────────────────────────────

func TestDelta_NilOnFirstRecord(t *testing.T) {
	store := NewStore(&stubBackend{}, 10)
	current := testRecord("notes/a.md", 50, 1000)

	if d := store.Delta("notes/a.md", current); d != nil {
		t.Errorf("Delta with no prior record = %+v, want nil", d)
	}
}

func TestDelta_SecondRecordAgainstFirst(t *testing.T) {
	store := NewStore(&stubBackend{}, 10)
	_ = store.Add(testRecord("notes/a.md", 50, 1000))

	current := testRecord("notes/a.md", 65, 2000)
	d := store.Delta("notes/a.md", current)
	if d == nil {
		t.Fatal("Delta should compare against the first record")
	}
	if d.TotalDelta != 15 {
		t.Errorf("TotalDelta = %d, want 15", d.TotalDelta)
	}
	if d.PreviousAssessedAt != 1000 {
		t.Errorf("PreviousAssessedAt = %d, want 1000", d.PreviousAssessedAt)
	}
}

func TestDelta_ComparesAgainstMostRecentOnly(t *testing.T) {
	store := NewStore(&stubBackend{}, 10)
	_ = store.Add(testRecord("notes/a.md", 30, 1000))
	_ = store.Add(testRecord("notes/a.md", 50, 2000))

	current := testRecord("notes/a.md", 45, 3000)
	d := store.Delta("notes/a.md", current)
	if d == nil {
		t.Fatal("Delta should find a prior record")
	}
	if d.TotalDelta != -5 {
		t.Errorf("TotalDelta = %d, want -5 (against the latest record, not the oldest)", d.TotalDelta)
	}
}

// ─── ForNote / Notes ─────────────────────────────────────────────────────────

func TestForNote_ReturnsCopy(t *testing.T) {
	store := NewStore(&stubBackend{}, 10)
	_ = store.Add(testRecord("notes/a.md", 50, 1000))

	records := store.ForNote("notes/a.md")
	records[0].TotalScore = 999

	rec, _ := store.Latest("notes/a.md")
	if rec.TotalScore != 50 {
		t.Errorf("mutating ForNote result leaked into the store: TotalScore = %d", rec.TotalScore)
	}
}

func TestNotes_SortedPaths(t *testing.T) {
	store := NewStore(&stubBackend{}, 10)
	_ = store.Add(testRecord("notes/zebra.md", 50, 1000))
	_ = store.Add(testRecord("notes/apple.md", 50, 2000))

	paths := store.Notes()
	if len(paths) != 2 {
		t.Fatalf("len(Notes()) = %d, want 2", len(paths))
	}
	if paths[0] != "notes/apple.md" || paths[1] != "notes/zebra.md" {
		t.Errorf("Notes() = %v, want sorted paths", paths)
	}
}
