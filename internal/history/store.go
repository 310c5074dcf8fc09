// Package history keeps a bounded, persisted trail of assessment records
// per note and computes score deltas between consecutive evaluations.
//
// The store owns only in-memory state; persistence goes through an injected
// Backend, so the engine itself has no storage dependency. It is
// single-writer by design: overlapping evaluations of the same note are
// last-writer-wins, with no locking or versioning.
package history

import (
	"fmt"
	"sort"

	"github.com/eohjun/cultivator/internal/assess"
)

// Backend loads and saves the full history map. The store writes whole
// snapshots; it never issues partial updates.
type Backend interface {
	Load() (map[string][]assess.Record, error)
	Save(map[string][]assess.Record) error
}

// DefaultMaxPerNote caps how many records are kept per note when the
// caller does not configure a limit.
const DefaultMaxPerNote = 50

// Store is the bounded per-note history collection.
type Store struct {
	backend    Backend
	maxPerNote int
	records    map[string][]assess.Record
	loaded     bool
}

// NewStore creates a history store over the given backend. Values of
// maxPerNote below 1 fall back to DefaultMaxPerNote.
func NewStore(backend Backend, maxPerNote int) *Store {
	if maxPerNote < 1 {
		maxPerNote = DefaultMaxPerNote
	}
	return &Store{backend: backend, maxPerNote: maxPerNote}
}

// Initialize loads persisted history once; repeat calls are no-ops.
// A failed load degrades to empty history — missing history must never
// block an evaluation.
func (s *Store) Initialize() {
	if s.loaded {
		return
	}
	s.loaded = true

	loaded, err := s.backend.Load()
	if err != nil || loaded == nil {
		s.records = make(map[string][]assess.Record)
		return
	}
	s.records = loaded
}

// Add appends a record to its note's history, evicts the oldest entries
// beyond the per-note cap, and write-through persists the entire map.
// Save failures propagate to the caller.
func (s *Store) Add(record assess.Record) error {
	s.Initialize()

	list := append(s.records[record.NotePath], record)
	if over := len(list) - s.maxPerNote; over > 0 {
		list = list[over:]
	}
	s.records[record.NotePath] = list

	if err := s.backend.Save(s.records); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// Latest returns the most recent record for a note. The second return is
// false when the note has no history.
func (s *Store) Latest(notePath string) (assess.Record, bool) {
	s.Initialize()
	list := s.records[notePath]
	if len(list) == 0 {
		return assess.Record{}, false
	}
	return list[len(list)-1], true
}

// Delta compares current against the latest stored record for the note.
// Call it before Add so the comparison runs against the previous
// evaluation. Returns nil when the note has no prior record.
func (s *Store) Delta(notePath string, current assess.Record) *assess.Delta {
	prev, ok := s.Latest(notePath)
	if !ok {
		return nil
	}
	d := assess.DeltaBetween(current, prev)
	return &d
}

// ForNote returns the stored records for a note, oldest first.
func (s *Store) ForNote(notePath string) []assess.Record {
	s.Initialize()
	list := s.records[notePath]
	out := make([]assess.Record, len(list))
	copy(out, list)
	return out
}

// Notes returns the paths that have at least one record, sorted.
func (s *Store) Notes() []string {
	s.Initialize()
	paths := make([]string, 0, len(s.records))
	for path, list := range s.records {
		if len(list) == 0 {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
