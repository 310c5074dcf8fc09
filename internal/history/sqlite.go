package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eohjun/cultivator/internal/assess"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// SQLiteBackend persists the history map in a SQLite database.
// It keeps the store's snapshot semantics: every Save rewrites the records
// table in one transaction, mirroring the file backend's whole-map write.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (or creates) the database at path, applies the
// performance pragmas, and runs migrations.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history: create data dir: %w", err)
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("history: pragma %q: %w", p, err)
		}
	}

	b := &SQLiteBackend{db: db}
	if err := b.migrate(); err != nil {
		return nil, fmt.Errorf("history: migration: %w", err)
	}
	return b, nil
}

// Close closes the underlying database connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func (b *SQLiteBackend) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS assessments (
			note_path        TEXT    NOT NULL,
			position         INTEGER NOT NULL,
			id               TEXT    NOT NULL,
			total_score      INTEGER NOT NULL,
			dimension_scores TEXT    NOT NULL,
			maturity_level   TEXT    NOT NULL,
			assessed_at      INTEGER NOT NULL,
			PRIMARY KEY (note_path, position)
		);

		CREATE INDEX IF NOT EXISTS idx_assessments_note ON assessments(note_path, assessed_at DESC);
	`
	_, err := b.db.Exec(schema)
	return err
}

// Load reads every record grouped by note, in stored order.
func (b *SQLiteBackend) Load() (map[string][]assess.Record, error) {
	rows, err := b.db.Query(`
		SELECT note_path, id, total_score, dimension_scores, maturity_level, assessed_at
		FROM assessments
		ORDER BY note_path, position`)
	if err != nil {
		return nil, fmt.Errorf("history: load: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make(map[string][]assess.Record)
	for rows.Next() {
		var rec assess.Record
		var scoresJSON string
		if err := rows.Scan(&rec.NotePath, &rec.ID, &rec.TotalScore, &scoresJSON, &rec.MaturityLevel, &rec.AssessedAt); err != nil {
			return nil, fmt.Errorf("history: scan record: %w", err)
		}
		if err := json.Unmarshal([]byte(scoresJSON), &rec.DimensionScores); err != nil {
			return nil, fmt.Errorf("history: parse dimension scores: %w", err)
		}
		records[rec.NotePath] = append(records[rec.NotePath], rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: load: %w", err)
	}
	return records, nil
}

// Save rewrites the assessments table from the given map in one transaction.
func (b *SQLiteBackend) Save(records map[string][]assess.Record) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("history: begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM assessments`); err != nil {
		return fmt.Errorf("history: clear records: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO assessments (note_path, position, id, total_score, dimension_scores, maturity_level, assessed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("history: prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for notePath, list := range records {
		for i, rec := range list {
			scoresJSON, err := json.Marshal(rec.DimensionScores)
			if err != nil {
				return fmt.Errorf("history: marshal dimension scores: %w", err)
			}
			if _, err := stmt.Exec(notePath, i, rec.ID, rec.TotalScore, string(scoresJSON), string(rec.MaturityLevel), rec.AssessedAt); err != nil {
				return fmt.Errorf("history: insert record: %w", err)
			}
		}
	}

	return tx.Commit()
}
