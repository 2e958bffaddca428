package importer

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// StateDB is the ledger of export files already imported. Each entry records
// the file identity (path, size, content hash) plus what applying it wrote, so
// re-running the import over the same directory skips finished files and can
// report what they contributed. A file whose content changed is treated as new.
type StateDB struct {
	db *sql.DB
}

// AppliedFile is the ledger entry for one imported export file.
type AppliedFile struct {
	Dataset  string
	Inserted int
	Skipped  int
	Failed   int
}

// OpenStateDB opens (or creates) the SQLite ledger at dir/import.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "import.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS applied_files (
		path          TEXT PRIMARY KEY,
		size          INTEGER NOT NULL,
		hash          TEXT NOT NULL,
		dataset       TEXT NOT NULL DEFAULT '',
		rows_inserted INTEGER NOT NULL DEFAULT 0,
		rows_skipped  INTEGER NOT NULL DEFAULT 0,
		rows_failed   INTEGER NOT NULL DEFAULT 0,
		applied_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// Lookup returns the ledger entry for a file, or nil when the file is unknown
// or its size/hash no longer match what was applied.
func (s *StateDB) Lookup(relPath string, size int64, hash string) (*AppliedFile, error) {
	var a AppliedFile
	err := s.db.QueryRow(
		`SELECT dataset, rows_inserted, rows_skipped, rows_failed
		 FROM applied_files WHERE path = ? AND size = ? AND hash = ?`,
		relPath, size, hash,
	).Scan(&a.Dataset, &a.Inserted, &a.Skipped, &a.Failed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// MarkApplied records a successfully applied file with its row counts.
// Re-applying a path (after its content changed) replaces the old entry.
func (s *StateDB) MarkApplied(relPath string, size int64, hash, dataset string, stats ApplyStats) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO applied_files
		 (path, size, hash, dataset, rows_inserted, rows_skipped, rows_failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		relPath, size, hash, dataset, stats.Inserted, stats.Skipped, stats.Failed,
	)
	return err
}

// Close closes the ledger database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
