// internal/database/sqlite.go
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const timeLayout = "2006-01-02 15:04:05"

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("not found")

// SQLiteDB is the durable local storage: a key -> JSON blob table plus a
// ledger of imported trace files.
type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single writer keeps :memory: databases on one connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	sqlite := &SQLiteDB{db: db}
	if err := sqlite.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sqlite, nil
}

func (s *SQLiteDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS local_storage (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS imported_files (
		path TEXT PRIMARY KEY,
		walk_id INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		imported_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_imported_files_walk_id ON imported_files(walk_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// GetItem returns the raw value stored under key.
func (s *SQLiteDB) GetItem(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// SetItem stores value under key, replacing any previous value.
func (s *SQLiteDB) SetItem(key, value string) error {
	query := `
	INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

	_, err := s.db.Exec(query, key, value)
	return err
}

// ImportedFile is one entry of the trace import ledger.
type ImportedFile struct {
	Path       string    `json:"path"`
	WalkID     int64     `json:"walk_id"` // 0 when the trace produced no walk
	Status     string    `json:"status"`
	ImportedAt time.Time `json:"imported_at"`
}

func (s *SQLiteDB) IsImported(path string) (bool, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM imported_files WHERE path = ?`, path).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SQLiteDB) MarkImported(f ImportedFile) error {
	query := `
	INSERT OR REPLACE INTO imported_files (path, walk_id, status, imported_at)
	VALUES (?, ?, ?, ?)`

	_, err := s.db.Exec(query, f.Path, f.WalkID, f.Status, f.ImportedAt.UTC().Format(timeLayout))
	return err
}

// ImportedFiles lists the ledger, oldest first.
func (s *SQLiteDB) ImportedFiles() ([]ImportedFile, error) {
	rows, err := s.db.Query(`
	SELECT path, walk_id, status, imported_at
	FROM imported_files
	ORDER BY imported_at, path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []ImportedFile
	for rows.Next() {
		var f ImportedFile
		// DATETIME columns come back from the driver as time.Time
		if err := rows.Scan(&f.Path, &f.WalkID, &f.Status, &f.ImportedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	return files, rows.Err()
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
