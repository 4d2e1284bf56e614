package store

import (
	"path/filepath"
	"testing"
)

// NewTestDB opens a temp-file SQLite database with the full schema applied.
// A file-backed database (rather than :memory:) keeps the schema visible
// across pooled connections. The handle is closed when the test finishes.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "tracks_test.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.MigrateUp(); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	return db
}

// NewTestStore returns a SQLiteStore over a fresh test database.
func NewTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	return NewSQLiteStore(NewTestDB(t))
}
