package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the underlying SQLite handle for the track store.
type DB struct {
	*sql.DB
}

// OpenDB opens (or creates) the track database at path without touching the
// schema; migrations manage the schema. A failure here is a setup failure:
// callers exit non-zero rather than retrying silently.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open track database: %w", err)
	}

	// Single-writer engine plus a producer sharing the file: let writers
	// queue briefly instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping track database: %w", err)
	}

	return &DB{db}, nil
}
