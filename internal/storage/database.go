// Package storage handles data persistence: SQLite database and filesystem.
package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registers the SQLite driver
)

// Schema is embedded in the binary, so no migration files need to exist at
// runtime. The covers table is the artifact cache index: one row per spec
// digest, with the rendered file living on the filesystem next to it.
const schema = `
CREATE TABLE IF NOT EXISTS covers (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    digest        TEXT NOT NULL UNIQUE,
    class         TEXT NOT NULL,
    title         TEXT NOT NULL DEFAULT '',
    author        TEXT NOT NULL DEFAULT '',
    format        TEXT NOT NULL DEFAULT '',
    byte_size     INTEGER NOT NULL DEFAULT 0,
    status        TEXT NOT NULL DEFAULT 'pending',
    warning       TEXT,
    error_message TEXT,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_covers_digest ON covers(digest);
CREATE INDEX IF NOT EXISTS idx_covers_status ON covers(status);
CREATE INDEX IF NOT EXISTS idx_covers_class ON covers(class);
`

// NewDatabase creates a new SQLite connection and runs migrations.
//
// The DSN configures SQLite pragmas:
//   - WAL mode: concurrent reads while writing
//   - foreign_keys: enforce referential integrity
//   - busy_timeout: wait up to 5s instead of failing on lock contention
func NewDatabase(dbPath string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", dbPath)

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Ping actually opens the connection (Open is lazy in database/sql)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// SQLite performs best with a single writer connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}
