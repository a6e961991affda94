package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema.
func (db *DB) RunMigrations() error {
	migration := `
-- Raw activity events. Metadata is stored as the original JSON bag; all
-- derived state (buckets, clusters, windows) is recomputed in memory and
-- never persisted.
CREATE TABLE IF NOT EXISTS activity_items (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    ts TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    summary TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    agent_id TEXT NOT NULL DEFAULT '',
    agent_name TEXT NOT NULL DEFAULT '',
    run_id TEXT NOT NULL DEFAULT '',
    initiative_id TEXT NOT NULL DEFAULT '',
    decision_required INTEGER NOT NULL DEFAULT 0,
    metadata TEXT,
    ingested_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_activity_ts ON activity_items(ts DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_activity_run ON activity_items(run_id);

-- Session tree (externally sourced).
CREATE TABLE IF NOT EXISTS session_nodes (
    id TEXT PRIMARY KEY,
    run_id TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT '',
    workstream_id TEXT NOT NULL DEFAULT '',
    agent_name TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_session_run ON session_nodes(run_id);

-- Initiatives and their workstreams.
CREATE TABLE IF NOT EXISTS initiatives (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS workstreams (
    id TEXT PRIMARY KEY,
    initiative_id TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (initiative_id) REFERENCES initiatives(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_workstream_initiative ON workstreams(initiative_id);
`

	if _, err := db.Exec(migration); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
