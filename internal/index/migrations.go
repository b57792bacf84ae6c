package index

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Migration is one forward schema step.
type Migration struct {
	Version string
	Up      string
}

// AllMigrations contains every schema migration, in order.
var AllMigrations = []Migration{
	{Version: "1.0.0", Up: migrationV1Up},
}

const migrationV1Up = `
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS chunks (
    id TEXT PRIMARY KEY,
    doc_id TEXT NOT NULL,
    parent_id TEXT,
    tree TEXT NOT NULL,
    path TEXT NOT NULL,
    kind TEXT NOT NULL,
    depth INTEGER NOT NULL,
    position INTEGER NOT NULL,
    title TEXT NOT NULL,
    slug TEXT,
    byte_start INTEGER NOT NULL,
    byte_end INTEGER NOT NULL,
    sibling_count INTEGER NOT NULL,
    breadcrumb TEXT NOT NULL,
    tags TEXT,
    content_hash BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_doc ON chunks(doc_id);
CREATE INDEX IF NOT EXISTS idx_chunks_parent ON chunks(parent_id);
CREATE INDEX IF NOT EXISTS idx_chunks_tree ON chunks(tree);

CREATE TABLE IF NOT EXISTS postings (
    field TEXT NOT NULL,
    term TEXT NOT NULL,
    chunk_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    FOREIGN KEY (chunk_id) REFERENCES chunks(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_postings_lookup ON postings(field, term);
CREATE INDEX IF NOT EXISTS idx_postings_chunk ON postings(chunk_id);

CREATE TABLE IF NOT EXISTS bodies (
    chunk_id TEXT PRIMARY KEY,
    body TEXT NOT NULL,
    FOREIGN KEY (chunk_id) REFERENCES chunks(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS manifest (
    doc_id TEXT PRIMARY KEY,
    mtime INTEGER NOT NULL,
    content_hash BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS config_state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    config_hash BLOB NOT NULL
);
`

// ApplyMigrations runs every pending migration against db.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	var tableName string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)

	var current *semver.Version
	switch {
	case err == sql.ErrNoRows:
		current = semver.MustParse("0.0.0")
	case err != nil:
		return fmt.Errorf("check schema_version table: %w", err)
	default:
		var versionStr string
		err = db.QueryRowContext(ctx,
			"SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&versionStr)
		switch {
		case err == sql.ErrNoRows || versionStr == "":
			current = semver.MustParse("0.0.0")
		case err != nil:
			return fmt.Errorf("read schema_version: %w", err)
		default:
			current, err = semver.NewVersion(versionStr)
			if err != nil {
				return fmt.Errorf("invalid schema version %s: %w", versionStr, err)
			}
		}
	}

	for _, m := range AllMigrations {
		v, err := semver.NewVersion(m.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", m.Version, err)
		}
		if !current.LessThan(v) {
			continue
		}
		if _, err := db.ExecContext(ctx, m.Up); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Version, err)
		}
		if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("record migration %s: %w", m.Version, err)
		}
		current = v
	}
	return nil
}
