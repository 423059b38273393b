package store

import (
	"context"
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS feature_sets (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    dim INTEGER NOT NULL,
    count INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS features (
    set_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    x REAL NOT NULL,
    y REAL NOT NULL,
    size REAL NOT NULL,
    angle REAL NOT NULL,
    descriptor BLOB NOT NULL,
    PRIMARY KEY (set_id, position)
);
`

// EnsureSchema creates the feature tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
