package engine

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// Open opens a SQLite database using the modernc.org/sqlite driver and
// registers the descriptor functions (see RegisterVectorFunctions).
//
// For file-based databases, pass a path like "./features.sqlite". For
// in-memory databases, pass ":memory:"; the pool is then limited to one
// connection since every SQLite connection gets its own in-memory database.
func Open(dsn string) (*sql.DB, error) {
	if err := RegisterVectorFunctions(); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}
