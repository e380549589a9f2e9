// Package sqlite implements the claims store driver for SQLite, the default
// backend for local deployments.
package sqlite

import (
	"database/sql"

	"github.com/pkg/errors"
	// Imported for its side effect of registering the "sqlite" driver.
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database handle.
type DB struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at the given DSN.
func New(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	return &DB{db: db}, nil
}

// Close closes the database handle.
func (d *DB) Close() error {
	return d.db.Close()
}
