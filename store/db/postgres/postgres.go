// Package postgres implements the claims store driver for PostgreSQL.
package postgres

import (
	"database/sql"
	"fmt"

	// Imported for its side effect of registering the "postgres" driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// DB wraps a PostgreSQL connection.
type DB struct {
	db *sql.DB
}

// New opens a PostgreSQL connection for the given DSN.
func New(dsn string) (*DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	return &DB{db: db}, nil
}

// Close closes the connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
