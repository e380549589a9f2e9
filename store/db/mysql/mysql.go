// Package mysql implements the claims store driver for MySQL.
package mysql

import (
	"database/sql"

	// Imported for its side effect of registering the "mysql" driver.
	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

// DB wraps a MySQL connection.
type DB struct {
	db *sql.DB
}

// New opens a MySQL connection for the given DSN.
func New(dsn string) (*DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}
	return &DB{db: db}, nil
}

// Close closes the connection.
func (d *DB) Close() error {
	return d.db.Close()
}
