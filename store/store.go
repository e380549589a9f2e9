// Package store provides access to the claims database and the in-process
// chat history.
package store

import "context"

// Driver is the database-specific backend for claims.
type Driver interface {
	EnsureClaimTables(ctx context.Context) error
	CreateClaim(ctx context.Context, create *ExpenseClaim) (*ExpenseClaim, error)
	ListClaims(ctx context.Context, find *FindClaim) ([]*ExpenseClaim, error)
	Close() error
}

// Store is the claims store facade.
type Store struct {
	driver Driver
}

// New creates a Store backed by the given driver.
func New(driver Driver) *Store {
	return &Store{driver: driver}
}

// Migrate creates the claim tables if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.EnsureClaimTables(ctx)
}

// CreateClaim persists a new expense claim.
func (s *Store) CreateClaim(ctx context.Context, create *ExpenseClaim) (*ExpenseClaim, error) {
	return s.driver.CreateClaim(ctx, create)
}

// ListClaims lists claims matching the given filter, newest first.
func (s *Store) ListClaims(ctx context.Context, find *FindClaim) ([]*ExpenseClaim, error) {
	return s.driver.ListClaims(ctx, find)
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.driver.Close()
}
