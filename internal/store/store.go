// Package store persists the collaborators the pricing engine reads: cost
// settings, shipping rate tables, the container catalogue and cached
// exchange rates.
package store

import (
	"context"
	"database/sql"
	"errors"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalid is returned when a record fails validation before writing.
	ErrInvalid = errors.New("invalid record")
)

// Store reads and writes pricing configuration in SQLite.
type Store struct {
	db *sql.DB
}

// New wraps an open database whose schema has been migrated.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
