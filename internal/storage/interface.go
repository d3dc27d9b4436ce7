/*
Package storage implements the persistent calculation history.

The SQLite backend stores records at ~/.geocalc/history.db using
modernc.org/sqlite (a pure Go, CGo-free implementation). A memory backend with
the same semantics serves tests and runs with tracking disabled.
*/
package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrStorageUnavailable reports that the backing store cannot complete an operation.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Storage defines the interface for calculation history backends.
//
// Appends are serialized by the implementation. Reads may run concurrently
// with each other and with appends, and only observe committed records.
type Storage interface {
	// Init prepares the backend and runs migrations.
	Init() error

	// Append stores a record and returns its assigned ID. IDs increase monotonically.
	Append(ctx context.Context, rec CalculationRecord) (int64, error)

	// Records returns records with since <= CreatedAt <= until, oldest first.
	// A zero bound is open.
	Records(ctx context.Context, since, until time.Time) ([]CalculationRecord, error)

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]CalculationRecord, error)

	// Cleanup removes records created before cutoff and returns how many were removed.
	Cleanup(ctx context.Context, cutoff time.Time) (int64, error)

	// Clear removes every record.
	Clear(ctx context.Context) error

	// Close releases the backend.
	Close() error
}

// DefaultPath returns ~/.geocalc/history.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".geocalc", "history.db"), nil
}
