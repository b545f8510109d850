// Package history provides input history persistence.
//
// Information Hiding:
// - Storage backend details hidden behind the Store interface
// - Flat file, SQLite and in-memory backends are interchangeable
// - Each backend applies its own retention limit on save

package history

import (
	"context"
	"fmt"
)

// DefaultLimit bounds how many entries are retained across runs.
const DefaultLimit = 1000

// Store persists input lines between runs.
type Store interface {
	// Load returns every retained entry, oldest first.
	// Returns an empty slice (not nil) when nothing has been stored yet.
	Load(ctx context.Context) ([]string, error)

	// Save persists the entries recorded during this run.
	Save(ctx context.Context, entries []string) error

	// Clear removes every stored entry.
	Clear(ctx context.Context) error

	// Close releases the backend.
	Close() error
}

// Options selects a backend.
type Options struct {
	// File is the flat-file path; used when DB is empty.
	File string
	// DB is a SQLite database path; takes precedence over File.
	DB string
	// Limit caps retained entries; 0 means DefaultLimit.
	Limit int
	// Disabled selects an in-memory store that outlives nothing.
	Disabled bool
}

// Open returns the Store described by opts.
func Open(opts Options) (Store, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	switch {
	case opts.Disabled:
		return NewMemoryStore(limit), nil
	case opts.DB != "":
		return OpenSqlite(opts.DB, limit)
	case opts.File != "":
		return NewFileStore(opts.File, limit), nil
	default:
		return nil, fmt.Errorf("history: no file or database configured")
	}
}

// keepLast returns the trailing limit entries of entries.
func keepLast(entries []string, limit int) []string {
	if limit > 0 && len(entries) > limit {
		return entries[len(entries)-limit:]
	}
	return entries
}
