package storage

import (
	"context"
	"time"
)

// Record is one entry of the inclusion ledger.
type Record struct {
	ID        string
	Path      string
	Status    string
	Digest    string // BLAKE3 of the source bytes, empty when nothing was read
	Headings  int
	Error     string
	CreatedAt time.Time
}

// HistoryStore persists inclusion records.
type HistoryStore interface {
	// Save inserts a record.
	Save(ctx context.Context, rec Record) error

	// List returns the most recent records first. limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]Record, error)

	// FindByPath returns the records for one include path, most recent first.
	FindByPath(ctx context.Context, path string) ([]Record, error)

	Close() error
}
