// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"

	"picbot/internal/history"
)

// Storage is the interface for all persistence operations: the delivered-post
// history snapshot and the inbound update cursor.
type Storage interface {
	// LoadHistory returns the stored history snapshot. A store that was
	// never written to yields an empty snapshot, not an error.
	LoadHistory(ctx context.Context) (history.Snapshot, error)
	// SaveHistory replaces the stored snapshot with snap as one atomic
	// write: a crash mid-save leaves the previous copy intact.
	SaveHistory(ctx context.Context, snap history.Snapshot) error
	// ClearHistory removes the history of the named feed, or of all feeds
	// when feed is empty.
	ClearHistory(ctx context.Context, feed string) error

	// LoadCursor returns the last stored update cursor. ok is false when
	// no cursor has ever been stored.
	LoadCursor(ctx context.Context) (cursor int64, ok bool, err error)
	SaveCursor(ctx context.Context, cursor int64) error

	Close() error
}
