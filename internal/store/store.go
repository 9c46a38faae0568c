// Package store provides the persistence gateway for review snapshots.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rcliao/revisit/internal/model"
)

// Hard failures. Check with errors.Is.
var (
	ErrCorruptState = errors.New("store: corrupt state")
	ErrIO           = errors.New("store: i/o failure")
	ErrLocked       = errors.New("store: locked by another process")
)

// Store loads and saves a complete snapshot of review items keyed by topic
// name. It never owns the data; every Save replaces the previous snapshot.
type Store interface {
	// Load returns the last saved snapshot. A missing backing file yields an
	// empty map.
	Load(ctx context.Context) (map[string]model.ReviewItem, error)

	// Save replaces the stored snapshot with items.
	Save(ctx context.Context, items map[string]model.ReviewItem) error

	// Close releases the backing file and its lock.
	Close() error
}

// EventRecorder is implemented by stores that keep a review history log.
type EventRecorder interface {
	// RecordEvent appends one review event.
	RecordEvent(ctx context.Context, ev model.ReviewEvent) error

	// Events lists events newest first. An empty topic matches all topics;
	// limit <= 0 means no limit.
	Events(ctx context.Context, topic string, limit int) ([]model.ReviewEvent, error)
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Open opens the store of the given backend at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendSQLite, "":
		return NewSQLiteStore(path)
	case BackendJSON:
		return NewFileStore(path)
	default:
		return nil, fmt.Errorf("unknown backend %q (valid: sqlite, json)", backend)
	}
}
