// Package session holds the authoritative registry mapping user identity
// to the active session record.
package session

import (
	"context"

	"github.com/ssorelay/core/internal/models"
)

// Store is the registry contract. At most one record exists per identity;
// Put replaces silently, absence is a normal return value, never an error.
type Store interface {
	// Put inserts or replaces the record for its identity.
	Put(ctx context.Context, rec *models.SessionRecord) error
	// Get returns the current record, or (nil, nil) when absent.
	Get(ctx context.Context, identity string) (*models.SessionRecord, error)
	// Remove deletes the record if present and reports whether one was
	// actually removed. Removing an absent identity is a no-op.
	Remove(ctx context.Context, identity string) (bool, error)
	// ListAll returns a snapshot of all records ordered by insertion
	// time. The snapshot is not stable under concurrent mutation.
	ListAll(ctx context.Context) ([]*models.SessionRecord, error)
	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}
