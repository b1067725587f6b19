package sessions

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no record exists for an identity.
var ErrNotFound = errors.New("session record not found")

// Store defines the interface for session record storage.
type Store interface {
	// Get retrieves the record for an identity, ErrNotFound if absent
	Get(ctx context.Context, identity string) (*Record, error)

	// Put creates or overwrites the record for record.Identity
	Put(ctx context.Context, record *Record) error
}
