package sessions

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore is an in-memory implementation of Store. Suitable for tests
// and for running the gateway without a database file.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record // identity -> record
}

// NewInMemoryStore creates a new in-memory session store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]Record),
	}
}

// Get retrieves the record for an identity
func (s *InMemoryStore) Get(_ context.Context, identity string) (*Record, error) {
	if identity == "" {
		return nil, errors.New("identity is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[identity]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

// Put creates or overwrites the record for record.Identity
func (s *InMemoryStore) Put(_ context.Context, record *Record) error {
	if record == nil || record.Identity == "" {
		return errors.New("record with identity is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy so callers cannot mutate the stored value
	s.records[record.Identity] = *record
	return nil
}
