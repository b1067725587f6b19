package storefakes

import (
	"context"
	"sync"

	"github.com/azulbi/go-auth-gateway/sessions"
)

var _ sessions.Store = (*FakeStore)(nil)

// FakeStore is an in-memory test double that records call counts and can be
// forced to fail.
type FakeStore struct {
	lock    sync.RWMutex
	records map[string]sessions.Record

	GetCalls int
	PutCalls int
	GetErr   error
	PutErr   error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		records: make(map[string]sessions.Record),
	}
}

func (s *FakeStore) Get(_ context.Context, identity string) (*sessions.Record, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.GetCalls++
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	record, ok := s.records[identity]
	if !ok {
		return nil, sessions.ErrNotFound
	}
	return &record, nil
}

func (s *FakeStore) Put(_ context.Context, record *sessions.Record) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.PutCalls++
	if s.PutErr != nil {
		return s.PutErr
	}
	s.records[record.Identity] = *record
	return nil
}

// Seed installs a record without counting as a Put call.
func (s *FakeStore) Seed(record sessions.Record) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.records[record.Identity] = record
}

// Stored returns the current record for an identity, nil if absent.
func (s *FakeStore) Stored(identity string) *sessions.Record {
	s.lock.RLock()
	defer s.lock.RUnlock()
	record, ok := s.records[identity]
	if !ok {
		return nil
	}
	return &record
}

// Len reports how many records the store holds.
func (s *FakeStore) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.records)
}
