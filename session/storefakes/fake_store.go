package storefakes

import (
	"sync"

	"github.com/docuflow/admin-gateway/session"
)

// FakeStore is an in-memory session.Store for tests.
type FakeStore struct {
	mu      sync.Mutex
	bundle  *session.TokenBundle
	saves   int
	deletes int
}

var _ session.Store = (*FakeStore)(nil)

// NewFakeStore creates an empty in-memory store.
func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

// NewFakeStoreWith creates a store pre-populated with the given bundle.
func NewFakeStoreWith(bundle session.TokenBundle) *FakeStore {
	return &FakeStore{bundle: &bundle}
}

func (s *FakeStore) Save(bundle session.TokenBundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundle = &bundle
	s.saves++
	return nil
}

func (s *FakeStore) Load() *session.TokenBundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bundle == nil {
		return nil
	}
	copied := *s.bundle
	return &copied
}

func (s *FakeStore) Delete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundle = nil
	s.deletes++
}

// Saves returns how many times Save was called.
func (s *FakeStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Deletes returns how many times Delete was called.
func (s *FakeStore) Deletes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deletes
}
