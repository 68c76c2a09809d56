package session

import (
	"context"
	"sync"
)

// MemoryStore is a process-local IdentityStore
type MemoryStore struct {
	mu         sync.RWMutex
	identities map[string]Identity
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{identities: make(map[string]Identity)}
}

func (s *MemoryStore) Save(_ context.Context, identity Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[identity.MemberID] = identity
	return nil
}

func (s *MemoryStore) Get(_ context.Context, memberID string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[memberID]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	return &identity, nil
}

func (s *MemoryStore) Delete(_ context.Context, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.identities, memberID)
	return nil
}
