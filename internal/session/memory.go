package session

import (
	"context"
	"sort"
	"sync"

	"github.com/Raiwe17/ProektSite/internal/runtime"
)

// MemoryStore keeps sessions in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]runtime.State
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]runtime.State)}
}

func (s *MemoryStore) Save(_ context.Context, id string, state runtime.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = cloneState(state)
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (runtime.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.data[id]
	if !ok {
		return runtime.State{}, ErrSessionNotFound
	}
	return cloneState(state), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored session ids in sorted order.
func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
