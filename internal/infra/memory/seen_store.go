package memory

import (
	"context"
	"sync"
)

// SeenStore is an in-memory implementation of app.SeenStore: a monotonically
// growing set of served question ids per player, reset only via Clear.
type SeenStore struct {
	mu   sync.RWMutex
	seen map[string]map[string]struct{}
}

func NewSeenStore() *SeenStore {
	return &SeenStore{
		seen: make(map[string]map[string]struct{}),
	}
}

func (s *SeenStore) Members(_ context.Context, playerID string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]struct{}, len(s.seen[playerID]))
	for id := range s.seen[playerID] {
		out[id] = struct{}{}
	}
	return out, nil
}

func (s *SeenStore) Add(_ context.Context, playerID, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.seen[playerID]
	if !ok {
		set = make(map[string]struct{})
		s.seen[playerID] = set
	}
	set[questionID] = struct{}{}
	return nil
}

func (s *SeenStore) Clear(_ context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, playerID)
	return nil
}
