package memory

import (
	"context"
	"sync"

	"oloom-quiz-service/internal/domain"
)

// RoundStore is an in-memory implementation of app.RoundStore. States are
// cloned on the way in and out so callers never share mutable state with the
// store, matching the serialize/deserialize behavior of the Redis store.
type RoundStore struct {
	mu     sync.RWMutex
	rounds map[string]*domain.RoundState
}

func NewRoundStore() *RoundStore {
	return &RoundStore{
		rounds: make(map[string]*domain.RoundState),
	}
}

func (s *RoundStore) Load(_ context.Context, playerID string) (*domain.RoundState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.rounds[playerID]
	if !ok {
		return nil, domain.ErrRoundNotFound
	}
	return state.Clone(), nil
}

func (s *RoundStore) Save(_ context.Context, playerID string, state *domain.RoundState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds[playerID] = state.Clone()
	return nil
}

func (s *RoundStore) Delete(_ context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rounds, playerID)
	return nil
}
