package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"oloom-quiz-service/internal/domain"
)

// RoundStore persists round state as a JSON blob per player with a TTL, so a
// round survives disconnects and instance restarts but eventually expires if
// abandoned.
type RoundStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRoundStore(client *redis.Client, ttl time.Duration) *RoundStore {
	return &RoundStore{client: client, ttl: ttl}
}

func (s *RoundStore) Load(ctx context.Context, playerID string) (*domain.RoundState, error) {
	raw, err := s.client.Get(ctx, s.key(playerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrRoundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load round: %w", err)
	}
	var state domain.RoundState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("unmarshal round: %w", err)
	}
	return &state, nil
}

func (s *RoundStore) Save(ctx context.Context, playerID string, state *domain.RoundState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal round: %w", err)
	}
	if err := s.client.Set(ctx, s.key(playerID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save round: %w", err)
	}
	return nil
}

func (s *RoundStore) Delete(ctx context.Context, playerID string) error {
	if err := s.client.Del(ctx, s.key(playerID)).Err(); err != nil {
		return fmt.Errorf("delete round: %w", err)
	}
	return nil
}

func (s *RoundStore) key(playerID string) string {
	return "quiz:round:" + playerID
}
