package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// SeenStore keeps the per-player seen set as a Redis SET. The set carries no
// TTL: it must outlive individual rounds, and only an explicit bank reset
// clears it.
type SeenStore struct {
	client *redis.Client
}

func NewSeenStore(client *redis.Client) *SeenStore {
	return &SeenStore{client: client}
}

func (s *SeenStore) Members(ctx context.Context, playerID string) (map[string]struct{}, error) {
	ids, err := s.client.SMembers(ctx, s.key(playerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load seen set: %w", err)
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (s *SeenStore) Add(ctx context.Context, playerID, questionID string) error {
	if err := s.client.SAdd(ctx, s.key(playerID), questionID).Err(); err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}

func (s *SeenStore) Clear(ctx context.Context, playerID string) error {
	if err := s.client.Del(ctx, s.key(playerID)).Err(); err != nil {
		return fmt.Errorf("clear seen set: %w", err)
	}
	return nil
}

func (s *SeenStore) key(playerID string) string {
	return "quiz:seen:" + playerID
}
