package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// EligibilityStore keeps per-user last-played timestamps in Redis. Values are
// RFC3339 strings under trivia:lastplayed:{userID}; an optional TTL lets stale
// records expire on their own (only same-day records matter to the gate).
type EligibilityStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewEligibilityStore(client *redis.Client, ttl time.Duration) *EligibilityStore {
	return &EligibilityStore{client: client, ttl: ttl}
}

func (s *EligibilityStore) LastPlayed(ctx context.Context, userID string) (time.Time, bool, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get last played: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse last played: %w", err)
	}
	return t, true, nil
}

func (s *EligibilityStore) MarkPlayed(ctx context.Context, userID string, playedAt time.Time) error {
	if err := s.client.Set(ctx, s.key(userID), playedAt.Format(time.RFC3339Nano), s.ttl).Err(); err != nil {
		return fmt.Errorf("set last played: %w", err)
	}
	return nil
}

func (s *EligibilityStore) key(userID string) string {
	return "trivia:lastplayed:" + userID
}
