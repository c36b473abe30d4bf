package attempt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultAttemptTTL = 2 * time.Hour

// RedisStore keeps attempts server-side, keyed by a random attempt id.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore builds a Redis-backed store. Keys expire after ttl.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "attempt"
	}
	if ttl <= 0 {
		ttl = defaultAttemptTTL
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(handle string) string {
	return fmt.Sprintf("%s:%s", s.prefix, handle)
}

func (s *RedisStore) Save(ctx context.Context, attempt Attempt) (string, error) {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}

	payload, err := json.Marshal(attempt)
	if err != nil {
		return "", fmt.Errorf("encode attempt: %w", err)
	}

	if err := s.client.Set(ctx, s.key(attempt.ID), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store attempt: %w", err)
	}

	return attempt.ID, nil
}

func (s *RedisStore) Load(ctx context.Context, handle string) (Attempt, error) {
	handle = strings.TrimSpace(handle)
	if _, err := uuid.Parse(handle); err != nil {
		return Attempt{}, ErrNotFound
	}

	payload, err := s.client.Get(ctx, s.key(handle)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Attempt{}, ErrNotFound
		}
		return Attempt{}, fmt.Errorf("load attempt: %w", err)
	}

	var attempt Attempt
	if err := json.Unmarshal(payload, &attempt); err != nil {
		return Attempt{}, fmt.Errorf("decode attempt: %w", err)
	}

	return attempt, nil
}

func (s *RedisStore) Discard(ctx context.Context, handle string) error {
	return s.client.Del(ctx, s.key(strings.TrimSpace(handle))).Err()
}
