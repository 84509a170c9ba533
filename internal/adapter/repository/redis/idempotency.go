package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "gotransfer:idempotency:"
	// reserveAttempts bounds how often Reserve retries a key that expires
	// between SETNX and GET.
	reserveAttempts = 5
)

// ErrReserveContended is returned when a key keeps expiring while Reserve
// tries to read it.
var ErrReserveContended = errors.New("idempotency key kept expiring during reserve")

// IdempotencyStore implements usecase.IdempotencyStore using Redis.
type IdempotencyStore struct {
	client redis.UniversalClient
	prefix string
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client redis.UniversalClient) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: defaultKeyPrefix,
	}
}

// Reserve claims key by storing value. When the key is already taken it
// returns false and the value found there.
func (s *IdempotencyStore) Reserve(ctx context.Context, key, value string, ttl time.Duration) (bool, string, error) {
	fullKey := s.prefix + key

	for range reserveAttempts {
		set, err := s.client.SetNX(ctx, fullKey, value, ttl).Result()
		if err != nil {
			return false, "", fmt.Errorf("failed to reserve idempotency key: %w", err)
		}
		if set {
			return true, "", nil
		}

		existing, err := s.client.Get(ctx, fullKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return false, "", fmt.Errorf("failed to read idempotency key: %w", err)
		}

		return false, existing, nil
	}

	return false, "", fmt.Errorf("key %q: %w", key, ErrReserveContended)
}

// Complete overwrites key with the final outcome.
func (s *IdempotencyStore) Complete(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, value, ttl).Err()
}

// Release removes key so the request can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
