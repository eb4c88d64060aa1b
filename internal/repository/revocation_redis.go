package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:"

// RedisRevocationRepository records revoked token ids as Redis keys that
// expire together with the token.
type RedisRevocationRepository struct {
	Client redis.Cmdable
}

// NewRedisClient connects to the Redis server at addr and verifies the
// connection with PING.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// NewRedisRevocationRepository creates a RedisRevocationRepository over client.
func NewRedisRevocationRepository(client redis.Cmdable) *RedisRevocationRepository {
	return &RedisRevocationRepository{Client: client}
}

// Revoke marks tokenID as revoked until expiresAt. Already-expired tokens
// are not stored.
func (r *RedisRevocationRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.Client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("Revoke: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID was revoked and has not yet expired.
func (r *RedisRevocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.Client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("IsRevoked: %w", err)
	}
	return n > 0, nil
}
