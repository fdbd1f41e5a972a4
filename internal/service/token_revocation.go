package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prperemyshlev/account-linker/pkg/database"
)

// RedisTokenRevoker stores revoked session ids in Redis
type RedisTokenRevoker struct {
	redis *database.Redis
}

// NewRedisTokenRevoker creates a new Redis-backed revocation list
func NewRedisTokenRevoker(redis *database.Redis) *RedisTokenRevoker {
	return &RedisTokenRevoker{redis: redis}
}

var _ TokenRevoker = (*RedisTokenRevoker)(nil)

func revokedKey(tokenID string) string {
	return fmt.Sprintf("session:revoked:%s", tokenID)
}

// Revoke adds a session id to the list until ttl elapses
func (s *RedisTokenRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	err := s.redis.Client.Set(ctx, revokedKey(tokenID), "1", ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked checks if a session id is on the list
func (s *RedisTokenRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	exists, err := s.redis.Client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return exists > 0, nil
}
