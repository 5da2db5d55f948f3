// Package auth implements opaque bearer token authentication backed by Redis.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrInvalidToken indicates an unknown or expired token.
var ErrInvalidToken = errors.New("auth: invalid token")

const tokenPrefix = "auth:token:"

// TokenStore issues and resolves opaque bearer tokens with a TTL.
type TokenStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTokenStore constructs a token store. A non-positive ttl defaults to 30 days.
func NewTokenStore(rdb *redis.Client, ttl time.Duration) *TokenStore {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &TokenStore{rdb: rdb, ttl: ttl}
}

// Issue mints a new token bound to the user id.
func (s *TokenStore) Issue(ctx context.Context, userID int64) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(buf)
	if err := s.rdb.Set(ctx, tokenPrefix+token, userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

// Resolve returns the user id bound to the token and refreshes its TTL.
func (s *TokenStore) Resolve(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}
	val, err := s.rdb.Get(ctx, tokenPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrInvalidToken
		}
		return 0, fmt.Errorf("resolve token: %w", err)
	}
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	// Sliding expiry keeps active sessions alive.
	_ = s.rdb.Expire(ctx, tokenPrefix+token, s.ttl).Err()
	return userID, nil
}

// Revoke deletes the token.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.rdb.Del(ctx, tokenPrefix+token).Err()
}
