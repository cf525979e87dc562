package cache

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// SessionCache keeps the current login token of every user in Redis. A new
// login replaces the previous token; logout deletes it.
type SessionCache struct {
	client     *redisv9.Client
	defaultTTL time.Duration
}

func NewSessionCache(client *redisv9.Client, defaultTTL time.Duration) *SessionCache {
	if defaultTTL <= 0 {
		defaultTTL = 2 * time.Hour
	}
	return &SessionCache{
		client:     client,
		defaultTTL: defaultTTL,
	}
}

func (c *SessionCache) SetToken(ctx context.Context, userID uint, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, c.tokenKey(userID), token, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session token failed: %w", err)
	}
	return nil
}

func (c *SessionCache) GetToken(ctx context.Context, userID uint) (string, bool, error) {
	token, err := c.client.Get(ctx, c.tokenKey(userID)).Result()
	if err == redisv9.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get session token failed: %w", err)
	}
	return token, true, nil
}

func (c *SessionCache) DeleteToken(ctx context.Context, userID uint) error {
	if err := c.client.Del(ctx, c.tokenKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete session token failed: %w", err)
	}
	return nil
}

func (c *SessionCache) tokenKey(userID uint) string {
	return fmt.Sprintf("auth:session:%d", userID)
}
