package redisad

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"travel_smart/internal/adapters/observability"
)

// TokenStore keeps one auth token in Redis under key+":token". Every read
// slides the expiry, so the token lives as long as it is in use.
type TokenStore struct {
	c   *redis.Client
	key string
	ttl time.Duration
}

func NewTokenStore(c *redis.Client, key string, ttl time.Duration) *TokenStore {
	return &TokenStore{c: c, key: key + ":token", ttl: ttl}
}

func (s *TokenStore) Load(ctx context.Context) (string, error) {
	v, err := s.c.GetEx(ctx, s.key, s.ttl).Result()
	if err == redis.Nil {
		observability.ObserveTokenStore("redis", "miss")
		return "", nil
	}
	if err != nil {
		return "", err
	}
	observability.ObserveTokenStore("redis", "hit")
	return v, nil
}

func (s *TokenStore) Save(ctx context.Context, token string) error {
	observability.ObserveTokenStore("redis", "save")
	return s.c.Set(ctx, s.key, token, s.ttl).Err()
}

func (s *TokenStore) Clear(ctx context.Context) error {
	observability.ObserveTokenStore("redis", "clear")
	return s.c.Del(ctx, s.key).Err()
}
