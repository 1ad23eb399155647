package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bingsoohouse/storefront-client/internal/core/domain"
	"github.com/bingsoohouse/storefront-client/internal/core/ports"
)

const defaultConnectTimeout = 5 * time.Second

// RedisConfig captures the settings for establishing a Redis connection.
type RedisConfig struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect initialises a Redis client and validates connectivity with a ping.
// A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// redisCmdable is the slice of the redis client the store needs. Tests stub
// it; production passes *redis.Client.
type redisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore persists the session slot in Redis, keyed by terminal ID, for
// POS terminals that share a counter machine.
// Key format: storefront:session:<terminal_id>
type RedisStore struct {
	client   redisCmdable
	terminal string
	ttl      time.Duration
}

// NewRedisStore wraps client for the given terminal. A non-zero ttl bounds
// how long an untouched slot survives.
func NewRedisStore(client redisCmdable, terminal string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, terminal: terminal, ttl: ttl}
}

var _ ports.TokenStore = (*RedisStore)(nil)

func (s *RedisStore) Load(ctx context.Context) (string, *domain.User, error) {
	raw, err := s.client.Get(ctx, s.key()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return "", nil, ports.ErrNoToken
		}
		return "", nil, fmt.Errorf("redis load: %w", err)
	}

	var sl slot
	if err := json.Unmarshal(raw, &sl); err != nil {
		return "", nil, fmt.Errorf("decode session slot: %w", err)
	}
	if sl.Token == "" {
		return "", nil, ports.ErrNoToken
	}
	return sl.Token, sl.User, nil
}

func (s *RedisStore) Save(ctx context.Context, token string, user *domain.User) error {
	raw, err := json.Marshal(slot{Token: token, User: user})
	if err != nil {
		return fmt.Errorf("encode session slot: %w", err)
	}
	if err := s.client.Set(ctx, s.key(), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis save: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("redis clear: %w", err)
	}
	return nil
}

func (s *RedisStore) key() string {
	return "storefront:session:" + s.terminal
}
