package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bingsoohouse/storefront-client/internal/core/domain"
	"github.com/bingsoohouse/storefront-client/internal/core/ports"
)

// stubRedis records commands and serves canned replies.
type stubRedis struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	delErr  error
	lastTTL time.Duration
	deleted []string
}

func newStubRedis() *stubRedis {
	return &stubRedis{data: map[string][]byte{}}
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if s.getErr != nil {
		cmd.SetErr(s.getErr)
		return cmd
	}
	raw, ok := s.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(string(raw))
	return cmd
}

func (s *stubRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if s.setErr != nil {
		cmd.SetErr(s.setErr)
		return cmd
	}
	s.data[key] = value.([]byte)
	s.lastTTL = expiration
	cmd.SetVal("OK")
	return cmd
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if s.delErr != nil {
		cmd.SetErr(s.delErr)
		return cmd
	}
	for _, k := range keys {
		delete(s.data, k)
		s.deleted = append(s.deleted, k)
	}
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func TestRedisStore_RoundTrip(t *testing.T) {
	rdb := newStubRedis()
	s := NewRedisStore(rdb, "counter-3", time.Hour)
	ctx := context.Background()

	user := &domain.User{ID: "u1", Username: "sulbing", Role: domain.RoleUser}
	if err := s.Save(ctx, "tok-1", user); err != nil {
		t.Fatalf("save: %v", err)
	}
	if rdb.lastTTL != time.Hour {
		t.Fatalf("expected ttl to be forwarded, got %v", rdb.lastTTL)
	}

	token, got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if token != "tok-1" || got == nil || got.Username != "sulbing" {
		t.Fatalf("unexpected slot %q %+v", token, got)
	}
}

func TestRedisStore_KeyIsScopedToTerminal(t *testing.T) {
	rdb := newStubRedis()
	s := NewRedisStore(rdb, "counter-3", 0)
	ctx := context.Background()

	if err := s.Save(ctx, "tok-1", nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok := rdb.data["storefront:session:counter-3"]; !ok {
		t.Fatalf("slot not stored under terminal key, keys: %v", keysOf(rdb.data))
	}

	other := NewRedisStore(rdb, "counter-4", 0)
	if _, _, err := other.Load(ctx); !errors.Is(err, ports.ErrNoToken) {
		t.Fatalf("expected other terminal to see no token, got %v", err)
	}
}

func TestRedisStore_MissingKeyIsNoToken(t *testing.T) {
	s := NewRedisStore(newStubRedis(), "counter-3", 0)

	if _, _, err := s.Load(context.Background()); !errors.Is(err, ports.ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestRedisStore_EmptyTokenSlotIsNoToken(t *testing.T) {
	rdb := newStubRedis()
	raw, _ := json.Marshal(slot{})
	rdb.data["storefront:session:counter-3"] = raw
	s := NewRedisStore(rdb, "counter-3", 0)

	if _, _, err := s.Load(context.Background()); !errors.Is(err, ports.ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestRedisStore_Clear(t *testing.T) {
	rdb := newStubRedis()
	s := NewRedisStore(rdb, "counter-3", 0)
	ctx := context.Background()

	if err := s.Save(ctx, "tok-1", nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(rdb.deleted) != 1 || rdb.deleted[0] != "storefront:session:counter-3" {
		t.Fatalf("unexpected deletes %v", rdb.deleted)
	}
	if _, _, err := s.Load(ctx); !errors.Is(err, ports.ErrNoToken) {
		t.Fatalf("expected ErrNoToken after clear, got %v", err)
	}
}

func TestRedisStore_BackendFailuresSurface(t *testing.T) {
	rdb := newStubRedis()
	rdb.getErr = errors.New("connection refused")
	rdb.setErr = errors.New("connection refused")
	rdb.delErr = errors.New("connection refused")
	s := NewRedisStore(rdb, "counter-3", 0)
	ctx := context.Background()

	if _, _, err := s.Load(ctx); err == nil || errors.Is(err, ports.ErrNoToken) {
		t.Fatalf("expected load failure, got %v", err)
	}
	if err := s.Save(ctx, "tok-1", nil); err == nil {
		t.Fatalf("expected save failure")
	}
	if err := s.Clear(ctx); err == nil {
		t.Fatalf("expected clear failure")
	}
}

func keysOf(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
