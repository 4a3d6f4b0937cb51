package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, "oda:"), mr
}

func TestRedisCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)

	if _, ok, err := c.Get(ctx, "rate:USD:EUR"); ok || err != nil {
		t.Fatalf("Get(miss) = ok %v err %v", ok, err)
	}

	if err := c.Set(ctx, "rate:USD:EUR", []byte(`0.92`), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !mr.Exists("oda:rate:USD:EUR") {
		t.Error("key not stored under prefix")
	}

	v, ok, err := c.Get(ctx, "rate:USD:EUR")
	if err != nil || !ok || string(v) != "0.92" {
		t.Fatalf("Get() = %q, %v, %v", v, ok, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "rate:USD:EUR"); ok {
		t.Error("entry survived its ttl")
	}
}

func TestRedisCache_ServerDown(t *testing.T) {
	c, mr := newTestRedisCache(t)
	mr.Close()

	if _, _, err := c.Get(context.Background(), "k"); err == nil {
		t.Error("expected error when redis is unreachable")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(ctx, "a", []byte("1"), time.Minute)
	c.Set(ctx, "forever", []byte("2"), 0)

	if v, ok, _ := c.Get(ctx, "a"); !ok || string(v) != "1" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}

	now = now.Add(time.Minute)
	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Error("entry a should have expired")
	}
	if _, ok, _ := c.Get(ctx, "forever"); !ok {
		t.Error("entry without ttl should not expire")
	}
}
