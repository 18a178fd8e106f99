package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestMemory(t *testing.T, opts ...MemoryOption) (*MemoryCache, *clock) {
	t.Helper()
	mc := NewMemoryCache(opts...)
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mc.now = clk.now
	t.Cleanup(func() { _ = mc.Close() })
	return mc, clk
}

func TestMemoryCache_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	mc, clk := newTestMemory(t)

	if _, err := mc.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
	if err := mc.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := mc.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("expected v, got %q (%v)", got, err)
	}

	clk.t = clk.t.Add(2 * time.Minute)
	if _, err := mc.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestMemoryCache_ExpireExtends(t *testing.T) {
	ctx := context.Background()
	mc, clk := newTestMemory(t)
	_ = mc.Set(ctx, "k", []byte("v"), time.Minute)

	ok, _ := mc.Expire(ctx, "k", time.Hour)
	if !ok {
		t.Fatal("expected Expire to find the key")
	}
	clk.t = clk.t.Add(30 * time.Minute)
	if ok, _ := mc.Exists(ctx, "k"); !ok {
		t.Fatal("key should still exist after the extension")
	}
	if ok, _ := mc.Expire(ctx, "absent", time.Hour); ok {
		t.Fatal("Expire on a missing key should report false")
	}
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc, clk := newTestMemory(t, WithMemoryMaxSize(2))

	_ = mc.Set(ctx, "a", []byte("1"), 0)
	clk.t = clk.t.Add(time.Second)
	_ = mc.Set(ctx, "b", []byte("2"), 0)
	clk.t = clk.t.Add(time.Second)
	_, _ = mc.Get(ctx, "a") // a is now more recent than b
	clk.t = clk.t.Add(time.Second)
	_ = mc.Set(ctx, "c", []byte("3"), 0)

	if _, err := mc.Get(ctx, "b"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected b to be evicted, got %v", err)
	}
	if mc.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", mc.Len())
	}
}

func TestMemoryCache_CopiesValues(t *testing.T) {
	ctx := context.Background()
	mc, _ := newTestMemory(t)
	buf := []byte("abc")
	_ = mc.Set(ctx, "k", buf, 0)
	buf[0] = 'x'
	got, _ := mc.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value changed with the caller's buffer: %q", got)
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	mc, _ := newTestMemory(t)
	type payload struct {
		Index string `json:"index"`
	}
	if err := SetJSON(ctx, mc, "s", payload{Index: "NYSE"}, time.Minute); err != nil {
		t.Fatalf("set json: %v", err)
	}
	got, err := GetJSON[payload](ctx, mc, "s")
	if err != nil || got.Index != "NYSE" {
		t.Fatalf("unexpected %+v (%v)", got, err)
	}
	if _, err := GetJSON[payload](ctx, mc, "none"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestLayeredCache_ReadThroughAndDelete(t *testing.T) {
	ctx := context.Background()
	l2, _ := newTestMemory(t)
	lc := NewLayeredCache(l2, WithLayeredL1TTL(time.Minute))
	defer lc.mem.Close()

	_ = l2.Set(ctx, "k", []byte("from-l2"), time.Hour)
	got, err := lc.Get(ctx, "k")
	if err != nil || string(got) != "from-l2" {
		t.Fatalf("expected read-through, got %q (%v)", got, err)
	}
	if ok, _ := lc.mem.Exists(ctx, "k"); !ok {
		t.Fatal("value should be promoted to L1")
	}

	if err := lc.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := lc.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestLayeredCache_WriteThrough(t *testing.T) {
	ctx := context.Background()
	l2, _ := newTestMemory(t)
	lc := NewLayeredCache(l2)
	defer lc.mem.Close()

	if err := lc.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, err := l2.Get(ctx, "k"); err != nil || string(got) != "v" {
		t.Fatalf("expected value in L2, got %q (%v)", got, err)
	}
	if ok, _ := lc.Expire(ctx, "k", 2*time.Hour); !ok {
		t.Fatal("expire should succeed on a present key")
	}
}

func TestRedisCache_WrapKey(t *testing.T) {
	c := &RedisCache{prefix: "indexscope"}
	if got := c.wrapKey("session:abc"); got != "indexscope:session:abc" {
		t.Fatalf("unexpected key %q", got)
	}
	c.prefix = ""
	if got := c.wrapKey("k"); got != "k" {
		t.Fatalf("unexpected key %q", got)
	}
}
