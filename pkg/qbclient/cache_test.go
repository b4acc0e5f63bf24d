package qbclient

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestMemoryStore_TTLExpiry(t *testing.T) {
	s := newMemoryStore()
	ctx := context.Background()

	s.set(ctx, "k", []byte("v"), 20*time.Millisecond)
	if v, ok := s.get(ctx, "k"); !ok || string(v) != "v" {
		t.Fatalf("get() = %q, %v", v, ok)
	}

	time.Sleep(40 * time.Millisecond)
	if _, ok := s.get(ctx, "k"); ok {
		t.Error("get() after TTL: expected miss")
	}
}

func TestResponseCache_CompressionRoundTrip(t *testing.T) {
	cache, err := newResponseCache(CacheConfig{Enabled: true, TTL: 60})
	if err != nil {
		t.Fatalf("newResponseCache() error = %v", err)
	}
	defer cache.close()

	ctx := context.Background()
	payload := bytes.Repeat([]byte(`{"id":"bqtbl1","name":"Projects"}`), 100)

	cache.set(ctx, "key1", payload)
	got, ok := cache.get(ctx, "key1")
	if !ok {
		t.Fatal("get(): expected hit")
	}
	if !bytes.Equal(got, payload) {
		t.Error("round trip mismatch")
	}

	// Сжатая запись в store должна быть меньше исходного повторяющегося payload
	compressed, ok := cache.store.get(ctx, "key1")
	if !ok {
		t.Fatal("store.get(): expected hit")
	}
	if len(compressed) >= len(payload) {
		t.Errorf("compressed %d bytes >= raw %d bytes", len(compressed), len(payload))
	}
}

func TestResponseCache_Clear(t *testing.T) {
	cache, err := newResponseCache(CacheConfig{Enabled: true, TTL: 60})
	if err != nil {
		t.Fatalf("newResponseCache() error = %v", err)
	}
	defer cache.close()

	ctx := context.Background()
	cache.set(ctx, "key1", []byte("data"))
	cache.clear(ctx)
	if _, ok := cache.get(ctx, "key1"); ok {
		t.Error("get() after clear: expected miss")
	}
}

func TestCacheKey_DistinguishesRequests(t *testing.T) {
	a := cacheKey("GET", "https://api/v1/tables", "appId=1")
	b := cacheKey("GET", "https://api/v1/tables", "appId=2")
	c := cacheKey("POST", "https://api/v1/tables", "appId=1")

	if a == b || a == c {
		t.Errorf("keys collide: %q %q %q", a, b, c)
	}
	if a != cacheKey("GET", "https://api/v1/tables", "appId=1") {
		t.Error("key is not stable")
	}
	if len(a) != 32 {
		t.Errorf("key length = %d, want 32 hex chars", len(a))
	}
}
