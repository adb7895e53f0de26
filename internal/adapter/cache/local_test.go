package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLocalCache_MissIsSentinel(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()

	_, err := c.Get(context.Background(), "lasttarget:kitchen")
	if !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss for absent key, got %v", err)
	}
}

func TestLocalCache_LapsedEntryMisses(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "lasttarget:kitchen", "value", 20*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := c.Get(ctx, "lasttarget:kitchen"); err != nil {
		t.Fatalf("fresh entry should hit, got %v", err)
	}

	time.Sleep(40 * time.Millisecond)
	if _, err := c.Get(ctx, "lasttarget:kitchen"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss after TTL, got %v", err)
	}
}

func TestLocalCache_StoresStructsAsJSON(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	rec := map[string]string{"moniker": "bus.kitchen.main", "kind": "light"}
	if err := c.Set(ctx, "lasttarget:kitchen", rec, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	raw, err := c.Get(ctx, "lasttarget:kitchen")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if raw == "" || raw[0] != '{' {
		t.Errorf("expected JSON-encoded value, got %q", raw)
	}
}
