package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-casa/internal/ports"
)

// ErrMiss is returned by Get when the key is absent or its TTL has
// lapsed. The controller treats a miss as "no remembered target" and
// carries on, so both backends report it the same way.
var ErrMiss = errors.New("cache: miss")

type localEntry struct {
	value     string
	expiresAt time.Time
}

// LocalCache keeps the last-target memory in an in-process map. It is
// the fallback when no redis url is configured: "turn it off" still
// works within a session, but the memory does not survive a restart.
type LocalCache struct {
	mu      sync.RWMutex
	entries map[string]localEntry
	log     *zap.Logger
	stopCh  chan struct{}
}

// NewLocalCache creates an in-memory cache. A background loop evicts
// lapsed entries so an abandoned last-target record does not linger
// past its TTL.
func NewLocalCache(cleanupInterval time.Duration, log *zap.Logger) ports.Cache {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	c := &LocalCache{
		entries: make(map[string]localEntry),
		log:     log,
		stopCh:  make(chan struct{}),
	}

	go c.evictLoop(cleanupInterval)

	log.Info("Using in-memory target cache, last-target memory will not survive restarts",
		zap.Duration("cleanup_interval", cleanupInterval),
	)
	return c
}

func (c *LocalCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", ErrMiss
	}
	if !entry.expiresAt.IsZero() && entry.expiresAt.Before(time.Now()) {
		return "", ErrMiss
	}
	return entry.value, nil
}

func (c *LocalCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	str, err := stringify(value)
	if err != nil {
		return err
	}

	entry := localEntry{value: str}
	if expiration > 0 {
		entry.expiresAt = time.Now().Add(expiration)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) Ping() error { return nil }

func (c *LocalCache) Close() error {
	close(c.stopCh)
	return nil
}

// stringify normalizes values the way redis does: strings and bytes
// pass through, everything else is stored as JSON.
func stringify(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("cache: marshal value: %w", err)
		}
		return string(data), nil
	}
}

func (c *LocalCache) evictLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictLapsed()
		case <-c.stopCh:
			return
		}
	}
}

func (c *LocalCache) evictLapsed() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	evicted := 0
	for key, entry := range c.entries {
		if !entry.expiresAt.IsZero() && entry.expiresAt.Before(now) {
			delete(c.entries, key)
			evicted++
		}
	}

	if evicted > 0 {
		c.log.Debug("Evicted lapsed cache entries", zap.Int("count", evicted))
	}
}
