package memory

import (
	"context"
	"sync"
	"time"

	"jobboard/common/cache"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Cache keeps entries in process memory. Nothing survives a restart.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	closed  bool
	now     func() time.Time
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (c *Cache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := cache.ValidKey(key); err != nil {
		return err
	}
	data, err := cache.Encode(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return cache.ErrClosed
	}

	e := entry{value: data}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

func (c *Cache) Get(_ context.Context, key string, value interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return cache.ErrClosed
	}

	e, ok := c.entries[key]
	if !ok || (!e.expiresAt.IsZero() && c.now().After(e.expiresAt)) {
		return cache.ErrNotFound
	}
	return cache.Decode(e.value, value)
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *Cache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	return nil
}

func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
