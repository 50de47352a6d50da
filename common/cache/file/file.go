package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"jobboard/common/cache"
)

type record struct {
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Cache persists entries as a single JSON document readable only by the
// current user. Every write rewrites the whole file.
type Cache struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func New(opts cache.Options) (*Cache, error) {
	path := opts.FilePath
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		path = filepath.Join(dir, "jobboard", "session.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &Cache{path: path, now: time.Now}, nil
}

func (c *Cache) Path() string {
	return c.path
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

	records, err := c.load()
	if err != nil {
		return err
	}
	r := record{Value: data}
	if ttl > 0 {
		r.ExpiresAt = c.now().Add(ttl)
	}
	records[key] = r
	return c.save(records)
}

func (c *Cache) Get(_ context.Context, key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return err
	}
	r, ok := records[key]
	if !ok || (!r.ExpiresAt.IsZero() && c.now().After(r.ExpiresAt)) {
		return cache.ErrNotFound
	}
	return cache.Decode(r.Value, value)
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return err
	}
	if _, ok := records[key]; !ok {
		return nil
	}
	delete(records, key)
	return c.save(records)
}

func (c *Cache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", c.path, err)
	}
	return nil
}

func (c *Cache) Close() error {
	return nil
}

func (c *Cache) load() (map[string]record, error) {
	records := make(map[string]record)
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return records, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.path, err)
	}
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.path, err)
	}
	return records, nil
}

func (c *Cache) save(records map[string]record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, c.path)
}
