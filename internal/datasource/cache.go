package datasource

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Cache is a file-backed TTL cache for fetched attachment text.
type Cache struct {
	cacheDir string
	ttl      time.Duration
	mu       sync.RWMutex
}

type cacheEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// NewCache creates the cache directory if needed.
func NewCache(cacheDir string, ttl time.Duration) (*Cache, error) {
	if cacheDir == "" {
		cacheDir = "cache/attachments"
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{cacheDir: cacheDir, ttl: ttl}, nil
}

// Get returns the cached bytes for key, dropping the entry if it has expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cacheFile := c.filePath(key)
	info, err := os.Stat(cacheFile)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > c.ttl {
		os.Remove(cacheFile)
		return nil, false
	}

	data, err := os.ReadFile(cacheFile)
	if err != nil {
		return nil, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	// md5 collisions are not a concern, but a stale file from a different key is
	if entry.Key != key {
		return nil, false
	}
	return entry.Data, true
}

func (c *Cache) Set(key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entryData, err := json.Marshal(cacheEntry{Key: key, Data: data, Timestamp: time.Now()})
	if err != nil {
		return err
	}
	return os.WriteFile(c.filePath(key), entryData, 0o644)
}

// CleanupExpired removes expired entries and returns how many were removed.
func (c *Cache) CleanupExpired() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) > c.ttl {
			if os.Remove(filepath.Join(c.cacheDir, entry.Name())) == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func (c *Cache) filePath(key string) string {
	hash := md5.Sum([]byte(key))
	return filepath.Join(c.cacheDir, fmt.Sprintf("%x.json", hash))
}

// GetOrFetch returns the cached value or calls fetchFn and caches its result.
// Cache write failures are ignored; the fetched data is still returned.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetchFn func(context.Context) ([]byte, error)) ([]byte, error) {
	if data, ok := c.Get(key); ok {
		return data, nil
	}

	data, err := fetchFn(ctx)
	if err != nil {
		return nil, err
	}
	_ = c.Set(key, data)
	return data, nil
}

// MakeKey joins key parts with '|'.
func MakeKey(parts ...string) string {
	return strings.Join(parts, "|")
}
