package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Entry represents a cached review result.
type Entry struct {
	Key       string    `json:"key"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
	TTL       int       `json:"ttl"`
}

// DefaultMemoryBytes bounds the in-process layer when no size is configured.
const DefaultMemoryBytes = 16 << 20

// Cache stores review responses on disk with an in-process layer in front.
// Get checks memory first, then disk, backfilling memory on a disk hit.
type Cache struct {
	dir        string
	ttlSeconds int
	enabled    bool
	mem        *memory
}

// New creates a new Cache. If dir is empty, uses the default cache directory.
// memoryBytes bounds the in-process layer; zero uses DefaultMemoryBytes and
// a negative value disables it.
func New(enabled bool, dir string, ttlSeconds int, memoryBytes int64) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}
	if dir == "" {
		d, err := defaultCacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	c := &Cache{
		dir:        dir,
		ttlSeconds: ttlSeconds,
		enabled:    true,
	}
	if memoryBytes == 0 {
		memoryBytes = DefaultMemoryBytes
	}
	if memoryBytes > 0 {
		mem, err := newMemory(memoryBytes)
		if err != nil {
			return nil, fmt.Errorf("creating memory cache: %w", err)
		}
		c.mem = mem
	}
	return c, nil
}

// Close releases the in-process layer.
func (c *Cache) Close() {
	if c.mem != nil {
		c.mem.close()
	}
}

// Get retrieves a cached entry by key. Returns ("", false) on miss.
func (c *Cache) Get(key string) (string, bool) {
	if !c.enabled {
		return "", false
	}
	hashed := HashKey(key)
	if c.mem != nil {
		if v, ok := c.mem.get(hashed); ok {
			return v, true
		}
	}

	path := c.entryPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", false
	}
	remaining := c.remaining(entry)
	if remaining < 0 {
		os.Remove(path)
		return "", false
	}
	if c.mem != nil {
		c.mem.set(hashed, entry.Response, remaining)
	}
	return entry.Response, true
}

// Put stores a response in the cache.
func (c *Cache) Put(key, response string) error {
	if !c.enabled {
		return nil
	}
	entry := Entry{
		Key:       HashKey(key),
		Response:  response,
		CreatedAt: time.Now(),
		TTL:       c.ttlSeconds,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	if err := os.WriteFile(c.entryPath(key), data, 0o644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if c.mem != nil {
		c.mem.set(entry.Key, response, c.ttl())
	}
	return nil
}

// Delete removes one entry from both layers.
func (c *Cache) Delete(key string) error {
	if !c.enabled {
		return nil
	}
	if c.mem != nil {
		c.mem.del(HashKey(key))
	}
	if err := os.Remove(c.entryPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing cache entry: %w", err)
	}
	return nil
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled || c.dir == "" {
		return nil
	}
	if c.mem != nil {
		c.mem.clear()
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing %s: %w", e.Name(), err)
			}
		}
	}
	return nil
}

// Stats returns cache statistics.
type Stats struct {
	Dir        string `json:"dir"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
	Expired    int    `json:"expired"`
}

// GetStats returns information about the on-disk cache.
func (c *Cache) GetStats() (Stats, error) {
	stats := Stats{Dir: c.dir}
	if !c.enabled || c.dir == "" {
		return stats, nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()

		data, err := os.ReadFile(filepath.Join(c.dir, e.Name()))
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		if c.remaining(entry) < 0 {
			stats.Expired++
		}
	}
	return stats, nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// Enabled returns whether caching is enabled.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// HashKey creates a SHA-256 hash of the given key material.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}

// BuildCacheKey creates a cache key from the review inputs. The code should
// already be redacted.
func BuildCacheKey(provider, model, language, code string) string {
	return HashKey(fmt.Sprintf("%s:%s:%s:%s", provider, model, language, code))
}

func (c *Cache) ttl() time.Duration {
	return time.Duration(c.ttlSeconds) * time.Second
}

// remaining is the time left before entry expires. It is negative once
// expired, and the full TTL (or zero for no expiry) otherwise.
func (c *Cache) remaining(entry Entry) time.Duration {
	if c.ttlSeconds <= 0 {
		return 0
	}
	return c.ttl() - time.Since(entry.CreatedAt)
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, HashKey(key)+".json")
}

func defaultCacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "snapreview"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "snapreview"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "snapreview", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "snapreview", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "snapreview"), nil
	}
}
