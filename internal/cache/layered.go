package cache

import "time"

// LayeredCache puts a hot in-process layer over a persistent one
type LayeredCache struct {
	hot  Cache
	cold Cache
}

// NewLayeredCache creates a layered cache from two caches
func NewLayeredCache(hot, cold Cache) *LayeredCache {
	return &LayeredCache{hot: hot, cold: cold}
}

// NewMemoryOverDisk builds the default memory + disk stack
func NewMemoryOverDisk(memoryTTL time.Duration, diskDir string) *LayeredCache {
	return NewLayeredCache(NewMemoryCache(memoryTTL, 10*time.Minute), NewDiskCache(diskDir, 0))
}

// Get checks the hot layer first and promotes cold hits
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.hot.Get(key); found {
		return val, true
	}

	if val, found := c.cold.Get(key); found {
		_ = c.hot.Set(key, val, 0)
		return val, true
	}

	return nil, false
}

// Set stores in the persistent layer first; the hot layer is only updated on success
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.cold.Set(key, value, ttl); err != nil {
		_ = c.hot.Delete(key)
		return err
	}
	return c.hot.Set(key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(key string) error {
	_ = c.hot.Delete(key)
	return c.cold.Delete(key)
}

// Clear removes all values from both layers
func (c *LayeredCache) Clear() error {
	_ = c.hot.Clear()
	return c.cold.Clear()
}
