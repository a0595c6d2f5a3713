package cache

import (
	"strings"
	"time"

	"storefront-backend/pkg/cache"

	gocache "github.com/patrickmn/go-cache"
)

type memoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache returns a go-cache backed CacheService. Entries set with a
// zero duration use defaultExpiration.
func NewMemoryCache(defaultExpiration, cleanupInterval time.Duration) cache.CacheService {
	return &memoryCache{
		store: gocache.New(defaultExpiration, cleanupInterval),
	}
}

func (c *memoryCache) Get(key string) (interface{}, bool) {
	return c.store.Get(key)
}

func (c *memoryCache) Set(key string, value interface{}, duration time.Duration) {
	c.store.Set(key, value, duration)
}

func (c *memoryCache) Delete(key string) {
	c.store.Delete(key)
}

// DeletePrefix walks a copy of the unexpired items, so entries set while it
// runs may survive.
func (c *memoryCache) DeletePrefix(prefix string) int {
	n := 0
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
			n++
		}
	}
	return n
}

func (c *memoryCache) Flush() {
	c.store.Flush()
}
