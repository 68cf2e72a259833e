package cache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache is a TTL map. Get does not extend an entry's life; callers wanting
// sliding expiry re-Set on access.
type Cache struct {
	cache *cache.Cache
}

func New(defaultExpiration, cleanupInterval time.Duration) *Cache {
	if defaultExpiration <= 0 {
		defaultExpiration = cache.NoExpiration
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}
	return &Cache{
		cache: cache.New(defaultExpiration, cleanupInterval),
	}
}

func (c *Cache) Get(key string) (interface{}, bool) {
	return c.cache.Get(key)
}

func (c *Cache) Set(key string, value interface{}, expiration time.Duration) {
	c.cache.Set(key, value, expiration)
}

func (c *Cache) SetDefault(key string, value interface{}) {
	c.cache.Set(key, value, cache.DefaultExpiration)
}

func (c *Cache) Delete(key string) {
	c.cache.Delete(key)
}

func (c *Cache) Len() int {
	return c.cache.ItemCount()
}

// OnEvicted registers f to run when an item expires or is deleted.
func (c *Cache) OnEvicted(f func(key string, value interface{})) {
	c.cache.OnEvicted(f)
}
