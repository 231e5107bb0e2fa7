package slug

import (
	"github.com/jellydator/ttlcache/v3"
)

// DefaultCacheCapacity bounds the package-level template cache.
const DefaultCacheCapacity = 1024

var defaultCache = NewCache(DefaultCacheCapacity) //nolint:gochecknoglobals // shared parsed-template cache

// Cache keeps parsed templates keyed by their text. Endpoint families build a
// descriptor per request from the same handful of templates, so parsing is
// done once per template. Entries never expire; the least recently used one
// is evicted when capacity is reached.
type Cache struct {
	items *ttlcache.Cache[string, *Template]
}

// NewCache returns a cache holding at most capacity templates.
func NewCache(capacity uint64) *Cache {
	return &Cache{
		items: ttlcache.New[string, *Template](
			ttlcache.WithCapacity[string, *Template](capacity),
		),
	}
}

// Parse returns the cached template for raw, parsing it on a miss. Parse
// errors are not cached.
func (c *Cache) Parse(raw string) (*Template, error) {
	if item := c.items.Get(raw); item != nil {
		return item.Value(), nil
	}
	t, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	c.items.Set(raw, t, ttlcache.NoTTL)
	return t, nil
}

// Len returns the number of cached templates.
func (c *Cache) Len() int {
	return c.items.Len()
}
