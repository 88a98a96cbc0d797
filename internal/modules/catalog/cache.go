package catalog

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of distinct filter keys kept when the
// configured size is not positive.
const DefaultCacheSize = 512

// SearchCache maps a canonical filter key to the products a search returned.
// It is not safe for concurrent use; the catalog service serializes access.
type SearchCache struct {
	entries *lru.Cache[string, []Product]
}

// NewSearchCache creates a cache holding at most size keys. Evicting a key
// only ever turns a later lookup into a miss.
func NewSearchCache(size int) *SearchCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, []Product](size)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &SearchCache{entries: entries}
}

// Lookup returns a fresh copy of the snapshot stored under key.
func (c *SearchCache) Lookup(key string) ([]*Product, bool) {
	snapshot, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	return expand(snapshot), true
}

// Store records result under key. The products are copied, so later changes
// to result do not reach the cache.
func (c *SearchCache) Store(key string, result []*Product) {
	snapshot := make([]Product, len(result))
	for i, p := range result {
		snapshot[i] = *p
	}
	c.entries.Add(key, snapshot)
}

// InvalidateAll drops every entry.
func (c *SearchCache) InvalidateAll() {
	c.entries.Purge()
}

// Len returns the number of cached keys.
func (c *SearchCache) Len() int {
	return c.entries.Len()
}

func expand(snapshot []Product) []*Product {
	out := make([]*Product, len(snapshot))
	for i := range snapshot {
		p := snapshot[i]
		out[i] = &p
	}
	return out
}
