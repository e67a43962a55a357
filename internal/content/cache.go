package content

import (
	"context"
	"sync"
	"time"
)

// CachedService wraps a Service with a TTL cache for the reads that a single
// refresh cycle repeats: the category list and schemas. Item pages are never
// cached. Write operations invalidate everything so the refetch chain that
// follows a mutation always reaches the server.
type CachedService struct {
	inner Service
	ttl   time.Duration

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// maxCacheEntries caps the cache. When exceeded, expired entries are evicted
// and, if that is not enough, the cache is flushed.
const maxCacheEntries = 64

type cacheEntry struct {
	val    any
	expiry time.Time
}

// Compile-time check.
var _ Service = (*CachedService)(nil)

// NewCachedService wraps inner with a TTL cache. A non-positive ttl returns
// a wrapper that never caches.
func NewCachedService(inner Service, ttl time.Duration) *CachedService {
	return &CachedService{
		inner: inner,
		ttl:   ttl,
		cache: make(map[string]cacheEntry, 16),
	}
}

// Invalidate clears all cached entries.
func (c *CachedService) Invalidate() {
	c.mu.Lock()
	c.cache = make(map[string]cacheEntry, 16)
	c.mu.Unlock()
}

func (c *CachedService) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, found := c.cache[key]
	if !found || time.Now().After(e.expiry) {
		return nil, false
	}
	return e.val, true
}

// set stores a successful result. Errors are never cached.
func (c *CachedService) set(key string, val any) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	if len(c.cache) >= maxCacheEntries {
		now := time.Now()
		for k, e := range c.cache {
			if now.After(e.expiry) {
				delete(c.cache, k)
			}
		}
		if len(c.cache) >= maxCacheEntries {
			c.cache = make(map[string]cacheEntry, 16)
		}
	}
	c.cache[key] = cacheEntry{val: val, expiry: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *CachedService) invalidateAndReturn(err error) error {
	if err == nil {
		c.Invalidate()
	}
	return err
}

// BaseURL delegates to the inner service.
func (c *CachedService) BaseURL() string { return c.inner.BaseURL() }

// ListCategories returns the category list (cached).
func (c *CachedService) ListCategories(ctx context.Context) ([]Category, error) {
	if v, ok := c.get("categories"); ok {
		return append([]Category(nil), v.([]Category)...), nil
	}
	v, err := c.inner.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	c.set("categories", append([]Category(nil), v...))
	return v, nil
}

// ListItems delegates to the inner service (not cached).
func (c *CachedService) ListItems(ctx context.Context, categoryID string, opts ListOptions) (ItemPage, error) {
	return c.inner.ListItems(ctx, categoryID, opts)
}

// GetSchema returns a category's schema (cached per category).
func (c *CachedService) GetSchema(ctx context.Context, categoryID string) (Schema, error) {
	key := "schema:" + categoryID
	if v, ok := c.get(key); ok {
		return v.(Schema), nil
	}
	v, err := c.inner.GetSchema(ctx, categoryID)
	if err != nil {
		return Schema{}, err
	}
	c.set(key, v)
	return v, nil
}

// UpsertItem writes an item and invalidates the cache.
func (c *CachedService) UpsertItem(ctx context.Context, categoryID, itemID string, data FormData) error {
	return c.invalidateAndReturn(c.inner.UpsertItem(ctx, categoryID, itemID, data))
}

// BulkDelete removes items and invalidates the cache.
func (c *CachedService) BulkDelete(ctx context.Context, ids []string) error {
	return c.invalidateAndReturn(c.inner.BulkDelete(ctx, ids))
}
