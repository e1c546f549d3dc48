package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/beezio/marketplace/internal/domain/catalog"
)

const fallbackCacheKey = "\x00fallback"

// CachedCategoryRepository memoizes category lookups by folded name. Only hits
// are cached: a miss must reach the store so that a category created by
// another instance becomes visible immediately.
type CachedCategoryRepository struct {
	next  catalog.CategoryRepository
	cache *gocache.Cache
}

// NewCachedCategoryRepository wraps next with a TTL cache
func NewCachedCategoryRepository(next catalog.CategoryRepository, ttl time.Duration) *CachedCategoryRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedCategoryRepository{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// FindByNameKey returns a cached copy when present
func (r *CachedCategoryRepository) FindByNameKey(ctx context.Context, key string) (*catalog.Category, error) {
	if c, found := r.cache.Get(key); found {
		cp := c.(catalog.Category)
		return &cp, nil
	}
	c, err := r.next.FindByNameKey(ctx, key)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(key, *c)
	return c, nil
}

// FindFallback returns the cached fallback category when present
func (r *CachedCategoryRepository) FindFallback(ctx context.Context) (*catalog.Category, error) {
	if c, found := r.cache.Get(fallbackCacheKey); found {
		cp := c.(catalog.Category)
		return &cp, nil
	}
	c, err := r.next.FindFallback(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(fallbackCacheKey, *c)
	return c, nil
}

// Create stores the category and primes the cache
func (r *CachedCategoryRepository) Create(ctx context.Context, category *catalog.Category) error {
	if err := r.next.Create(ctx, category); err != nil {
		return err
	}
	r.cache.SetDefault(category.NameKey, *category)
	return nil
}

// List always reads through
func (r *CachedCategoryRepository) List(ctx context.Context) ([]catalog.Category, error) {
	return r.next.List(ctx)
}

// Flush drops every cached entry
func (r *CachedCategoryRepository) Flush() {
	r.cache.Flush()
}

var _ catalog.CategoryRepository = (*CachedCategoryRepository)(nil)
