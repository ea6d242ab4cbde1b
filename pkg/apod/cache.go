package apod

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/glorpus-work/apodex/pkg/errors"
	"github.com/glorpus-work/apodex/pkg/model"
)

// DefaultCacheSize bounds the number of resolved URLs kept by a CachingLocator.
const DefaultCacheSize = 256

// Resolver resolves a key to a URL.
type Resolver interface {
	Locate(ctx context.Context, key model.Key) (string, error)
}

// CachingLocator memoises successful resolutions for the lifetime of the process.
// Failures are not cached.
type CachingLocator struct {
	next  Resolver
	cache *lru.Cache[model.Key, string]
}

// NewCachingLocator wraps next with an LRU of the given size (DefaultCacheSize if size <= 0).
func NewCachingLocator(next Resolver, size int) (*CachingLocator, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[model.Key, string](size)
	if err != nil {
		return nil, errors.Wrap(err, "could not create locator cache")
	}
	return &CachingLocator{next: next, cache: cache}, nil
}

// Locate returns the cached URL for key or delegates to the wrapped resolver.
func (c *CachingLocator) Locate(ctx context.Context, key model.Key) (string, error) {
	if u, ok := c.cache.Get(key); ok {
		return u, nil
	}
	u, err := c.next.Locate(ctx, key)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, u)
	return u, nil
}

// Len reports how many resolutions are cached.
func (c *CachingLocator) Len() int {
	return c.cache.Len()
}
