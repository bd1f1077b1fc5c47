package geo

import (
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached memoizes a Locator. Locators are pure, so a memoized lookup
// returns exactly what the wrapped one would.
type Cached struct {
	inner Locator
	cache *lru.Cache[string, string]
}

// NewCached wraps inner with an LRU cache of size entries
func NewCached(inner Locator, size int) (*Cached, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup cache: %w", err)
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// Lookup implements Locator
func (c *Cached) Lookup(ip string) string {
	if label, ok := c.cache.Get(ip); ok {
		return label
	}
	label := c.inner.Lookup(ip)
	c.cache.Add(ip, label)
	return label
}

// Len returns the number of cached addresses
func (c *Cached) Len() int {
	return c.cache.Len()
}

// Close closes the wrapped Locator when it holds resources
func (c *Cached) Close() error {
	c.cache.Purge()
	if closer, ok := c.inner.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
