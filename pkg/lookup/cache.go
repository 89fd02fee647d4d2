// SPDX-License-Identifier: MPL-2.0

package lookup

import (
	"io"
	"net/url"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/invowk/resourcekit/pkg/issue"
	"github.com/invowk/resourcekit/pkg/location"
)

// DefaultCacheSize is the number of names a CachingLoader remembers.
const DefaultCacheSize = 1024

// CachingLoader memoizes Resource lookups of a delegate, absent results
// included. Resources, All and Open are passed through.
type CachingLoader struct {
	ResourceLoader

	cache  *lru.Cache[string, *url.URL]
	logger *log.Logger
}

// NewCachingLoader wraps delegate with a cache of size entries. A nil
// logger discards output.
func NewCachingLoader(delegate ResourceLoader, size int, logger *log.Logger) (*CachingLoader, error) {
	cache, err := lru.New[string, *url.URL](size)
	if err != nil {
		return nil, issue.Configuration("create resource cache", err)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &CachingLoader{ResourceLoader: delegate, cache: cache, logger: logger}, nil
}

// Resource returns the cached lookup of name, resolving it on a miss.
func (c *CachingLoader) Resource(name string) *url.URL {
	key := location.Parse(name).Name()
	if u, ok := c.cache.Get(key); ok {
		return clone(u)
	}
	u := c.ResourceLoader.Resource(name)
	c.cache.Add(key, u)
	return clone(u)
}

// ResourceAsStream opens the cached lookup of name.
func (c *CachingLoader) ResourceAsStream(name string) (io.ReadCloser, error) {
	u := c.Resource(name)
	if u == nil {
		return nil, nil
	}
	return c.Open(u)
}

// Len returns the number of cached names.
func (c *CachingLoader) Len() int { return c.cache.Len() }

// Reset purges the cache.
func (c *CachingLoader) Reset() {
	c.logger.Debug("resource cache purged", "entries", c.cache.Len())
	c.cache.Purge()
}

func clone(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
