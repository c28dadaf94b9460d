package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/maypok86/otter"
)

// DefaultCacheCapacity bounds the number of distinct file contents remembered.
const DefaultCacheCapacity = 1024

// CachingParser memoizes another Parser by content hash. Watch mode regenerates
// every file on each change; unchanged files are served from the cache.
type CachingParser struct {
	inner Parser
	cache otter.Cache[string, []Signature]
}

// NewCachingParser wraps inner with a cache holding up to capacity entries.
func NewCachingParser(inner Parser, capacity int) (*CachingParser, error) {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	cache, err := otter.MustBuilder[string, []Signature](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build signature cache: %w", err)
	}
	return &CachingParser{inner: inner, cache: cache}, nil
}

// Parse returns cached signatures for previously seen contents.
func (c *CachingParser) Parse(ctx context.Context, source []byte) ([]Signature, error) {
	sum := sha256.Sum256(source)
	key := hex.EncodeToString(sum[:])

	if sigs, ok := c.cache.Get(key); ok {
		return slices.Clone(sigs), nil
	}

	sigs, err := c.inner.Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, sigs)
	return slices.Clone(sigs), nil
}

// Close releases the cache's background resources.
func (c *CachingParser) Close() {
	c.cache.Close()
}
