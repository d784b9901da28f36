// Package catalog holds the process-wide SKU/EAN to product-id cache.
//
// The map is built from a full fetch of the upstream product catalog and
// kept for the process lifetime. A refresh builds the new map off to the
// side and swaps the shared reference under a single writer, so callers
// always observe either the old map or the fully new one. Concurrent
// refresh requests are deduplicated through singleflight.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"orderbridge/internal/lyra"
)

// ProductSource fetches the full product catalog.
type ProductSource interface {
	ListProducts(ctx context.Context, perPage int) ([]lyra.Product, error)
}

// Cache maps SKU/EAN to the upstream numeric product id.
type Cache struct {
	source   ProductSource
	pageSize int

	group singleflight.Group

	mu    sync.RWMutex
	bySKU map[string]int64 // nil until the first fetch
}

// New creates a Cache. pageSize is the per_page value used for the full
// catalog fetch.
func New(source ProductSource, pageSize int) *Cache {
	return &Cache{source: source, pageSize: pageSize}
}

// Map returns the SKU to product-id mapping. Without fresh it returns the
// cached map when one exists; with fresh, or on first use, it fetches the
// catalog and atomically replaces the cache. The returned map is shared and
// must not be mutated by callers.
func (c *Cache) Map(ctx context.Context, fresh bool) (map[string]int64, error) {
	if !fresh {
		c.mu.RLock()
		m := c.bySKU
		c.mu.RUnlock()
		if m != nil {
			return m, nil
		}
	}
	return c.refresh(ctx)
}

// ProductIDBySKU looks up a single SKU. On a miss it forces exactly one
// refresh and retries once before reporting not found, bounding refresh
// attempts against the upstream API.
func (c *Cache) ProductIDBySKU(ctx context.Context, sku string) (int64, bool, error) {
	m, err := c.Map(ctx, false)
	if err != nil {
		return 0, false, err
	}
	if id, ok := m[sku]; ok {
		return id, true, nil
	}

	m, err = c.Map(ctx, true)
	if err != nil {
		return 0, false, err
	}
	id, ok := m[sku]
	return id, ok, nil
}

// Size returns the number of cached SKUs, 0 before the first fetch.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bySKU)
}

func (c *Cache) refresh(ctx context.Context) (map[string]int64, error) {
	v, err, _ := c.group.Do("catalog", func() (any, error) {
		products, err := c.source.ListProducts(ctx, c.pageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch product catalog: %w", err)
		}

		m := make(map[string]int64, len(products))
		for _, p := range products {
			if p.SKU == "" {
				continue
			}
			m[p.SKU] = p.ID
		}

		c.mu.Lock()
		c.bySKU = m
		c.mu.Unlock()

		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]int64), nil
}
