package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/RigelNana/gazotheque/pkg/models"
)

// MaterialLister fetches the whole collection.
type MaterialLister interface {
	ListMaterials(ctx context.Context) ([]models.Material, error)
}

// Catalog keeps the collection fetched once so filtering and pagination run
// in memory. It is shared by every request: concurrent loads are merged into
// one upstream call, and a load that started before Invalidate is not stored.
type Catalog struct {
	api    MaterialLister
	flight shared[[]models.Material]

	mu        sync.RWMutex
	items     []models.Material
	loaded    bool
	fetchedAt time.Time
}

func NewCatalog(api MaterialLister) *Catalog {
	return &Catalog{api: api}
}

// Snapshot returns the cached collection, loading it on first use.
func (c *Catalog) Snapshot(ctx context.Context) ([]models.Material, error) {
	c.mu.RLock()
	if c.loaded {
		items := c.items
		c.mu.RUnlock()
		return items, nil
	}
	c.mu.RUnlock()
	return c.flight.do(ctx, "load", c.api.ListMaterials, c.store)
}

// Refresh fetches the collection again. Callers refreshing at the same time
// share one fetch. A failed refresh keeps the previous snapshot.
func (c *Catalog) Refresh(ctx context.Context) ([]models.Material, error) {
	return c.flight.do(ctx, "refresh", c.api.ListMaterials, c.store)
}

func (c *Catalog) store(items []models.Material, err error) {
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.loaded = true
	c.fetchedAt = time.Now()
}

// FetchedAt is when the snapshot was last replaced; zero before first load.
func (c *Catalog) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

// Invalidate drops the snapshot so the next Snapshot call refetches.
func (c *Catalog) Invalidate() {
	c.flight.guard.Invalidate()
	c.mu.Lock()
	c.items = nil
	c.loaded = false
	c.mu.Unlock()
}
