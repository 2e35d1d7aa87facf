// Package cache implementa repository.ReportCache en memoria y sobre Redis.
package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jhoicas/polizas-reportes/internal/application/dto"
	"github.com/jhoicas/polizas-reportes/internal/domain/repository"
)

const (
	// DefaultMaxEntries tope de reportes memorizados por proceso.
	DefaultMaxEntries = 256
	// CleanupInterval cada cuánto go-cache purga los vencidos.
	CleanupInterval = 10 * time.Minute
)

var _ repository.ReportCache = (*MemoryReportCache)(nil)

// MemoryReportCache caché acotada en memoria sobre go-cache. Al llenarse descarta
// primero los vencidos y luego el que vence antes.
type MemoryReportCache struct {
	items      *gocache.Cache
	maxEntries int

	mu sync.Mutex // serializa Set para respetar maxEntries
}

// NewMemoryReportCache ttl <= 0 desactiva el vencimiento; maxEntries <= 0 usa DefaultMaxEntries.
func NewMemoryReportCache(ttl time.Duration, maxEntries int) *MemoryReportCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryReportCache{
		items:      gocache.New(ttl, CleanupInterval),
		maxEntries: maxEntries,
	}
}

func (c *MemoryReportCache) Get(_ context.Context, key string) (*dto.OverviewDTO, bool, error) {
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	return v.(*dto.OverviewDTO), true, nil
}

func (c *MemoryReportCache) Set(_ context.Context, key string, overview *dto.OverviewDTO) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items.Get(key); !exists && c.items.ItemCount() >= c.maxEntries {
		c.items.DeleteExpired()
		if c.items.ItemCount() >= c.maxEntries {
			c.items.Delete(c.soonestToExpire())
		}
	}
	c.items.Set(key, overview, gocache.DefaultExpiration)
	return nil
}

// Len número de reportes memorizados, incluidos los vencidos aún no purgados.
func (c *MemoryReportCache) Len() int {
	return c.items.ItemCount()
}

// soonestToExpire con TTL fijo es también el más antiguo.
func (c *MemoryReportCache) soonestToExpire() string {
	var (
		key  string
		best int64
	)
	for k, it := range c.items.Items() {
		if key == "" || it.Expiration < best {
			key, best = k, it.Expiration
		}
	}
	return key
}
