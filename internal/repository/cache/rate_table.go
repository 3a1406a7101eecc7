package cache

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
	"rental-engine-backend/internal/repository"
)

// RateTableCache is a read-through cache in front of a rate table store.
// Concurrent misses for the same product share one backend read.
type RateTableCache struct {
	next  repository.RateTableRepository
	store *gocache.Cache
	sfg   singleflight.Group
}

func NewRateTableCache(next repository.RateTableRepository, ttl time.Duration) *RateTableCache {
	return &RateTableCache{
		next:  next,
		store: gocache.New(ttl, 2*ttl),
	}
}

func key(productID int32) string {
	return strconv.FormatInt(int64(productID), 10)
}

// GetRateTable returns a deep copy so callers cannot mutate the cached
// entry. Entries expire after the configured TTL. Misses
// (domain.ErrNotFound) are not cached.
func (c *RateTableCache) GetRateTable(ctx context.Context, productID int32) (*domain.RateTable, error) {
	k := key(productID)
	if v, found := c.store.Get(k); found {
		return v.(domain.RateTable).Clone(), nil
	}

	v, err, shared := c.sfg.Do(k, func() (interface{}, error) {
		rt, err := c.next.GetRateTable(ctx, productID)
		if err != nil {
			return nil, err
		}
		cached := *rt.Clone()
		c.store.SetDefault(k, cached)
		return cached, nil
	})
	logger.WithComponent("rate_table_cache").DebugContext(ctx, "cache miss", "product_id", productID, "shared", shared, "error", err)
	if err != nil {
		return nil, err
	}
	return v.(domain.RateTable).Clone(), nil
}

func (c *RateTableCache) ListProductIDs(ctx context.Context) ([]int32, error) {
	return c.next.ListProductIDs(ctx)
}
