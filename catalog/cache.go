package catalog

import (
	"time"

	"github.com/hashicorp/golang-lru"
	"go.storefront.dev/core/metrics"
	pb "go.storefront.dev/core/protocol"
)

// ItemCache caches recently read Items by ID. Cached Items expire after a
// TTL, and are invalidated by the Service when updated or deleted.
//
// Invalidation is local to the process: other API instances sharing the
// database may serve a stale Item for up to the TTL.
type ItemCache struct {
	cache *lru.Cache
	ttl   time.Duration
}

// NewItemCache returns an ItemCache of the given size (which must be > 0)
// and caching Duration.
func NewItemCache(size int, ttl time.Duration) *ItemCache {
	var cache, err = lru.New(size)
	if err != nil {
		panic(err.Error()) // Only errors on size <= 0.
	}
	return &ItemCache{
		cache: cache,
		ttl:   ttl,
	}
}

// Put caches the Item.
func (ic *ItemCache) Put(item pb.Item) {
	ic.cache.Add(item.ID, cachedItem{item: item, at: timeNow()})
}

// Get queries for a cached Item of the ID.
func (ic *ItemCache) Get(id pb.ObjectID) (pb.Item, bool) {
	if v, ok := ic.cache.Get(id); ok {
		// If the TTL has elapsed, treat as a cache miss and remove.
		if ci := v.(cachedItem); ci.at.Add(ic.ttl).Before(timeNow()) {
			ic.cache.Remove(id)
		} else {
			metrics.ItemCacheHitsTotal.Inc()
			return ci.item, true
		}
	}
	metrics.ItemCacheMissesTotal.Inc()
	return pb.Item{}, false
}

// Invalidate removes a cached Item of the ID, if present.
func (ic *ItemCache) Invalidate(id pb.ObjectID) { ic.cache.Remove(id) }

// Len returns the number of cached Items.
func (ic *ItemCache) Len() int { return ic.cache.Len() }

type cachedItem struct {
	item pb.Item
	at   time.Time
}

var timeNow = time.Now
