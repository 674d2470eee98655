package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"trainwise/fitness-app/internal/metrics"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	megabyte   = 1024 * 1024
	DefaultTTL = 5 * time.Minute
)

// QueryCache stores JSON-encoded query results with a TTL and drops whole
// families on mutation. A nil *QueryCache is valid and caches nothing.
type QueryCache struct {
	store         *freecache.Cache
	ttl           time.Duration
	invalidations map[Family][]Family
	metrics       *metrics.Manager

	// serializes invalidation scans; reads and writes go straight to freecache
	invalidateMu sync.Mutex

	// generations counts invalidations per family. Remember drops a fetched
	// value when the family moved on while the fetch was running.
	genMu       sync.RWMutex
	generations map[Family]uint64
}

// NewQueryCache creates a cache of sizeMB megabytes. A nil invalidation map
// uses DefaultInvalidations.
func NewQueryCache(sizeMB int, ttl time.Duration, invalidations map[Family][]Family, m *metrics.Manager) *QueryCache {
	if sizeMB <= 0 {
		sizeMB = 1
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if invalidations == nil {
		invalidations = DefaultInvalidations
	}
	return &QueryCache{
		store:         freecache.NewCache(sizeMB * megabyte),
		ttl:           ttl,
		invalidations: invalidations,
		metrics:       m,
		generations:   map[Family]uint64{},
	}
}

// Remember returns the cached value for key or calls fetch and caches its
// result. Fetch errors are returned unchanged and never cached, and neither
// are nil results. ttl <= 0 uses the cache default.
func Remember[T any](ctx context.Context, c *QueryCache, key Key, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	if c == nil {
		return fetch(ctx)
	}

	rawKey := []byte(key.String())
	if raw, err := c.store.Get(rawKey); err == nil {
		var cached T
		err = json.Unmarshal(raw, &cached)
		if err == nil {
			c.countHit(key.Family)
			return cached, nil
		}
		log.Errorf("query cache: unmarshal %s: %s", rawKey, err)
	}
	c.countMiss(key.Family)

	gen := c.generation(key.Family)
	value, err := fetch(ctx)
	if err != nil {
		return value, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		log.Errorf("query cache: marshal %s: %s", rawKey, err)
		return value, nil
	}
	if bytes.Equal(raw, []byte("null")) {
		return value, nil
	}

	if ttl <= 0 {
		ttl = c.ttl
	}
	// freecache treats 0 seconds as "never expires"
	seconds := int(ttl.Seconds())
	if seconds < 1 {
		seconds = 1
	}

	c.genMu.RLock()
	defer c.genMu.RUnlock()
	if c.generations[key.Family] != gen {
		log.Tracef("query cache: %s invalidated during fetch, not storing", rawKey)
		return value, nil
	}
	if err := c.store.Set(rawKey, raw, seconds); err != nil {
		log.Debugf("query cache: set %s: %s", rawKey, err)
	}
	return value, nil
}

func (c *QueryCache) generation(f Family) uint64 {
	c.genMu.RLock()
	defer c.genMu.RUnlock()
	return c.generations[f]
}

// Invalidate drops every entry belonging to the families that a mutation of
// family affects. It returns the number of dropped entries.
func (c *QueryCache) Invalidate(family Family) int {
	if c == nil {
		return 0
	}

	affected, ok := c.invalidations[family]
	if !ok {
		affected = []Family{family}
	}
	prefixes := make([][]byte, 0, len(affected))
	for _, f := range affected {
		prefixes = append(prefixes, []byte(familyPrefix(f)))
	}

	// bump before scanning so a fetch finishing after the scan cannot store
	c.genMu.Lock()
	for _, f := range affected {
		c.generations[f]++
	}
	c.genMu.Unlock()

	c.invalidateMu.Lock()
	defer c.invalidateMu.Unlock()

	var stale [][]byte
	it := c.store.NewIterator()
	for entry := it.Next(); entry != nil; entry = it.Next() {
		for _, p := range prefixes {
			if bytes.HasPrefix(entry.Key, p) {
				stale = append(stale, entry.Key)
				break
			}
		}
	}

	dropped := 0
	for _, k := range stale {
		if c.store.Del(k) {
			dropped++
		}
	}

	if c.metrics != nil {
		c.metrics.CounterCacheInvalidated.WithLabelValues(string(family)).Add(float64(dropped))
	}
	log.Tracef("query cache: %s mutation dropped %d entries", family, dropped)
	return dropped
}

// Len reports the number of live entries.
func (c *QueryCache) Len() int64 {
	if c == nil {
		return 0
	}
	return c.store.EntryCount()
}

func (c *QueryCache) countHit(f Family) {
	if c.metrics != nil {
		c.metrics.CounterCacheHits.WithLabelValues(string(f)).Inc()
	}
}

func (c *QueryCache) countMiss(f Family) {
	if c.metrics != nil {
		c.metrics.CounterCacheMisses.WithLabelValues(string(f)).Inc()
	}
}
