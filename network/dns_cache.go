package network

import (
	"container/list"
	"net/netip"
	"sync"
	"time"
)

// dnsCacheEntry is a cached answer with TTL awareness.
type dnsCacheEntry struct {
	addrs     []netip.Addr
	expiresAt time.Time
}

func (e *dnsCacheEntry) expired() bool {
	return time.Now().After(e.expiresAt)
}

// LRUCache is a thread-safe LRU cache for DNS answers. Entries expire
// by their record TTL and the least recently used one is evicted when
// the cache is full.
type LRUCache struct {
	maxSize int
	cache   map[string]*list.Element
	lruList *list.List
	mutex   sync.RWMutex

	hits      uint64
	misses    uint64
	evictions uint64
}

type lruListEntry struct {
	key   string
	value *dnsCacheEntry
}

// NewLRUCache creates a cache holding up to maxSize answers.
func NewLRUCache(maxSize int) *LRUCache {
	if maxSize <= 0 {
		maxSize = defaultDNSCacheSize
	}

	return &LRUCache{
		maxSize: maxSize,
		cache:   make(map[string]*list.Element, maxSize),
		lruList: list.New(),
	}
}

// Get returns cached addresses or nil when the key is unknown or the
// entry has expired. Expired entries are removed lazily here.
func (c *LRUCache) Get(key string) []netip.Addr {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	elem, ok := c.cache[key]
	if !ok {
		c.misses++

		return nil
	}

	entry := elem.Value.(*lruListEntry).value //nolint: forcetypeassert

	if entry.expired() {
		c.lruList.Remove(elem)
		delete(c.cache, key)
		c.misses++

		return nil
	}

	c.lruList.MoveToFront(elem)
	c.hits++

	return entry.addrs
}

// Set stores an answer under the given TTL in seconds.
func (c *LRUCache) Set(key string, addrs []netip.Addr, ttl uint32) {
	expiresAt := time.Now().Add(time.Duration(ttl) * time.Second)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lruList.MoveToFront(elem)
		elem.Value.(*lruListEntry).value = &dnsCacheEntry{ //nolint: forcetypeassert
			addrs:     addrs,
			expiresAt: expiresAt,
		}

		return
	}

	elem := c.lruList.PushFront(&lruListEntry{
		key: key,
		value: &dnsCacheEntry{
			addrs:     addrs,
			expiresAt: expiresAt,
		},
	})
	c.cache[key] = elem

	if c.lruList.Len() > c.maxSize {
		oldest := c.lruList.Back()
		if oldest != nil {
			c.lruList.Remove(oldest)
			delete(c.cache, oldest.Value.(*lruListEntry).key) //nolint: forcetypeassert
			c.evictions++
		}
	}
}

// Size returns the current number of entries.
func (c *LRUCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.lruList.Len()
}

// CacheMetrics is a snapshot of cache statistics.
type CacheMetrics struct {
	Size      int
	MaxSize   int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	HitRate   float64
}

// Metrics returns current cache statistics.
func (c *LRUCache) Metrics() CacheMetrics {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	total := c.hits + c.misses

	var hitRate float64
	if total > 0 {
		hitRate = float64(c.hits) / float64(total) * 100.0
	}

	return CacheMetrics{
		Size:      c.lruList.Len(),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		HitRate:   hitRate,
	}
}

// CleanupExpired removes all expired entries and returns how many were
// dropped.
func (c *LRUCache) CleanupExpired() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var toRemove []*list.Element

	for elem := c.lruList.Front(); elem != nil; elem = elem.Next() {
		if elem.Value.(*lruListEntry).value.expired() { //nolint: forcetypeassert
			toRemove = append(toRemove, elem)
		}
	}

	for _, elem := range toRemove {
		c.lruList.Remove(elem)
		delete(c.cache, elem.Value.(*lruListEntry).key) //nolint: forcetypeassert
	}

	return len(toRemove)
}

// StartCleanupLoop sweeps expired entries in background until the
// returned channel is closed.
func (c *LRUCache) StartCleanupLoop(interval time.Duration) chan struct{} {
	stop := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.CleanupExpired()
			case <-stop:
				return
			}
		}
	}()

	return stop
}
