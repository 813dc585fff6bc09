package ssgate

import (
	"net/netip"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// DefaultReverseLookupTTL is a retention window for reverse-lookup
// cache entries which are not touched.
const DefaultReverseLookupTTL = 3 * 24 * time.Hour

const reverseLookupCleanupInterval = time.Hour

// reverseLookupCache remembers, per resolved IP, whether a DNS answer
// was forwarded (proxied) or bypassed. Only exceptions to the default
// ACL decision are stored, so the cache self-prunes: an entry which
// agrees with what a fresh ACL lookup would say is removed instead of
// being kept around.
type reverseLookupCache struct {
	mutex sync.Mutex
	cache *cache.Cache
}

func newReverseLookupCache(ttl time.Duration) *reverseLookupCache {
	if ttl <= 0 {
		ttl = DefaultReverseLookupTTL
	}

	return &reverseLookupCache{
		cache: cache.New(ttl, reverseLookupCleanupInterval),
	}
}

func (r *reverseLookupCache) get(ip netip.Addr) (forward, ok bool) {
	value, ok := r.cache.Get(ip.String())
	if !ok {
		return false, false
	}

	return value.(bool), true //nolint: forcetypeassert
}

// record stores or drops an entry as a single unit relative to other
// record calls.
func (r *reverseLookupCache) record(ip netip.Addr, forward, isException bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if isException {
		r.cache.SetDefault(ip.String(), forward)
	} else {
		r.cache.Delete(ip.String())
	}
}

func (r *reverseLookupCache) len() int {
	return r.cache.ItemCount()
}
