package network

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/ssocks/ssgate/ssgate"
)

// SystemResolver is the generic resolver variant: it asks the system
// DNS configuration through Go's resolver and caches answers with a
// fixed TTL, since the system API does not expose the real one.
type SystemResolver struct {
	resolver    *net.Resolver
	cache       *LRUCache
	cleanupStop chan struct{}
	timeout     time.Duration
	ipv6First   bool
}

// NewSystemResolver builds a resolver on top of the system DNS
// configuration.
func NewSystemResolver(timeout time.Duration, ipv6First bool) *SystemResolver {
	if timeout <= 0 {
		timeout = DefaultDNSTimeout
	}

	cache := NewLRUCache(defaultDNSCacheSize)

	return &SystemResolver{
		resolver: &net.Resolver{
			PreferGo: true,
		},
		cache:       cache,
		cleanupStop: cache.StartCleanupLoop(dnsCacheCleanupInterval),
		timeout:     timeout,
		ipv6First:   ipv6First,
	}
}

func (s *SystemResolver) Resolve(ctx context.Context, host string, port uint16) ([]netip.AddrPort, error) {
	if rv, ok := literalAddr(host, port); ok {
		return rv, nil
	}

	if cached := s.cache.Get(host); cached != nil {
		return toAddrPorts(cached, port), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ipAddrs, err := s.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %s: %w", host, err)
	}

	addrs := make([]netip.Addr, 0, len(ipAddrs))

	for _, ipAddr := range ipAddrs {
		if addr, ok := netip.AddrFromSlice(ipAddr.IP); ok {
			addrs = append(addrs, addr.Unmap())
		}
	}

	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoAddresses, host)
	}

	orderAddrs(addrs, s.ipv6First)
	s.cache.Set(host, addrs, defaultDNSTTL)

	return toAddrPorts(addrs, port), nil
}

// CacheMetrics returns DNS cache statistics for monitoring.
func (s *SystemResolver) CacheMetrics() CacheMetrics {
	return s.cache.Metrics()
}

// Stop terminates the background cache sweep.
func (s *SystemResolver) Stop() {
	if s.cleanupStop != nil {
		close(s.cleanupStop)
		s.cleanupStop = nil
	}
}

// Ensure interface compliance.
var _ ssgate.DNSResolver = (*SystemResolver)(nil)
