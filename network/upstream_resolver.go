package network

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/miekg/dns"

	"github.com/ssocks/ssgate/ssgate"
)

// UpstreamResolver delegates all lookups to a locally configured
// upstream DNS relay, speaking plain DNS over UDP with a TCP retry on
// truncation. This is the variant a local relay deployment selects;
// when it is configured, the generic resolver is never consulted.
type UpstreamResolver struct {
	udp         *dns.Client
	tcp         *dns.Client
	upstream    string
	cache       *LRUCache
	cleanupStop chan struct{}
	ipv6First   bool
}

// NewUpstreamResolver builds a resolver pointed at a host:port of the
// local upstream relay.
func NewUpstreamResolver(upstream string, timeout time.Duration, ipv6First bool) (*UpstreamResolver, error) {
	if _, _, err := net.SplitHostPort(upstream); err != nil {
		return nil, fmt.Errorf("incorrect upstream address %s: %w", upstream, err)
	}

	if timeout <= 0 {
		timeout = DefaultDNSTimeout
	}

	cache := NewLRUCache(defaultDNSCacheSize)

	return &UpstreamResolver{
		udp:         &dns.Client{Timeout: timeout},
		tcp:         &dns.Client{Net: "tcp", Timeout: timeout},
		upstream:    upstream,
		cache:       cache,
		cleanupStop: cache.StartCleanupLoop(dnsCacheCleanupInterval),
		ipv6First:   ipv6First,
	}, nil
}

func (u *UpstreamResolver) Resolve(ctx context.Context, host string, port uint16) ([]netip.AddrPort, error) {
	if rv, ok := literalAddr(host, port); ok {
		return rv, nil
	}

	if cached := u.cache.Get(host); cached != nil {
		return toAddrPorts(cached, port), nil
	}

	var (
		wg       sync.WaitGroup
		mutex    sync.Mutex
		addrs    []netip.Addr
		ttl      uint32
		firstErr error
	)

	wg.Add(2)

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		go func(qtype uint16) {
			defer wg.Done()

			resolved, answerTTL, err := u.query(ctx, host, qtype)

			mutex.Lock()
			defer mutex.Unlock()

			if err != nil {
				if firstErr == nil {
					firstErr = err
				}

				return
			}

			addrs = append(addrs, resolved...)

			if ttl == 0 || (answerTTL > 0 && answerTTL < ttl) {
				ttl = answerTTL
			}
		}(qtype)
	}

	wg.Wait()

	if len(addrs) == 0 {
		if firstErr != nil {
			return nil, firstErr
		}

		return nil, fmt.Errorf("%w for %s", ErrNoAddresses, host)
	}

	if ttl == 0 {
		ttl = defaultDNSTTL
	}

	orderAddrs(addrs, u.ipv6First)
	u.cache.Set(host, addrs, ttl)

	return toAddrPorts(addrs, port), nil
}

func (u *UpstreamResolver) query(ctx context.Context, host string, qtype uint16) ([]netip.Addr, uint32, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), qtype)
	msg.RecursionDesired = true

	resp, _, err := u.udp.ExchangeContext(ctx, msg, u.upstream)
	if err != nil {
		return nil, 0, fmt.Errorf("upstream exchange failed: %w", err)
	}

	if resp.Truncated {
		resp, _, err = u.tcp.ExchangeContext(ctx, msg, u.upstream)
		if err != nil {
			return nil, 0, fmt.Errorf("upstream tcp exchange failed: %w", err)
		}
	}

	if resp.Rcode != dns.RcodeSuccess {
		return nil, 0, fmt.Errorf("upstream answered %s for %s", dns.RcodeToString[resp.Rcode], host)
	}

	var (
		addrs []netip.Addr
		ttl   uint32
	)

	for _, rr := range resp.Answer {
		var ip net.IP

		switch v := rr.(type) {
		case *dns.A:
			ip = v.A.To4()
		case *dns.AAAA:
			ip = v.AAAA
		default:
			continue
		}

		addr, ok := netip.AddrFromSlice(ip)
		if !ok {
			continue
		}

		addrs = append(addrs, addr.Unmap())

		if hdr := rr.Header(); ttl == 0 || hdr.Ttl < ttl {
			ttl = hdr.Ttl
		}
	}

	return addrs, ttl, nil
}

// CacheMetrics returns DNS cache statistics for monitoring.
func (u *UpstreamResolver) CacheMetrics() CacheMetrics {
	return u.cache.Metrics()
}

// Stop terminates the background cache sweep.
func (u *UpstreamResolver) Stop() {
	if u.cleanupStop != nil {
		close(u.cleanupStop)
		u.cleanupStop = nil
	}
}

// Ensure interface compliance.
var _ ssgate.DNSResolver = (*UpstreamResolver)(nil)
