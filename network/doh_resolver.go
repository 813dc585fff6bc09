package network

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"sync"

	"github.com/miekg/dns"

	"github.com/ssocks/ssgate/ssgate"
)

// DOHResolver is a generic resolver variant speaking RFC 8484
// DNS-over-HTTPS with GET requests. The server is addressed by IP so no
// bootstrap resolution is needed.
type DOHResolver struct {
	dohServer   string
	httpClient  *http.Client
	cache       *LRUCache
	cleanupStop chan struct{}
	ipv6First   bool
}

// NewDOHResolver builds a DoH resolver. hostname must be an IP address
// of the DoH server. A nil httpClient selects http.DefaultClient.
func NewDOHResolver(hostname string, httpClient *http.Client, ipv6First bool) (*DOHResolver, error) {
	ip := net.ParseIP(hostname)
	if ip == nil {
		return nil, fmt.Errorf("hostname %s should be an IP address", hostname)
	}

	if ip.To4() == nil {
		hostname = fmt.Sprintf("[%s]", hostname)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	cache := NewLRUCache(defaultDNSCacheSize)

	return &DOHResolver{
		dohServer:   hostname,
		httpClient:  httpClient,
		cache:       cache,
		cleanupStop: cache.StartCleanupLoop(dnsCacheCleanupInterval),
		ipv6First:   ipv6First,
	}, nil
}

func (d *DOHResolver) Resolve(ctx context.Context, host string, port uint16) ([]netip.AddrPort, error) {
	if rv, ok := literalAddr(host, port); ok {
		return rv, nil
	}

	if cached := d.cache.Get(host); cached != nil {
		return toAddrPorts(cached, port), nil
	}

	var (
		wg       sync.WaitGroup
		mutex    sync.Mutex
		answers  []dns.RR
		firstErr error
	)

	wg.Add(2)

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		go func(qtype uint16) {
			defer wg.Done()

			recs, err := d.doQuery(ctx, host, qtype)

			mutex.Lock()
			defer mutex.Unlock()

			if err != nil {
				if firstErr == nil {
					firstErr = err
				}

				return
			}

			answers = append(answers, recs...)
		}(qtype)
	}

	wg.Wait()

	var (
		addrs []netip.Addr
		ttl   uint32
	)

	for _, rr := range answers {
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

	if len(addrs) == 0 {
		if firstErr != nil {
			return nil, firstErr
		}

		return nil, fmt.Errorf("%w for %s", ErrNoAddresses, host)
	}

	if ttl == 0 {
		ttl = defaultDNSTTL
	}

	orderAddrs(addrs, d.ipv6First)
	d.cache.Set(host, addrs, ttl)

	return toAddrPorts(addrs, port), nil
}

// doQuery performs a single RFC 8484 GET request with the dns query
// parameter.
func (d *DOHResolver) doQuery(ctx context.Context, hostname string, qtype uint16) ([]dns.RR, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(hostname), qtype)
	msg.RecursionDesired = true

	packed, err := msg.Pack()
	if err != nil {
		return nil, fmt.Errorf("failed to pack DNS message: %w", err)
	}

	url := fmt.Sprintf("https://%s/dns-query?dns=%s",
		d.dohServer,
		base64.RawURLEncoding.EncodeToString(packed))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/dns-message")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("DoH request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DoH server returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var response dns.Msg
	if err := response.Unpack(body); err != nil {
		return nil, fmt.Errorf("failed to unpack DNS response: %w", err)
	}

	if response.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("DoH server answered %s for %s", dns.RcodeToString[response.Rcode], hostname)
	}

	return response.Answer, nil
}

// CacheMetrics returns DNS cache statistics for monitoring.
func (d *DOHResolver) CacheMetrics() CacheMetrics {
	return d.cache.Metrics()
}

// Stop terminates the background cache sweep.
func (d *DOHResolver) Stop() {
	if d.cleanupStop != nil {
		close(d.cleanupStop)
		d.cleanupStop = nil
	}
}

// Ensure interface compliance.
var _ ssgate.DNSResolver = (*DOHResolver)(nil)
