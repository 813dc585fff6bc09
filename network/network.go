package network

import (
	"errors"
	"net/netip"
	"sort"
	"time"
)

const (
	// DefaultDNSTimeout limits a single resolution attempt.
	DefaultDNSTimeout = 10 * time.Second

	// defaultDNSTTL is used when a resolver backend does not expose
	// record TTLs (the system resolver does not).
	defaultDNSTTL = 300

	defaultDNSCacheSize     = 1000
	dnsCacheCleanupInterval = 5 * time.Minute
)

// ErrNoAddresses is returned when a lookup succeeded but produced no
// usable addresses.
var ErrNoAddresses = errors.New("no addresses resolved")

// literalAddr short-circuits resolution for IP literal hostnames.
func literalAddr(host string, port uint16) ([]netip.AddrPort, bool) {
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return nil, false
	}

	return []netip.AddrPort{netip.AddrPortFrom(ip, port)}, true
}

// orderAddrs sorts addresses by family preference, keeping the
// resolver's relative order within each family.
func orderAddrs(addrs []netip.Addr, ipv6First bool) {
	sort.SliceStable(addrs, func(i, j int) bool {
		if addrs[i].Is4() == addrs[j].Is4() {
			return false
		}

		if ipv6First {
			return !addrs[i].Is4()
		}

		return addrs[i].Is4()
	})
}

func toAddrPorts(addrs []netip.Addr, port uint16) []netip.AddrPort {
	rv := make([]netip.AddrPort, len(addrs))
	for i, addr := range addrs {
		rv[i] = netip.AddrPortFrom(addr, port)
	}

	return rv
}
