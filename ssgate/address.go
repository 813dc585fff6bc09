package ssgate

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

// Address is a connection target: either a domain name with a port or
// an already resolved socket address. This mirrors the address form the
// ss protocol carries on the wire.
type Address struct {
	host string
	addr netip.AddrPort
}

// DomainAddress makes an Address from a not-yet-resolved hostname.
func DomainAddress(host string, port uint16) Address {
	return Address{
		host: host,
		addr: netip.AddrPortFrom(netip.Addr{}, port),
	}
}

// SocketAddress makes an Address from a resolved socket address.
func SocketAddress(addr netip.AddrPort) Address {
	return Address{addr: addr}
}

// ParseAddress parses a host:port pair. An IP literal host gives a
// socket address, anything else a domain address.
func ParseAddress(hostport string) (Address, error) {
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return Address{}, fmt.Errorf("incorrect address %s: %w", hostport, err)
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return Address{}, fmt.Errorf("incorrect port %s: %w", portStr, err)
	}

	if ip, err := netip.ParseAddr(host); err == nil {
		return SocketAddress(netip.AddrPortFrom(ip, uint16(port))), nil
	}

	return DomainAddress(host, uint16(port)), nil
}

// IsDomain tells if the address still needs a DNS resolution.
func (a Address) IsDomain() bool {
	return a.host != ""
}

// Host returns a domain name for domain addresses and a textual IP
// otherwise.
func (a Address) Host() string {
	if a.IsDomain() {
		return a.host
	}

	return a.addr.Addr().String()
}

// Port returns a port number of the address.
func (a Address) Port() uint16 {
	return a.addr.Port()
}

// SocketAddr returns the resolved socket address. It is valid only when
// IsDomain is false.
func (a Address) SocketAddr() netip.AddrPort {
	return a.addr
}

func (a Address) String() string {
	return net.JoinHostPort(a.Host(), strconv.Itoa(int(a.Port())))
}
