package ssgate

import (
	"context"
	"errors"
	"net/netip"
)

// Role defines a deployment role of the process which owns a Context.
//
// The role matters because it selects sizing of the anti-replay filter:
// a remote server observes a far bigger stream of nonces than a local
// client and tolerates a looser false positive rate.
type Role int

const (
	// RoleServer is a remote ss server terminating many clients.
	RoleServer Role = iota

	// RoleClient is a local client/relay with low connection volume.
	RoleClient
)

func (r Role) String() string {
	if r == RoleClient {
		return "client"
	}

	return "server"
}

// AntiReplayCache is a data structure which remembers seen nonces and
// tells if a given one was met before.
//
// Implementations have to be safe for concurrent use: a check and a
// subsequent insert must be atomic with respect to other callers, so
// that two concurrent calls with the same nonce never both see 'novel'.
type AntiReplayCache interface {
	// CheckAndMark returns true if data was seen before. Unseen data is
	// inserted and false is returned.
	CheckAndMark(data []byte) bool
}

// DNSResolver resolves a hostname into a set of candidate socket
// addresses. Implementations are free to cache.
type DNSResolver interface {
	Resolve(ctx context.Context, host string, port uint16) ([]netip.AddrPort, error)
}

// AccessList is a queryable view of an externally loaded ACL document.
//
// A nil AccessList on a Context means 'proxy everything, block nothing'.
type AccessList interface {
	// ClientBlocked tells if an inbound client address is rejected.
	ClientBlocked(ip netip.Addr) bool

	// OutboundIPBlocked tells if an outbound target address is rejected.
	OutboundIPBlocked(ip netip.Addr) bool

	// OutboundHostBlocked is OutboundIPBlocked for not-yet-resolved names.
	OutboundHostBlocked(host string) bool

	// IPInProxyList is the fresh default decision for an address: true
	// means the address is supposed to be proxied (forwarded).
	IPInProxyList(ip netip.Addr) bool

	// HostRule matches a domain target against explicit host rules.
	// matched is false when no rule mentions the host and the decision
	// has to be made on resolved addresses instead.
	HostRule(host string) (bypass, matched bool)
}

// FlowStats is an increment-only sink for traffic counters. The Context
// only forwards byte counts, it never aggregates.
type FlowStats interface {
	AddTx(n uint64)
	AddRx(n uint64)
}

// Logger defines a logging interface this library uses. Core packages
// never touch a concrete logging library, an adapter is wired in by the
// application (see internal/logger for a zerolog-based one).
type Logger interface {
	// Named returns a copy of the logger with a new name, attached to
	// the name of the parent.
	Named(name string) Logger

	BindStr(name, value string) Logger
	BindInt(name string, value int) Logger

	Debug(msg string)
	DebugError(msg string, err error)
	Info(msg string)
	InfoError(msg string, err error)
	Warning(msg string)
	WarningError(msg string, err error)
}

var (
	// ErrAntiReplayCacheIsNotDefined is returned if anti-replay cache
	// was not provided in options.
	ErrAntiReplayCacheIsNotDefined = errors.New("anti-replay cache is not defined")

	// ErrResolverIsNotDefined is returned if a generic DNS resolver was
	// not provided in options.
	ErrResolverIsNotDefined = errors.New("dns resolver is not defined")

	// ErrLoggerIsNotDefined is returned if logger was not provided in
	// options.
	ErrLoggerIsNotDefined = errors.New("logger is not defined")
)
