package ssgate

import (
	"context"
	"fmt"
	"net/netip"
	"sync/atomic"
)

// Context is the shared runtime state of an ss server or client. One
// instance is built per process (or per logical server group) and
// handed to every connection handler.
//
// All fields are read-mostly. The running flag is an atomic, the nonce
// cache and the reverse-lookup cache carry their own internal locking,
// everything else is immutable once the context is shared. The only
// exception is SetUpstreamAddr which exists for single-threaded plugin
// bootstrap and must not be called afterwards.
type Context struct {
	role      Role
	upstreams []Upstream

	running atomic.Bool

	nonces        AntiReplayCache
	resolver      DNSResolver
	localDNS      DNSResolver
	acl           AccessList
	flowStats     FlowStats
	rateLimiter   *RateLimiter
	reverseLookup *reverseLookupCache
	logger        Logger
}

// NewContext assembles a Context from options.
//
// Construction never fails because of a deprecated cipher method: such
// upstreams only produce a warning.
func NewContext(opts ContextOpts) (*Context, error) {
	if err := opts.valid(); err != nil {
		return nil, fmt.Errorf("invalid context options: %w", err)
	}

	logger := opts.Logger.Named("context")

	for _, upstream := range opts.Upstreams {
		if upstream.Cipher.Deprecated() {
			logger.
				BindStr("cipher", upstream.Cipher.String()).
				BindStr("upstream", upstream.Addr).
				Warning("cipher method has inherent weaknesses, do not use it")
		}
	}

	ctx := &Context{
		role:          opts.Role,
		upstreams:     opts.Upstreams,
		nonces:        opts.AntiReplayCache,
		resolver:      opts.Resolver,
		localDNS:      opts.LocalDNS,
		acl:           opts.ACL,
		flowStats:     opts.getFlowStats(),
		rateLimiter:   opts.RateLimiter,
		reverseLookup: newReverseLookupCache(opts.ReverseLookupTTL),
		logger:        logger,
	}
	ctx.running.Store(true)

	return ctx, nil
}

// Role returns a deployment role of this context.
func (c *Context) Role() Role {
	return c.role
}

// Upstreams returns the configured upstream list.
func (c *Context) Upstreams() []Upstream {
	return c.upstreams
}

// SetUpstreamAddr rewrites an upstream address. This is a narrow
// mutation path for plugin bootstrap: plugins listen on an ephemeral
// local port which is known only after they have started. It must only
// be used before the context is shared with handlers.
func (c *Context) SetUpstreamAddr(idx int, addr string) {
	c.upstreams[idx].Addr = addr
}

// Running tells if the server is still in running state.
func (c *Context) Running() bool {
	return c.running.Load()
}

// Stop switches the context into the stopped state. The transition is
// one way and idempotent; background jobs poll Running to terminate.
func (c *Context) Stop() {
	c.running.Store(false)
}

// CheckNonceAndSet returns true if the nonce was seen before and marks
// it as seen otherwise.
//
// An empty nonce means the cipher method has no nonce at all (e.g.
// plain) and is always treated as novel without touching the filter.
func (c *Context) CheckNonceAndSet(nonce []byte) bool {
	if len(nonce) == 0 {
		return false
	}

	return c.nonces.CheckAndMark(nonce)
}

// DNSResolve resolves a hostname into candidate socket addresses. A
// configured local upstream relay takes priority over the generic
// resolver.
func (c *Context) DNSResolve(ctx context.Context, host string, port uint16) ([]netip.AddrPort, error) {
	if c.localDNS != nil {
		return c.localDNS.Resolve(ctx, host, port)
	}

	return c.resolver.Resolve(ctx, host, port)
}

// LocalDNS returns the local upstream DNS relay. Callers are expected
// to check the configuration first: asking for an unconfigured relay is
// a programming error.
func (c *Context) LocalDNS() DNSResolver {
	if c.localDNS == nil {
		panic("local DNS uninitialized")
	}

	return c.localDNS
}

// ACL returns the access control list, nil when none was loaded.
func (c *Context) ACL() AccessList {
	return c.acl
}

// ClientBlocked checks the inbound client address against the ACL.
func (c *Context) ClientBlocked(ip netip.Addr) bool {
	if c.acl == nil {
		return false
	}

	return c.acl.ClientBlocked(ip)
}

// RateLimited tells if a client IP has exceeded its connection budget.
// Always false when no rate limiter is configured.
func (c *Context) RateLimited(ip netip.Addr) bool {
	if c.rateLimiter == nil {
		return false
	}

	return !c.rateLimiter.Allow(ip)
}

// OutboundBlocked checks an outbound target against the ACL. Domain
// targets without an explicit host rule are resolved first, so the
// check may need DNS.
func (c *Context) OutboundBlocked(ctx context.Context, addr Address) (bool, error) {
	if c.acl == nil {
		return false, nil
	}

	if !addr.IsDomain() {
		return c.acl.OutboundIPBlocked(addr.SocketAddr().Addr()), nil
	}

	if c.acl.OutboundHostBlocked(addr.Host()) {
		return true, nil
	}

	resolved, err := c.DNSResolve(ctx, addr.Host(), addr.Port())
	if err != nil {
		return false, fmt.Errorf("cannot resolve %s: %w", addr, err)
	}

	for _, sa := range resolved {
		if c.acl.OutboundIPBlocked(sa.Addr()) {
			return true, nil
		}
	}

	return false, nil
}

// TargetBypassed tells if a target should be sent direct instead of
// being proxied. Resolved addresses consult the reverse-lookup cache
// first; a hit short-circuits the ACL evaluation.
func (c *Context) TargetBypassed(ctx context.Context, target Address) (bool, error) {
	if c.acl == nil {
		// proxy everything by default
		return false, nil
	}

	if !target.IsDomain() {
		ip := target.SocketAddr().Addr()

		if forward, ok := c.reverseLookup.get(ip); ok {
			return !forward, nil
		}

		return !c.acl.IPInProxyList(ip), nil
	}

	if bypass, matched := c.acl.HostRule(target.Host()); matched {
		return bypass, nil
	}

	resolved, err := c.DNSResolve(ctx, target.Host(), target.Port())
	if err != nil {
		return false, fmt.Errorf("cannot resolve %s: %w", target, err)
	}

	for _, sa := range resolved {
		if c.acl.IPInProxyList(sa.Addr()) {
			return false, nil
		}
	}

	return true, nil
}

// AddToReverseLookupCache records whether a resolved IP was forwarded.
//
// The default decision is recomputed on every call, even for an entry
// which is merely confirmed: entries are kept only while they disagree
// with a fresh ACL lookup, which keeps them self-correcting and the
// cache small.
func (c *Context) AddToReverseLookupCache(ip netip.Addr, forward bool) {
	defaultForward := true // proxy everything by default
	if c.acl != nil {
		defaultForward = c.acl.IPInProxyList(ip)
	}

	c.reverseLookup.record(ip, forward, forward != defaultForward)
}

// ReverseLookup answers whether the IP was recorded as forwarded. ok is
// false when there is no live cache entry.
func (c *Context) ReverseLookup(ip netip.Addr) (forward, ok bool) {
	return c.reverseLookup.get(ip)
}

// AddTraffic forwards transferred byte counts to the flow statistics
// sink.
func (c *Context) AddTraffic(tx, rx uint64) {
	if tx > 0 {
		c.flowStats.AddTx(tx)
	}

	if rx > 0 {
		c.flowStats.AddRx(rx)
	}
}

// FlowStats returns the flow statistics sink.
func (c *Context) FlowStats() FlowStats {
	return c.flowStats
}
