package ssgate

import (
	"time"
)

// Upstream is a single configured ss upstream: where it lives and which
// cipher method it talks.
type Upstream struct {
	// Addr is a host:port of the upstream.
	Addr string

	// Cipher is a cipher method configured for this upstream.
	Cipher CipherKind
}

// ContextOpts is a structure with settings for a Context.
//
// This is not required per se, but this is to shorten function
// signatures and give an ability to conveniently provide default
// values.
type ContextOpts struct {
	// Role defines if this process acts as a local client or a remote
	// server. It is recorded for introspection; anti-replay sizing by
	// role happens in the antireplay package.
	Role Role

	// Upstreams is a list of configured upstreams. Cipher methods are
	// validated for deprecation warnings at construction.
	Upstreams []Upstream

	// AntiReplayCache defines an instance of the anti-replay nonce
	// cache.
	//
	// This is a mandatory setting.
	AntiReplayCache AntiReplayCache

	// Resolver defines a generic DNS resolver used when no local
	// upstream relay is configured.
	//
	// This is a mandatory setting.
	Resolver DNSResolver

	// LocalDNS defines a local upstream DNS relay. When set, all
	// resolutions are delegated to it exclusively.
	//
	// This is an optional setting.
	LocalDNS DNSResolver

	// ACL defines an access control list. nil means 'proxy everything,
	// block nothing'.
	//
	// This is an optional setting.
	ACL AccessList

	// FlowStats defines a sink for traffic counters.
	//
	// This is an optional setting, a no-op sink is used by default.
	FlowStats FlowStats

	// RateLimiter limits per-client connection attempts.
	//
	// This is an optional setting, no limiting by default.
	RateLimiter *RateLimiter

	// ReverseLookupTTL is a retention window for reverse-lookup cache
	// entries.
	//
	// This is an optional setting, default is 3 days.
	ReverseLookupTTL time.Duration

	// Logger defines an instance of the logger.
	//
	// This is a mandatory setting.
	Logger Logger
}

func (c ContextOpts) valid() error {
	switch {
	case c.AntiReplayCache == nil:
		return ErrAntiReplayCacheIsNotDefined
	case c.Resolver == nil:
		return ErrResolverIsNotDefined
	case c.Logger == nil:
		return ErrLoggerIsNotDefined
	}

	return nil
}

func (c ContextOpts) getFlowStats() FlowStats {
	if c.FlowStats == nil {
		return noopFlowStats{}
	}

	return c.FlowStats
}
