package network

import (
	"context"
	"net/netip"
	"time"

	"github.com/ssocks/ssgate/ssgate"
)

// DebugResolver wraps another resolver and reports wall-clock duration
// of every resolution. It changes nothing in the result and is wired in
// only when verbose diagnostics were requested.
type DebugResolver struct {
	next   ssgate.DNSResolver
	logger ssgate.Logger
}

// NewDebugResolver instruments a resolver with timing diagnostics.
func NewDebugResolver(next ssgate.DNSResolver, logger ssgate.Logger) *DebugResolver {
	return &DebugResolver{
		next:   next,
		logger: logger.Named("dns"),
	}
}

func (d *DebugResolver) Resolve(ctx context.Context, host string, port uint16) ([]netip.AddrPort, error) {
	start := time.Now()
	addrs, err := d.next.Resolve(ctx, host, port)
	elapsed := time.Since(start)

	logger := d.logger.
		BindStr("host", host).
		BindInt("port", int(port)).
		BindStr("elapsed", elapsed.String())

	if err != nil {
		logger.DebugError("resolution failed", err)
	} else {
		logger.BindInt("addresses", len(addrs)).Debug("resolved")
	}

	return addrs, err
}

// Ensure interface compliance.
var _ ssgate.DNSResolver = (*DebugResolver)(nil)
