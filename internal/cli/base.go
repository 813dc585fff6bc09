package cli

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ssocks/ssgate/acl"
	"github.com/ssocks/ssgate/antireplay"
	"github.com/ssocks/ssgate/internal/config"
	"github.com/ssocks/ssgate/internal/logger"
	"github.com/ssocks/ssgate/network"
	"github.com/ssocks/ssgate/ssgate"
	"github.com/ssocks/ssgate/stats"
)

const (
	defaultMetricPrefix   = "ssgate"
	defaultHTTPPath       = "/metrics"
	rateLimiterCleanupGap = time.Minute
)

func makeLogger(conf *config.Config) logger.Logger {
	level := zerolog.InfoLevel
	if conf.Debug.Get(false) {
		level = zerolog.DebugLevel
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	return logger.New(log)
}

// makeContext assembles a shared context from a parsed config. The
// returned cleanup releases everything which was started on the way.
// withStats controls whether statistics backends are brought up; the
// inspection commands skip them to avoid binding ports.
func makeContext(conf *config.Config, log logger.Logger, withStats bool) (*ssgate.Context, func(), error) {
	var closers []func()

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	ipv6First := conf.IPv6First.Get(false)
	dnsTimeout := conf.Network.DNS.Timeout.Get(network.DefaultDNSTimeout)

	var resolver ssgate.DNSResolver

	switch conf.Network.DNS.Mode.Value {
	case config.DNSModeDoH:
		doh, err := network.NewDOHResolver(
			conf.Network.DNS.DOHIP.String(),
			&http.Client{Timeout: dnsTimeout},
			ipv6First)
		if err != nil {
			cleanup()

			return nil, nil, fmt.Errorf("cannot build doh resolver: %w", err)
		}

		closers = append(closers, doh.Stop)
		resolver = doh
	default:
		system := network.NewSystemResolver(dnsTimeout, ipv6First)
		closers = append(closers, system.Stop)
		resolver = system
	}

	var localDNS ssgate.DNSResolver

	if addr := conf.Network.DNS.LocalDNS.Get(""); addr != "" {
		upstream, err := network.NewUpstreamResolver(addr, dnsTimeout, ipv6First)
		if err != nil {
			cleanup()

			return nil, nil, fmt.Errorf("cannot build upstream resolver: %w", err)
		}

		closers = append(closers, upstream.Stop)
		localDNS = upstream
	}

	if conf.Debug.Get(false) {
		resolver = network.NewDebugResolver(resolver, log)

		if localDNS != nil {
			localDNS = network.NewDebugResolver(localDNS, log)
		}
	}

	opts := ssgate.ContextOpts{
		Role:            conf.Role.Value,
		AntiReplayCache: makeAntiReplay(conf),
		Resolver:        resolver,
		LocalDNS:        localDNS,
		Logger:          log,
	}

	for _, upstream := range conf.Upstreams {
		opts.Upstreams = append(opts.Upstreams, ssgate.Upstream{
			Addr:   upstream.Address.Value,
			Cipher: upstream.Cipher.Get(ssgate.CipherAES256GCM),
		})
	}

	if conf.ACL != "" {
		accessList, err := acl.ParseFile(conf.ACL)
		if err != nil {
			cleanup()

			return nil, nil, fmt.Errorf("cannot load acl: %w", err)
		}

		opts.ACL = accessList
	}

	if conf.Defense.RateLimit.Enabled.Get(false) {
		limiter := ssgate.NewRateLimiter(
			rate.Limit(conf.Defense.RateLimit.PerSecond.Value),
			int(conf.Defense.RateLimit.Burst.Value), //nolint: gosec
			rateLimiterCleanupGap)
		closers = append(closers, limiter.Stop)
		opts.RateLimiter = limiter
	}

	if withStats {
		flowStats, statsClosers, err := makeFlowStats(conf)
		if err != nil {
			cleanup()

			return nil, nil, err
		}

		closers = append(closers, statsClosers...)
		opts.FlowStats = flowStats
	}

	ctx, err := ssgate.NewContext(opts)
	if err != nil {
		cleanup()

		return nil, nil, fmt.Errorf("cannot build context: %w", err)
	}

	return ctx, cleanup, nil
}

func makeAntiReplay(conf *config.Config) ssgate.AntiReplayCache {
	entries := uint(antireplay.ServerEntries)
	errorRate := antireplay.ServerErrorRate

	if conf.Role.Value == ssgate.RoleClient {
		entries = antireplay.ClientEntries
		errorRate = antireplay.ClientErrorRate
	}

	errorRate = conf.Defense.AntiReplay.ErrorRate.Get(errorRate)

	if maxSize := conf.Defense.AntiReplay.MaxSize.Value; maxSize > 0 {
		entries = antireplay.CapacityForBudget(uint(maxSize), errorRate) //nolint: gosec
	}

	return antireplay.NewGuard(antireplay.NewPingPongFilter(entries, errorRate))
}

func makeFlowStats(conf *config.Config) (ssgate.FlowStats, []func(), error) {
	var (
		sinks   []ssgate.FlowStats
		closers []func()
	)

	if conf.Stats.StatsD.Enabled.Get(false) {
		statsd := stats.NewStatsd(
			conf.Stats.StatsD.Address.Value,
			conf.Stats.StatsD.MetricPrefix.Get(defaultMetricPrefix)+".")
		closers = append(closers, func() { statsd.Close() }) //nolint: errcheck
		sinks = append(sinks, statsd)
	}

	if conf.Stats.Prometheus.Enabled.Get(false) {
		prom := stats.NewPrometheus(
			conf.Stats.Prometheus.MetricPrefix.Get(defaultMetricPrefix),
			conf.Stats.Prometheus.HTTPPath.Get(defaultHTTPPath))

		listener, err := net.Listen("tcp", conf.Stats.Prometheus.BindTo.Value)
		if err != nil {
			for _, closer := range closers {
				closer()
			}

			return nil, nil, fmt.Errorf("cannot bind prometheus endpoint: %w", err)
		}

		go prom.Serve(listener) //nolint: errcheck

		closers = append(closers, func() {
			prom.Close()     //nolint: errcheck
			listener.Close() //nolint: errcheck
		})
		sinks = append(sinks, prom)
	}

	if len(sinks) == 0 {
		return nil, nil, nil
	}

	return ssgate.CombineFlowStats(sinks...), closers, nil
}
