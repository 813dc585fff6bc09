package network

import (
	"context"
	"net"
	"net/netip"
	"sync/atomic"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runLocalDNS(t *testing.T, handler dns.Handler) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	server := &dns.Server{PacketConn: pc, Handler: handler}

	go server.ActivateAndServe() //nolint: errcheck

	t.Cleanup(func() {
		server.Shutdown() //nolint: errcheck
	})

	return pc.LocalAddr().String()
}

type countingHandler struct {
	queries uint64
	answer  func(w dns.ResponseWriter, r *dns.Msg)
}

func (c *countingHandler) ServeDNS(w dns.ResponseWriter, r *dns.Msg) {
	atomic.AddUint64(&c.queries, 1)
	c.answer(w, r)
}

func dualStackAnswer(w dns.ResponseWriter, r *dns.Msg) {
	msg := new(dns.Msg)
	msg.SetReply(r)

	question := r.Question[0]

	switch question.Qtype {
	case dns.TypeA:
		msg.Answer = append(msg.Answer, &dns.A{
			Hdr: dns.RR_Header{
				Name:   question.Name,
				Rrtype: dns.TypeA,
				Class:  dns.ClassINET,
				Ttl:    60,
			},
			A: net.ParseIP("192.0.2.10"),
		})
	case dns.TypeAAAA:
		msg.Answer = append(msg.Answer, &dns.AAAA{
			Hdr: dns.RR_Header{
				Name:   question.Name,
				Rrtype: dns.TypeAAAA,
				Class:  dns.ClassINET,
				Ttl:    60,
			},
			AAAA: net.ParseIP("2001:db8::10"),
		})
	}

	w.WriteMsg(msg) //nolint: errcheck
}

func TestUpstreamResolver_BadAddress(t *testing.T) {
	_, err := NewUpstreamResolver("not-a-hostport", time.Second, false)

	assert.Error(t, err)
}

func TestUpstreamResolver_Resolve(t *testing.T) {
	handler := &countingHandler{answer: dualStackAnswer}
	addr := runLocalDNS(t, handler)

	resolver, err := NewUpstreamResolver(addr, 2*time.Second, false)
	require.NoError(t, err)

	defer resolver.Stop()

	addrs, err := resolver.Resolve(context.Background(), "example.com", 443)

	require.NoError(t, err)
	require.Len(t, addrs, 2)

	// ipv4 first by default
	assert.Equal(t, netip.MustParseAddrPort("192.0.2.10:443"), addrs[0])
	assert.Equal(t, netip.MustParseAddrPort("[2001:db8::10]:443"), addrs[1])
}

func TestUpstreamResolver_IPv6First(t *testing.T) {
	handler := &countingHandler{answer: dualStackAnswer}
	addr := runLocalDNS(t, handler)

	resolver, err := NewUpstreamResolver(addr, 2*time.Second, true)
	require.NoError(t, err)

	defer resolver.Stop()

	addrs, err := resolver.Resolve(context.Background(), "example.com", 443)

	require.NoError(t, err)
	require.Len(t, addrs, 2)
	assert.Equal(t, netip.MustParseAddrPort("[2001:db8::10]:443"), addrs[0])
}

func TestUpstreamResolver_AnswersAreCached(t *testing.T) {
	handler := &countingHandler{answer: dualStackAnswer}
	addr := runLocalDNS(t, handler)

	resolver, err := NewUpstreamResolver(addr, 2*time.Second, false)
	require.NoError(t, err)

	defer resolver.Stop()

	_, err = resolver.Resolve(context.Background(), "example.com", 443)
	require.NoError(t, err)

	queriesAfterFirst := atomic.LoadUint64(&handler.queries)

	_, err = resolver.Resolve(context.Background(), "example.com", 8388)
	require.NoError(t, err)

	assert.Equal(t, queriesAfterFirst, atomic.LoadUint64(&handler.queries))
	assert.EqualValues(t, 1, resolver.CacheMetrics().Hits)
}

func TestUpstreamResolver_NXDomain(t *testing.T) {
	handler := &countingHandler{answer: func(w dns.ResponseWriter, r *dns.Msg) {
		msg := new(dns.Msg)
		msg.SetRcode(r, dns.RcodeNameError)
		w.WriteMsg(msg) //nolint: errcheck
	}}
	addr := runLocalDNS(t, handler)

	resolver, err := NewUpstreamResolver(addr, 2*time.Second, false)
	require.NoError(t, err)

	defer resolver.Stop()

	_, err = resolver.Resolve(context.Background(), "no-such-host.example", 443)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "NXDOMAIN")
}

func TestUpstreamResolver_LiteralSkipsUpstream(t *testing.T) {
	handler := &countingHandler{answer: dualStackAnswer}
	addr := runLocalDNS(t, handler)

	resolver, err := NewUpstreamResolver(addr, 2*time.Second, false)
	require.NoError(t, err)

	defer resolver.Stop()

	addrs, err := resolver.Resolve(context.Background(), "198.51.100.1", 53)

	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.Equal(t, netip.MustParseAddrPort("198.51.100.1:53"), addrs[0])
	assert.Zero(t, atomic.LoadUint64(&handler.queries))
}
