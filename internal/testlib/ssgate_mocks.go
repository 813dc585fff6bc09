package testlib

import (
	"context"
	"net/netip"

	"github.com/stretchr/testify/mock"

	"github.com/ssocks/ssgate/ssgate"
)

type DNSResolverMock struct {
	mock.Mock
}

func (d *DNSResolverMock) Resolve(ctx context.Context, host string, port uint16) ([]netip.AddrPort, error) {
	args := d.Called(ctx, host, port)

	return args.Get(0).([]netip.AddrPort), args.Error(1) //nolint: wrapcheck, forcetypeassert
}

type AntiReplayCacheMock struct {
	mock.Mock
}

func (a *AntiReplayCacheMock) CheckAndMark(nonce []byte) bool {
	return a.Called(nonce).Bool(0)
}

type FlowStatsMock struct {
	mock.Mock
}

func (f *FlowStatsMock) AddTx(n uint64) {
	f.Called(n)
}

func (f *FlowStatsMock) AddRx(n uint64) {
	f.Called(n)
}

type AccessListMock struct {
	mock.Mock
}

func (a *AccessListMock) ClientBlocked(ip netip.Addr) bool {
	return a.Called(ip).Bool(0)
}

func (a *AccessListMock) OutboundIPBlocked(ip netip.Addr) bool {
	return a.Called(ip).Bool(0)
}

func (a *AccessListMock) OutboundHostBlocked(host string) bool {
	return a.Called(host).Bool(0)
}

func (a *AccessListMock) IPInProxyList(ip netip.Addr) bool {
	return a.Called(ip).Bool(0)
}

func (a *AccessListMock) HostRule(host string) (bypass, matched bool) {
	args := a.Called(host)

	return args.Bool(0), args.Bool(1)
}

var (
	_ ssgate.DNSResolver     = &DNSResolverMock{}
	_ ssgate.AntiReplayCache = &AntiReplayCacheMock{}
	_ ssgate.FlowStats       = &FlowStatsMock{}
	_ ssgate.AccessList      = &AccessListMock{}
)
