package network

import (
	"context"
	"errors"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ssocks/ssgate/internal/testlib"
)

func TestDebugResolver_PassesResultsThrough(t *testing.T) {
	next := &testlib.DNSResolverMock{}
	want := []netip.AddrPort{netip.MustParseAddrPort("192.0.2.1:443")}

	next.On("Resolve", mock.Anything, "example.com", uint16(443)).Return(want, nil)

	resolver := NewDebugResolver(next, testlib.NoopLogger{})

	got, err := resolver.Resolve(context.Background(), "example.com", 443)

	require.NoError(t, err)
	assert.Equal(t, want, got)
	next.AssertExpectations(t)
}

func TestDebugResolver_PassesErrorsThrough(t *testing.T) {
	next := &testlib.DNSResolverMock{}
	wantErr := errors.New("resolution broke")

	next.On("Resolve", mock.Anything, "example.com", uint16(443)).
		Return([]netip.AddrPort(nil), wantErr)

	resolver := NewDebugResolver(next, testlib.NoopLogger{})

	_, err := resolver.Resolve(context.Background(), "example.com", 443)

	assert.ErrorIs(t, err, wantErr)
}
