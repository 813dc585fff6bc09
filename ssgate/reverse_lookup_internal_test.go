package ssgate

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseLookupCache_ExceptionsOnly(t *testing.T) {
	rlc := newReverseLookupCache(0)

	ip := netip.MustParseAddr("198.51.100.1")

	rlc.record(ip, true, true)
	assert.Equal(t, 1, rlc.len())

	forward, ok := rlc.get(ip)
	require.True(t, ok)
	assert.True(t, forward)

	// a non-exception drops the stored entry
	rlc.record(ip, true, false)
	assert.Zero(t, rlc.len())

	_, ok = rlc.get(ip)
	assert.False(t, ok)
}

func TestReverseLookupCache_MissingEntry(t *testing.T) {
	rlc := newReverseLookupCache(0)

	_, ok := rlc.get(netip.MustParseAddr("198.51.100.2"))
	assert.False(t, ok)
}

func TestReverseLookupCache_TTLExpiry(t *testing.T) {
	rlc := newReverseLookupCache(50 * time.Millisecond)

	ip := netip.MustParseAddr("198.51.100.3")
	rlc.record(ip, false, true)

	_, ok := rlc.get(ip)
	require.True(t, ok)

	time.Sleep(80 * time.Millisecond)

	_, ok = rlc.get(ip)
	assert.False(t, ok)
}
