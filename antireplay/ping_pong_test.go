package antireplay

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssocks/ssgate/ssgate"
)

func nonce(i int) []byte {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint64(buf, uint64(i))

	return buf
}

func TestPingPongFilter_DuplicateDetected(t *testing.T) {
	filter := NewPingPongFilter(1000, 1e-6)

	assert.False(t, filter.CheckAndMark(nonce(1)))
	assert.True(t, filter.CheckAndMark(nonce(1)))
	assert.True(t, filter.CheckAndMark(nonce(1)))
}

func TestPingPongFilter_NoFalseNegativesWithinWindow(t *testing.T) {
	filter := NewPingPongFilter(1000, 1e-6)
	window := int(filter.SlotCapacity())

	for i := 0; i < window; i++ {
		filter.CheckAndMark(nonce(i))
	}

	// the most recent slotCapacity inserts are guaranteed to be
	// retained, whatever rotations happened before them.
	for i := 0; i < window; i++ {
		assert.True(t, filter.CheckAndMark(nonce(i)), "nonce %d was forgotten", i)
	}
}

func TestPingPongFilter_RotationBoundsRetention(t *testing.T) {
	filter := NewPingPongFilter(100, 1e-6)
	capacity := filter.SlotCapacity()

	for i := 0; i < int(capacity)*10; i++ {
		filter.CheckAndMark(nonce(i))
		assert.LessOrEqual(t, filter.Count(), 2*capacity)
	}
}

func TestPingPongFilter_RotationForgetsOldValues(t *testing.T) {
	filter := NewPingPongFilter(100, 1e-6)
	capacity := int(filter.SlotCapacity())

	filter.CheckAndMark(nonce(0))

	// Two full rotations push the very first value out of both slots.
	for i := 1; i <= capacity*2+1; i++ {
		filter.CheckAndMark(nonce(1_000_000 + i))
	}

	assert.False(t, filter.CheckAndMark(nonce(0)))
}

func TestPingPongFilter_ZeroArgumentsSelectServerDefaults(t *testing.T) {
	filter := NewPingPongFilter(0, 0)

	assert.EqualValues(t, ServerEntries/2, filter.SlotCapacity())
}

func TestPingPongFilter_RoleSizing(t *testing.T) {
	server := NewPingPongFilterForRole(ssgate.RoleServer)
	client := NewPingPongFilterForRole(ssgate.RoleClient)

	assert.EqualValues(t, ServerEntries/2, server.SlotCapacity())
	assert.EqualValues(t, ClientEntries/2, client.SlotCapacity())
}

func TestPingPongFilter_FalsePositiveRateSample(t *testing.T) {
	filter := NewPingPongFilter(10_000, 1e-6)

	for i := 0; i < 5000; i++ {
		filter.CheckAndMark(nonce(i))
	}

	falsePositives := 0

	for i := 0; i < 5000; i++ {
		if filter.CheckAndMark(nonce(100_000 + i)) {
			falsePositives++
		}
	}

	// with p=1e-6 on a 5k sample even a single false positive is a
	// strong sign of a sizing bug.
	assert.LessOrEqual(t, falsePositives, 1)
}

func TestPingPongFilter_ServerRoleLongRun(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long scenario in -short mode")
	}

	// scenario capacity with a much tighter error rate than the server
	// default, so the retention boundary assertions below are exact: a
	// single false positive during the insert phase would skip an
	// insert and shift the boundary.
	filter := NewPingPongFilter(1_000_000, 1e-12)

	duplicates := 0

	for i := 0; i < 1_500_000; i++ {
		if filter.CheckAndMark(nonce(i)) {
			duplicates++
		}
	}

	assert.Zero(t, duplicates)
	assert.Equal(t, 2*filter.SlotCapacity(), filter.Count())

	// after 1.5M inserts into two 500k slots the retention boundary is
	// exact: the newest million fill both slots, the oldest half
	// million went through two rotations.
	stillPresent := 0

	for i := 500_000; i < 1_500_000; i++ {
		if filter.CheckAndMark(nonce(i)) {
			stillPresent++
		}
	}

	assert.Equal(t, 1_000_000, stillPresent)

	forgotten := 0

	for i := 0; i < 500_000; i++ {
		if !filter.CheckAndMark(nonce(i)) {
			forgotten++
		}
	}

	assert.Equal(t, 500_000, forgotten)
}

func TestCapacityForBudget(t *testing.T) {
	assert.EqualValues(t, ServerEntries, CapacityForBudget(0, 1e-6))

	small := CapacityForBudget(1024, 1e-6)
	large := CapacityForBudget(1024*1024, 1e-6)

	require.Greater(t, large, small)

	// tighter error rate means fewer entries fit into the same budget
	loose := CapacityForBudget(1024*1024, 1e-3)
	tight := CapacityForBudget(1024*1024, 1e-9)

	assert.Greater(t, loose, tight)
}
