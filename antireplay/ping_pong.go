package antireplay

import (
	"math"

	"github.com/OneOfOne/xxhash"
	boom "github.com/tylertreat/BoomFilters"

	"github.com/ssocks/ssgate/ssgate"
)

// Default sizing per deployment role. The values are the ones
// shadowsocks-libev settled on.
const (
	// ServerEntries is a nominal capacity for the server role.
	ServerEntries = 1_000_000

	// ServerErrorRate is a false positive rate for the server role.
	ServerErrorRate = 1e-6

	// ClientEntries is a nominal capacity for the client role.
	ClientEntries = 10_000

	// ClientErrorRate is a false positive rate for the client role. A
	// false positive on the client side spuriously rejects a legitimate
	// connection, so the rate is kept extremely tight.
	ClientErrorRate = 1e-15
)

// PingPongFilter is a dual rolling Bloom filter: two half-capacity
// slots used as a ring buffer. See the package documentation for the
// scheme.
//
// PingPongFilter is not safe for concurrent use, wrap it into a Guard.
type PingPongFilter struct {
	slots        [2]*boom.BloomFilter
	counts       [2]uint
	slotCapacity uint
	active       int
}

// NewPingPongFilter builds a filter with a nominal capacity of entries
// values and a target false positive rate. Zero and negative arguments
// select the server-role defaults.
func NewPingPongFilter(entries uint, errorRate float64) *PingPongFilter {
	if entries == 0 {
		entries = ServerEntries
	}

	if errorRate <= 0 || errorRate >= 1 {
		errorRate = ServerErrorRate
	}

	slotCapacity := entries / 2
	if slotCapacity == 0 {
		slotCapacity = 1
	}

	filter := &PingPongFilter{
		slotCapacity: slotCapacity,
	}

	for i := range filter.slots {
		bf := boom.NewBloomFilter(slotCapacity, errorRate)
		bf.SetHash(xxhash.New64())
		filter.slots[i] = bf
	}

	return filter
}

// NewPingPongFilterForRole builds a filter sized for a deployment role.
func NewPingPongFilterForRole(role ssgate.Role) *PingPongFilter {
	if role == ssgate.RoleClient {
		return NewPingPongFilter(ClientEntries, ClientErrorRate)
	}

	return NewPingPongFilter(ServerEntries, ServerErrorRate)
}

// CheckAndMark returns true if data was seen before. Unseen data is
// inserted into the active slot and false is returned.
func (p *PingPongFilter) CheckAndMark(data []byte) bool {
	// Both slots have to be consulted before any insert: a value which
	// landed in the retiring slot before the last rotation is not in
	// the active one.
	for _, slot := range p.slots {
		if slot.Test(data) {
			return true
		}
	}

	if p.counts[p.active] >= p.slotCapacity {
		// The active slot is full. Flip roles and reuse the old
		// retiring slot in place.
		p.active = (p.active + 1) % 2
		p.counts[p.active] = 0
		p.slots[p.active].Reset()
	}

	p.slots[p.active].Add(data)
	p.counts[p.active]++

	return false
}

// Count returns the number of values currently retained across both
// slots. It never exceeds twice the per-slot capacity.
func (p *PingPongFilter) Count() uint {
	return p.counts[0] + p.counts[1]
}

// SlotCapacity returns the insert capacity of a single slot.
func (p *PingPongFilter) SlotCapacity() uint {
	return p.slotCapacity
}

// CapacityForBudget derives a nominal entry capacity from a memory
// budget in bytes and a false positive rate, inverting the standard
// Bloom filter sizing formula for the two slots together.
func CapacityForBudget(byteSize uint, errorRate float64) uint {
	if byteSize == 0 {
		return ServerEntries
	}

	if errorRate <= 0 || errorRate >= 1 {
		errorRate = ServerErrorRate
	}

	bits := float64(byteSize) * 8
	entries := bits * math.Ln2 * math.Ln2 / -math.Log(errorRate)

	if entries < 2 {
		return 2
	}

	return uint(entries)
}
