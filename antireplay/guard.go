package antireplay

import (
	"sync"

	"github.com/ssocks/ssgate/ssgate"
)

// Guard makes a PingPongFilter safe for an unbounded number of
// concurrent callers. The mutex is scoped to the single check-and-mark
// unit and is never held across anything that can block on I/O, so two
// concurrent calls with the same nonce are strictly ordered: exactly
// one of them observes 'novel'.
type Guard struct {
	mutex  sync.Mutex
	filter *PingPongFilter
}

// NewGuard wraps a filter. A nil filter selects the server-role
// defaults.
func NewGuard(filter *PingPongFilter) *Guard {
	if filter == nil {
		filter = NewPingPongFilter(0, 0)
	}

	return &Guard{filter: filter}
}

func (g *Guard) CheckAndMark(data []byte) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	return g.filter.CheckAndMark(data)
}

// Ensure interface compliance.
var _ ssgate.AntiReplayCache = (*Guard)(nil)
