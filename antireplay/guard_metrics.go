package antireplay

import (
	"sync"
	"sync/atomic"

	"github.com/ssocks/ssgate/ssgate"
)

// guardWithMetrics wraps a PingPongFilter with replay statistics.
type guardWithMetrics struct {
	filter *PingPongFilter
	mutex  sync.Mutex

	// Atomic counters for lock-free reads.
	totalChecks    uint64
	replayDetected uint64
	uniqueNonces   uint64
}

func (g *guardWithMetrics) CheckAndMark(data []byte) bool {
	atomic.AddUint64(&g.totalChecks, 1)

	g.mutex.Lock()
	isDuplicate := g.filter.CheckAndMark(data)
	g.mutex.Unlock()

	if isDuplicate {
		atomic.AddUint64(&g.replayDetected, 1)
	} else {
		atomic.AddUint64(&g.uniqueNonces, 1)
	}

	return isDuplicate
}

// Metrics is a snapshot of replay detection statistics.
type Metrics struct {
	TotalChecks    uint64  // total CheckAndMark calls
	ReplayDetected uint64  // duplicates found
	UniqueNonces   uint64  // first-time nonces
	ReplayRate     float64 // percentage of replays, 0.0 to 100.0
	RetainedCount  uint64  // values currently held by the filter
}

// GetMetrics returns current statistics.
func (g *guardWithMetrics) GetMetrics() Metrics {
	totalChecks := atomic.LoadUint64(&g.totalChecks)
	replayDetected := atomic.LoadUint64(&g.replayDetected)
	uniqueNonces := atomic.LoadUint64(&g.uniqueNonces)

	var replayRate float64
	if totalChecks > 0 {
		replayRate = float64(replayDetected) / float64(totalChecks) * 100.0
	}

	g.mutex.Lock()
	retained := g.filter.Count()
	g.mutex.Unlock()

	return Metrics{
		TotalChecks:    totalChecks,
		ReplayDetected: replayDetected,
		UniqueNonces:   uniqueNonces,
		ReplayRate:     replayRate,
		RetainedCount:  uint64(retained),
	}
}

// ResetMetrics resets the counters. The filter itself is untouched.
func (g *guardWithMetrics) ResetMetrics() {
	atomic.StoreUint64(&g.totalChecks, 0)
	atomic.StoreUint64(&g.replayDetected, 0)
	atomic.StoreUint64(&g.uniqueNonces, 0)
}

// NewGuardWithMetrics returns an instrumented variant of Guard. Use
// GetMetrics to pull statistics for monitoring.
func NewGuardWithMetrics(filter *PingPongFilter) *guardWithMetrics { //nolint: revive
	if filter == nil {
		filter = NewPingPongFilter(0, 0)
	}

	return &guardWithMetrics{filter: filter}
}

// Ensure interface compliance.
var _ ssgate.AntiReplayCache = (*guardWithMetrics)(nil)
