package stats

import (
	statsd "github.com/smira/go-statsd"

	"github.com/ssocks/ssgate/ssgate"
)

// Statsd forwards traffic counters to a statsd daemon. The underlying
// client buffers and sends in background, so increments never block the
// caller.
type Statsd struct {
	client *statsd.Client
}

// NewStatsd builds a statsd sink. address is a host:port of the
// daemon.
func NewStatsd(address, metricPrefix string) *Statsd {
	return &Statsd{
		client: statsd.NewClient(address, statsd.MetricPrefix(metricPrefix)),
	}
}

func (s *Statsd) AddTx(n uint64) {
	s.client.Incr(metricTrafficTx, int64(n)) //nolint: gosec
}

func (s *Statsd) AddRx(n uint64) {
	s.client.Incr(metricTrafficRx, int64(n)) //nolint: gosec
}

// Close flushes and stops the client.
func (s *Statsd) Close() error {
	return s.client.Close() //nolint: wrapcheck
}

// Ensure interface compliance.
var _ ssgate.FlowStats = (*Statsd)(nil)
