// Package stats provides flow-statistics sinks: increment-only byte
// counters the shared context forwards traffic numbers into. Two
// backends are available, statsd and Prometheus.
package stats

const (
	metricTrafficTx = "traffic_tx_bytes_total"
	metricTrafficRx = "traffic_rx_bytes_total"
)
