package stats

import (
	"context"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ssocks/ssgate/ssgate"
)

// Prometheus keeps traffic counters in a dedicated registry and can
// serve a scrape endpoint on a given listener.
type Prometheus struct {
	httpServer *http.Server

	metricTx prometheus.Counter
	metricRx prometheus.Counter
}

// NewPrometheus builds a Prometheus sink. httpPath is where the scrape
// output is mounted.
func NewPrometheus(metricPrefix, httpPath string) *Prometheus {
	registry := prometheus.NewPedanticRegistry()

	rv := &Prometheus{
		metricTx: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      metricTrafficTx,
			Help:      "Bytes sent to upstreams.",
		}),
		metricRx: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricPrefix,
			Name:      metricTrafficRx,
			Help:      "Bytes received from upstreams.",
		}),
	}

	registry.MustRegister(rv.metricTx, rv.metricRx)

	mux := http.NewServeMux()
	mux.Handle(httpPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	rv.httpServer = &http.Server{
		Handler: mux,
	}

	return rv
}

func (p *Prometheus) AddTx(n uint64) {
	p.metricTx.Add(float64(n))
}

func (p *Prometheus) AddRx(n uint64) {
	p.metricRx.Add(float64(n))
}

// Serve starts an HTTP server on a given listener.
func (p *Prometheus) Serve(listener net.Listener) error {
	return p.httpServer.Serve(listener) //nolint: wrapcheck
}

// Close stops the HTTP server. The underlying listener is not closed.
func (p *Prometheus) Close() error {
	return p.httpServer.Shutdown(context.Background()) //nolint: wrapcheck
}

// Ensure interface compliance.
var _ ssgate.FlowStats = (*Prometheus)(nil)
