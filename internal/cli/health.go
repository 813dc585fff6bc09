package cli

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/ssocks/ssgate/internal/utils"
)

const healthCheckTimeout = 5 * time.Second

// Health checks liveness via the Prometheus metrics endpoint. Intended
// for Dockerfile HEALTHCHECK and docker-compose healthcheck directives.
type Health struct {
	ConfigPath string `kong:"arg,required,type='existingfile',help='Path to the configuration file.',name='config-path'"` //nolint: lll
}

func (h Health) Run(cli *CLI, version string) error {
	conf, err := utils.ReadConfig(h.ConfigPath)
	if err != nil {
		return fmt.Errorf("cannot parse config: %w", err)
	}

	if !conf.Stats.Prometheus.Enabled.Get(false) {
		return fmt.Errorf("prometheus endpoint is not enabled, nothing to check")
	}

	bindTo := conf.Stats.Prometheus.BindTo.Value
	httpPath := conf.Stats.Prometheus.HTTPPath.Get(defaultHTTPPath)

	// the endpoint may be bound to 0.0.0.0, healthcheck always
	// connects via loopback.
	_, port, err := net.SplitHostPort(bindTo)
	if err != nil {
		return fmt.Errorf("cannot parse prometheus bind address %s: %w", bindTo, err)
	}

	return checkHTTP(fmt.Sprintf("http://127.0.0.1:%s%s", port, httpPath))
}

func checkHTTP(url string) error {
	client := &http.Client{
		Timeout: healthCheckTimeout,
	}

	resp, err := client.Get(url) //nolint: noctx
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	defer resp.Body.Close()

	io.Copy(io.Discard, resp.Body) //nolint: errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: status %d", resp.StatusCode)
	}

	return nil
}
