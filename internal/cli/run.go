package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ssocks/ssgate/internal/utils"
)

// Run brings the shared runtime up: resolvers, ACL, anti-replay guard,
// statistics endpoints. Connection handling is wired in by the embedding
// deployment; this command keeps the runtime alive until a signal.
type Run struct {
	ConfigPath string `kong:"arg,required,type='existingfile',help='Path to the configuration file.',name='config-path'"` //nolint: lll
}

func (r Run) Run(cli *CLI, version string) error {
	conf, err := utils.ReadConfig(r.ConfigPath)
	if err != nil {
		return fmt.Errorf("cannot parse config: %w", err)
	}

	log := makeLogger(conf)

	sharedCtx, cleanup, err := makeContext(conf, log, true)
	if err != nil {
		return err
	}

	defer cleanup()

	log.
		BindStr("version", version).
		BindStr("role", sharedCtx.Role().String()).
		BindInt("upstreams", len(sharedCtx.Upstreams())).
		Info("runtime is up")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan

	log.BindStr("signal", sig.String()).Info("shutting down")
	sharedCtx.Stop()

	return nil
}
