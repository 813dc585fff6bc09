package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ssocks/ssgate/internal/utils"
	"github.com/ssocks/ssgate/ssgate"
)

const resolveTimeout = 30 * time.Second

// Resolve performs a one-shot lookup through the same resolver chain
// the proxy would use and reports the routing decision for the target.
type Resolve struct {
	ConfigPath string `kong:"arg,required,type='existingfile',help='Path to the configuration file.',name='config-path'"` //nolint: lll
	Hostname   string `kong:"arg,required,help='Hostname to resolve.'"`
	Port       uint16 `kong:"default='443',help='Port to use for the routing decision.'"`
}

func (r Resolve) Run(cli *CLI, version string) error {
	conf, err := utils.ReadConfig(r.ConfigPath)
	if err != nil {
		return fmt.Errorf("cannot parse config: %w", err)
	}

	log := makeLogger(conf)

	sharedCtx, cleanup, err := makeContext(conf, log, false)
	if err != nil {
		return err
	}

	defer cleanup()
	defer sharedCtx.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	addrs, err := sharedCtx.DNSResolve(ctx, r.Hostname, r.Port)
	if err != nil {
		return fmt.Errorf("cannot resolve %s: %w", r.Hostname, err)
	}

	for _, addr := range addrs {
		fmt.Println(addr.String()) //nolint: forbidigo
	}

	target := ssgate.DomainAddress(r.Hostname, r.Port)

	bypassed, err := sharedCtx.TargetBypassed(ctx, target)
	if err != nil {
		return fmt.Errorf("cannot evaluate routing for %s: %w", r.Hostname, err)
	}

	if bypassed {
		fmt.Println("routing: bypass") //nolint: forbidigo
	} else {
		fmt.Println("routing: proxy") //nolint: forbidigo
	}

	return nil
}
