package cli

import (
	"fmt"

	"github.com/ssocks/ssgate/internal/utils"
)

type VerifyConfig struct {
	ConfigPath string `kong:"arg,required,type='existingfile',help='Path to the configuration file.',name='config-path'"` //nolint: lll
}

func (v VerifyConfig) Run(cli *CLI, version string) error {
	conf, err := utils.ReadConfig(v.ConfigPath)
	if err != nil {
		return fmt.Errorf("cannot parse config: %w", err)
	}

	fmt.Print(conf.String()) //nolint: forbidigo

	return nil
}
