package utils

import (
	"fmt"
	"os"

	"github.com/ssocks/ssgate/internal/config"
)

// ReadConfig loads and validates a TOML config file.
func ReadConfig(path string) (*config.Config, error) {
	rawData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}

	conf, err := config.Parse(rawData)
	if err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	return conf, nil
}
