package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ssocks/ssgate/ssgate"
)

type TypeRole struct {
	Value ssgate.Role
}

func (t *TypeRole) Set(value string) error {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "server", "remote", "":
		t.Value = ssgate.RoleServer
	case "client", "local":
		t.Value = ssgate.RoleClient
	default:
		return fmt.Errorf("unknown role %q, expected 'server' or 'client'", value)
	}

	return nil
}

func (t *TypeRole) UnmarshalJSON(data []byte) error {
	return t.Set(string(bytes.Trim(data, `"`)))
}

func (t TypeRole) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t TypeRole) String() string {
	return t.Value.String()
}
