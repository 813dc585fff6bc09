package config

import (
	"bytes"
	"fmt"
	"net"
)

type TypeHostPort struct {
	Value string
}

func (t *TypeHostPort) Set(value string) error {
	if _, _, err := net.SplitHostPort(value); err != nil {
		return fmt.Errorf("value is not host:port (%s): %w", value, err)
	}

	t.Value = value

	return nil
}

func (t TypeHostPort) Get(defaultValue string) string {
	if t.Value == "" {
		return defaultValue
	}

	return t.Value
}

func (t *TypeHostPort) UnmarshalJSON(data []byte) error {
	return t.Set(string(bytes.Trim(data, `"`)))
}

func (t TypeHostPort) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Value + `"`), nil
}

func (t TypeHostPort) String() string {
	return t.Value
}
