package config

import (
	"bytes"
	"fmt"
	"net"
)

type TypeIP struct {
	Value net.IP
}

func (t *TypeIP) Set(value string) error {
	ip := net.ParseIP(value)
	if ip == nil {
		return fmt.Errorf("value is not an IP address (%s)", value)
	}

	t.Value = ip

	return nil
}

func (t *TypeIP) UnmarshalJSON(data []byte) error {
	return t.Set(string(bytes.Trim(data, `"`)))
}

func (t TypeIP) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t TypeIP) String() string {
	if t.Value == nil {
		return ""
	}

	return t.Value.String()
}
