package config

import (
	"bytes"
	"fmt"
	"strings"
)

type TypeHTTPPath struct {
	Value string
}

func (t *TypeHTTPPath) Set(value string) error {
	if !strings.HasPrefix(value, "/") {
		return fmt.Errorf("http path has to start with / (%s)", value)
	}

	t.Value = value

	return nil
}

func (t TypeHTTPPath) Get(defaultValue string) string {
	if t.Value == "" {
		return defaultValue
	}

	return t.Value
}

func (t *TypeHTTPPath) UnmarshalJSON(data []byte) error {
	return t.Set(string(bytes.Trim(data, `"`)))
}

func (t TypeHTTPPath) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Value + `"`), nil
}

func (t TypeHTTPPath) String() string {
	return t.Value
}
