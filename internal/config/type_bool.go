package config

import (
	"bytes"
	"fmt"
	"strconv"
)

type TypeBool struct {
	Value bool
	set   bool
}

func (t *TypeBool) Set(value string) error {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("value is not bool (%s): %w", value, err)
	}

	t.Value = v
	t.set = true

	return nil
}

func (t TypeBool) Get(defaultValue bool) bool {
	if !t.set {
		return defaultValue
	}

	return t.Value
}

func (t *TypeBool) UnmarshalJSON(data []byte) error {
	return t.Set(string(bytes.Trim(data, `"`)))
}

func (t TypeBool) MarshalJSON() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeBool) String() string {
	return strconv.FormatBool(t.Value)
}
