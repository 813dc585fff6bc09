package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/units"
)

type TypeBytes struct {
	Value units.Base2Bytes
}

func (t *TypeBytes) Set(value string) error {
	// accept both '1mib' and '1MB' spellings
	normalized := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(value)), "IB", "iB")

	v, err := units.ParseBase2Bytes(normalized)
	if err != nil {
		return fmt.Errorf("value is not bytes (%s): %w", value, err)
	}

	if v < 0 {
		return fmt.Errorf("byte size has to be positive (%s)", value)
	}

	t.Value = v

	return nil
}

func (t TypeBytes) Get(defaultValue units.Base2Bytes) units.Base2Bytes {
	if t.Value == 0 {
		return defaultValue
	}

	return t.Value
}

func (t *TypeBytes) UnmarshalJSON(data []byte) error {
	return t.Set(string(bytes.Trim(data, `"`)))
}

func (t TypeBytes) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t TypeBytes) String() string {
	return t.Value.String()
}
