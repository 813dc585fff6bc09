package config

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

type TypeDuration struct {
	Value time.Duration
}

func (t *TypeDuration) Set(value string) error {
	if seconds, err := strconv.ParseUint(value, 10, 32); err == nil {
		t.Value = time.Duration(seconds) * time.Second

		return nil
	}

	v, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("value is not duration (%s): %w", value, err)
	}

	if v < 0 {
		return fmt.Errorf("duration has to be positive (%s)", value)
	}

	t.Value = v

	return nil
}

func (t TypeDuration) Get(defaultValue time.Duration) time.Duration {
	if t.Value == 0 {
		return defaultValue
	}

	return t.Value
}

func (t *TypeDuration) UnmarshalJSON(data []byte) error {
	return t.Set(string(bytes.Trim(data, `"`)))
}

func (t TypeDuration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t TypeDuration) String() string {
	return t.Value.String()
}
