package config

import (
	"bytes"

	"github.com/ssocks/ssgate/ssgate"
)

type TypeCipher struct {
	Value ssgate.CipherKind
}

func (t *TypeCipher) Set(value string) error {
	kind, err := ssgate.ParseCipherKind(value)
	if err != nil {
		return err //nolint: wrapcheck
	}

	t.Value = kind

	return nil
}

func (t TypeCipher) Get(defaultValue ssgate.CipherKind) ssgate.CipherKind {
	if t.Value == ssgate.CipherUnknown {
		return defaultValue
	}

	return t.Value
}

func (t *TypeCipher) UnmarshalJSON(data []byte) error {
	return t.Set(string(bytes.Trim(data, `"`)))
}

func (t TypeCipher) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t TypeCipher) String() string {
	return t.Value.String()
}
