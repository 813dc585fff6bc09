package config

import (
	"bytes"
	"fmt"
	"strings"
)

// DNSMode selects the generic resolver backend.
type DNSMode int

const (
	// DNSModeSystem asks the system DNS configuration (default).
	DNSModeSystem DNSMode = iota

	// DNSModeDoH uses DNS-over-HTTPS.
	DNSModeDoH
)

type TypeDNSMode struct {
	Value DNSMode
}

func (t *TypeDNSMode) Set(value string) error {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "system", "plain", "":
		t.Value = DNSModeSystem
	case "doh", "dns-over-https":
		t.Value = DNSModeDoH
	default:
		return fmt.Errorf("unknown dns mode %q, expected 'system' or 'doh'", value)
	}

	return nil
}

func (t *TypeDNSMode) UnmarshalJSON(data []byte) error {
	return t.Set(string(bytes.Trim(data, `"`)))
}

func (t TypeDNSMode) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t TypeDNSMode) String() string {
	if t.Value == DNSModeDoH {
		return "doh"
	}

	return "system"
}
