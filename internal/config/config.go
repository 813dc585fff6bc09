package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml"
)

type Optional struct {
	Enabled TypeBool `json:"enabled"`
}

// UpstreamConfig describes a single ss upstream.
type UpstreamConfig struct {
	Address TypeHostPort `json:"address"`
	Cipher  TypeCipher   `json:"cipher"`
}

type Config struct {
	Debug     TypeBool         `json:"debug"`
	Role      TypeRole         `json:"role"`
	IPv6First TypeBool         `json:"ipv6First"`
	ACL       string           `json:"acl"`
	Upstreams []UpstreamConfig `json:"upstreams"`
	Defense   struct {
		AntiReplay struct {
			MaxSize   TypeBytes     `json:"maxSize"`
			ErrorRate TypeErrorRate `json:"errorRate"`
		} `json:"antiReplay"`
		RateLimit struct {
			Optional

			PerSecond TypeConcurrency `json:"perSecond"`
			Burst     TypeConcurrency `json:"burst"`
		} `json:"rateLimit"`
	} `json:"defense"`
	Network struct {
		DNS struct {
			Mode     TypeDNSMode  `json:"mode"`
			DOHIP    TypeIP       `json:"dohIp"`
			LocalDNS TypeHostPort `json:"localDns"`
			Timeout  TypeDuration `json:"timeout"`
		} `json:"dns"`
	} `json:"network"`
	Stats struct {
		StatsD struct {
			Optional

			Address      TypeHostPort     `json:"address"`
			MetricPrefix TypeMetricPrefix `json:"metricPrefix"`
		} `json:"statsd"`
		Prometheus struct {
			Optional

			BindTo       TypeHostPort     `json:"bindTo"`
			HTTPPath     TypeHTTPPath     `json:"httpPath"`
			MetricPrefix TypeMetricPrefix `json:"metricPrefix"`
		} `json:"prometheus"`
	} `json:"stats"`
}

func (c *Config) Validate() error {
	for i, upstream := range c.Upstreams {
		if upstream.Address.Get("") == "" {
			return fmt.Errorf("upstream %d has no address", i)
		}
	}

	if c.Network.DNS.Mode.Value == DNSModeDoH && c.Network.DNS.DOHIP.Value == nil {
		return fmt.Errorf("network.dns.dohIp is required when dns mode is doh")
	}

	if c.Defense.RateLimit.Enabled.Get(false) {
		if c.Defense.RateLimit.PerSecond.Value == 0 {
			return fmt.Errorf("defense.rateLimit.perSecond must be > 0 when rate limiting is enabled")
		}

		if c.Defense.RateLimit.Burst.Value == 0 {
			return fmt.Errorf("defense.rateLimit.burst must be > 0 when rate limiting is enabled")
		}
	}

	if c.Stats.Prometheus.Enabled.Get(false) && c.Stats.Prometheus.BindTo.Get("") == "" {
		return fmt.Errorf("stats.prometheus.bindTo is required when prometheus is enabled")
	}

	if c.Stats.StatsD.Enabled.Get(false) && c.Stats.StatsD.Address.Get("") == "" {
		return fmt.Errorf("stats.statsd.address is required when statsd is enabled")
	}

	return nil
}

func (c *Config) String() string {
	buf := &bytes.Buffer{}
	encoder := json.NewEncoder(buf)

	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(c); err != nil {
		return "{}"
	}

	return buf.String()
}

// Parse reads a TOML document. The document is round-tripped through
// JSON so the self-parsing config types see textual values. Keys are
// normalized on the way: 'anti-replay' and 'anti_replay' both address
// the antiReplay section.
func Parse(rawData []byte) (*Config, error) {
	tree, err := toml.LoadBytes(rawData)
	if err != nil {
		return nil, fmt.Errorf("cannot parse toml: %w", err)
	}

	jsonData, err := json.Marshal(normalizeTree(tree.ToMap()))
	if err != nil {
		return nil, fmt.Errorf("cannot convert config to json: %w", err)
	}

	conf := &Config{}
	if err := json.Unmarshal(jsonData, conf); err != nil {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return conf, nil
}

// normalizeTree strips '-' and '_' from map keys so they match the
// struct tags case-insensitively.
func normalizeTree(value interface{}) interface{} {
	switch typed := value.(type) {
	case map[string]interface{}:
		rv := make(map[string]interface{}, len(typed))
		for key, inner := range typed {
			key = strings.ReplaceAll(key, "-", "")
			key = strings.ReplaceAll(key, "_", "")
			rv[key] = normalizeTree(inner)
		}

		return rv
	case []map[string]interface{}:
		rv := make([]interface{}, len(typed))
		for i, inner := range typed {
			rv[i] = normalizeTree(inner)
		}

		return rv
	case []interface{}:
		for i, inner := range typed {
			typed[i] = normalizeTree(inner)
		}

		return typed
	}

	return value
}
