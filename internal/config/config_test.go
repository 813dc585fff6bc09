package config_test

import (
	"testing"
	"time"

	"github.com/alecthomas/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssocks/ssgate/internal/config"
	"github.com/ssocks/ssgate/ssgate"
)

const fullDocument = `
debug = true
role = "server"
ipv6-first = true
acl = "/etc/ssgate/rules.acl"

[[upstreams]]
address = "198.51.100.1:8388"
cipher = "aes-256-gcm"

[[upstreams]]
address = "198.51.100.2:8388"
cipher = "chacha20-ietf-poly1305"

[defense.anti-replay]
max-size = "1mib"
error-rate = 0.001

[defense.rate-limit]
enabled = true
per-second = 10
burst = 20

[network.dns]
mode = "doh"
doh-ip = "9.9.9.9"
local-dns = "127.0.0.1:5353"
timeout = "3s"

[stats.statsd]
enabled = true
address = "127.0.0.1:8125"
metric-prefix = "ssgate"

[stats.prometheus]
enabled = true
bind-to = "127.0.0.1:9401"
http-path = "/metrics"
`

func TestParse_FullDocument(t *testing.T) {
	conf, err := config.Parse([]byte(fullDocument))
	require.NoError(t, err)

	assert.True(t, conf.Debug.Get(false))
	assert.Equal(t, ssgate.RoleServer, conf.Role.Value)
	assert.True(t, conf.IPv6First.Get(false))
	assert.Equal(t, "/etc/ssgate/rules.acl", conf.ACL)

	require.Len(t, conf.Upstreams, 2)
	assert.Equal(t, "198.51.100.1:8388", conf.Upstreams[0].Address.Value)
	assert.Equal(t, ssgate.CipherAES256GCM, conf.Upstreams[0].Cipher.Value)
	assert.Equal(t, ssgate.CipherChaCha20Poly1305, conf.Upstreams[1].Cipher.Value)

	assert.Equal(t, units.Mebibyte, conf.Defense.AntiReplay.MaxSize.Value)
	assert.InDelta(t, 0.001, conf.Defense.AntiReplay.ErrorRate.Value, 1e-9)

	assert.True(t, conf.Defense.RateLimit.Enabled.Get(false))
	assert.EqualValues(t, 10, conf.Defense.RateLimit.PerSecond.Value)
	assert.EqualValues(t, 20, conf.Defense.RateLimit.Burst.Value)

	assert.Equal(t, config.DNSModeDoH, conf.Network.DNS.Mode.Value)
	assert.Equal(t, "9.9.9.9", conf.Network.DNS.DOHIP.String())
	assert.Equal(t, "127.0.0.1:5353", conf.Network.DNS.LocalDNS.Value)
	assert.Equal(t, 3*time.Second, conf.Network.DNS.Timeout.Value)

	assert.True(t, conf.Stats.StatsD.Enabled.Get(false))
	assert.True(t, conf.Stats.Prometheus.Enabled.Get(false))
	assert.Equal(t, "/metrics", conf.Stats.Prometheus.HTTPPath.Value)
}

func TestParse_EmptyDocumentIsValid(t *testing.T) {
	conf, err := config.Parse([]byte(""))
	require.NoError(t, err)

	assert.False(t, conf.Debug.Get(false))
	assert.Equal(t, ssgate.RoleServer, conf.Role.Value)
	assert.Empty(t, conf.Upstreams)
}

func TestParse_ClientRoleSpellings(t *testing.T) {
	for _, spelling := range []string{"client", "local"} {
		conf, err := config.Parse([]byte(`role = "` + spelling + `"`))

		require.NoError(t, err, spelling)
		assert.Equal(t, ssgate.RoleClient, conf.Role.Value)
	}
}

func TestParse_BrokenToml(t *testing.T) {
	_, err := config.Parse([]byte("role = [broken"))

	assert.Error(t, err)
}

func TestParse_UnknownCipher(t *testing.T) {
	document := `
[[upstreams]]
address = "198.51.100.1:8388"
cipher = "rot13"
`

	_, err := config.Parse([]byte(document))
	assert.Error(t, err)
}

func TestValidate_UpstreamNeedsAddress(t *testing.T) {
	document := `
[[upstreams]]
cipher = "aes-256-gcm"
`

	_, err := config.Parse([]byte(document))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no address")
}

func TestValidate_DoHNeedsIP(t *testing.T) {
	_, err := config.Parse([]byte("[network.dns]\nmode = \"doh\"\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dohIp")
}

func TestValidate_RateLimitNeedsBudget(t *testing.T) {
	_, err := config.Parse([]byte("[defense.rate-limit]\nenabled = true\n"))

	assert.Error(t, err)
}

func TestValidate_PrometheusNeedsBindTo(t *testing.T) {
	_, err := config.Parse([]byte("[stats.prometheus]\nenabled = true\n"))

	assert.Error(t, err)
}

func TestConfig_StringIsJSON(t *testing.T) {
	conf, err := config.Parse([]byte(fullDocument))
	require.NoError(t, err)

	assert.Contains(t, conf.String(), `"role":"server"`)
}
