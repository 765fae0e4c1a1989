package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := LoadConfig()
	assert.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "relay_routing.json", cfg.Relay.StatePath)
	assert.Equal(t, 5, cfg.Relay.ProbeTimeoutSeconds)
	assert.Empty(t, cfg.Relay.MinGatewayVersion)
	assert.Contains(t, cfg.Store.DSN, "relay.db")
	assert.Equal(t, 10.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	os.Clearenv()
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_ENV", "test")
	t.Setenv("RELAY_STATE_PATH", "/tmp/routing.json")
	t.Setenv("RELAY_PROBE_TIMEOUT_SECONDS", "2")
	t.Setenv("RELAY_MIN_GATEWAY_VERSION", "1.2.0")
	t.Setenv("STORE_DSN", "file::memory:?cache=shared")

	cfg, err := LoadConfig()
	assert.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "test", cfg.Server.Env)
	assert.Equal(t, "/tmp/routing.json", cfg.Relay.StatePath)
	assert.Equal(t, 2, cfg.Relay.ProbeTimeoutSeconds)
	assert.Equal(t, "1.2.0", cfg.Relay.MinGatewayVersion)
	assert.Equal(t, "file::memory:?cache=shared", cfg.Store.DSN)
}
