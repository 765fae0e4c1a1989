package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Relay     RelayConfig     `mapstructure:"relay"`
	Store     StoreConfig     `mapstructure:"store"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port    string   `mapstructure:"port"`
	Env     string   `mapstructure:"env"`
	APIKeys []string `mapstructure:"api_keys"`
}

// RelayConfig holds the daemon-level knobs for the routing shim. The routed
// gateway URL and provider set themselves live in the configstore file, not
// here: they are mutated at runtime through the settings flow.
type RelayConfig struct {
	// StatePath is the JSON file holding the persisted routing configuration.
	StatePath string `mapstructure:"state_path"`
	// ProbeTimeoutSeconds bounds the single-shot gateway reachability check.
	ProbeTimeoutSeconds int `mapstructure:"probe_timeout_seconds"`
	// MinGatewayVersion, when set, is compared against the version the
	// gateway advertises during the probe.
	MinGatewayVersion string `mapstructure:"min_gateway_version"`
}

type StoreConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Default Values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("relay.state_path", filepath.Join(".", "relay_routing.json"))
	v.SetDefault("relay.probe_timeout_seconds", 5)
	v.SetDefault("relay.min_gateway_version", "")
	v.SetDefault("store.dsn", "file:relay.db?cache=shared&mode=rwc&_journal_mode=WAL&_busy_timeout=5000")
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)

	// Environment Variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &cfg, nil
}
