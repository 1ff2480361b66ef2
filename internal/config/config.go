// Package config loads CLI configuration from environment variables, with an
// optional YAML file supplying values the environment leaves unset.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds everything the CLI needs to construct a client session.
type Config struct {
	// Session cookies. Both are required.
	PB   string `envconfig:"POE_PB" yaml:"p_b"`
	PLat string `envconfig:"POE_PLAT" yaml:"p_lat"`

	// FormKey is the pre-known signing secret. When empty the client
	// bootstraps one from the served script bundles on first use.
	FormKey string `envconfig:"POE_FORMKEY" yaml:"formkey"`

	BaseURL  string `envconfig:"POE_BASE_URL" yaml:"base_url"`
	LogLevel string `envconfig:"POE_LOG_LEVEL" yaml:"log_level"`

	// MetricsAddr, when set, exposes Prometheus metrics on that address.
	MetricsAddr string `envconfig:"POE_METRICS_ADDR" yaml:"metrics_addr"`
}

// Load reads configuration from the environment, then fills any still-empty
// fields from the YAML file at path (if given), then applies defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		var file Config
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		cfg.merge(file)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://poe.com"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.PB == "" || cfg.PLat == "" {
		return nil, fmt.Errorf("POE_PB and POE_PLAT session cookies are required")
	}
	return &cfg, nil
}

// merge fills empty fields from file-provided values. Environment wins.
func (c *Config) merge(file Config) {
	if c.PB == "" {
		c.PB = file.PB
	}
	if c.PLat == "" {
		c.PLat = file.PLat
	}
	if c.FormKey == "" {
		c.FormKey = file.FormKey
	}
	if c.BaseURL == "" {
		c.BaseURL = file.BaseURL
	}
	if c.LogLevel == "" {
		c.LogLevel = file.LogLevel
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = file.MetricsAddr
	}
}
