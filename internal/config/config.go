// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package config loads process configuration from defaults, an optional
// YAML file, and command-line flags, in that order of precedence.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds the full process configuration.
type Config struct {
	HTTPAddr    string        `koanf:"http-addr"`
	MetricsAddr string        `koanf:"metrics-addr"`
	DatabaseURL string        `koanf:"database-url"`
	TokenSecret string        `koanf:"token-secret"`
	TokenTTL    time.Duration `koanf:"token-ttl"`
	TokenLeeway time.Duration `koanf:"token-leeway"`
	LogFormat   string        `koanf:"log-format"`
	TLSCert     string        `koanf:"tls-cert"`
	TLSKey      string        `koanf:"tls-key"`
}

// Defaults for everything that has a sensible one. The token secret and
// database URL have no defaults; they come from file, flags, or env.
var defaults = map[string]any{
	"http-addr":    "127.0.0.1:8080",
	"metrics-addr": "127.0.0.1:9100",
	"token-ttl":    15 * time.Minute,
	"token-leeway": time.Second,
	"log-format":   "json",
}

// Environment variable fallbacks for secrets that should stay out of
// config files and process listings.
const (
	envDatabaseURL = "DATABASE_URL"
	envTokenSecret = "GATEHOUSE_TOKEN_SECRET"
)

// Load builds a Config from defaults, then the YAML file at path (if
// non-empty), then the given flag set. Environment variables fill the
// database URL and token secret when nothing else set them.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("key", key).Wrap(err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_INVALID").
				With("operation", "load config file").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_INVALID").
				With("operation", "load flags").
				Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("operation", "unmarshal config").Wrap(err)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv(envDatabaseURL)
	}
	if cfg.TokenSecret == "" {
		cfg.TokenSecret = os.Getenv(envTokenSecret)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration can actually run a server.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("http-addr is required")
	}
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database-url is required (flag, file, or %s)", envDatabaseURL)
	}
	if c.TokenSecret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("token-secret is required (config file or %s)", envTokenSecret)
	}
	if c.TokenTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("token-ttl must be positive, got %s", c.TokenTTL)
	}
	if c.TokenLeeway < 0 {
		return oops.Code("CONFIG_INVALID").Errorf("token-leeway must be non-negative, got %s", c.TokenLeeway)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log-format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return oops.Code("CONFIG_INVALID").Errorf("tls-cert and tls-key must be set together")
	}
	return nil
}
