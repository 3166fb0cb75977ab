// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PrepPathway Contributors

// Package config loads server configuration from defaults, an optional
// YAML file, and command-line flags, in increasing order of precedence.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Session strategies.
const (
	// SessionStrategySignedToken issues opaque random tokens whose SHA-256
	// digest is stored server-side.
	SessionStrategySignedToken = "signed-token"
)

// Config holds the full server configuration.
type Config struct {
	// HTTPAddr is the listen address for the API server.
	HTTPAddr string `koanf:"http_addr"`

	// MetricsAddr is the listen address for the metrics/health server.
	MetricsAddr string `koanf:"metrics_addr"`

	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string `koanf:"database_url"`

	// SessionStrategy selects how sessions are issued. Only
	// "signed-token" is supported.
	SessionStrategy string `koanf:"session_strategy"`

	// SignInRoute is the path unauthenticated clients are directed to.
	SignInRoute string `koanf:"sign_in_route"`

	// SessionTTL is the session lifetime.
	SessionTTL time.Duration `koanf:"session_ttl"`

	// LogFormat is either "json" or "text".
	LogFormat string `koanf:"log_format"`
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		HTTPAddr:        ":8080",
		MetricsAddr:     ":9090",
		SessionStrategy: SessionStrategySignedToken,
		SignInRoute:     "/login",
		SessionTTL:      24 * time.Hour,
		LogFormat:       "json",
	}
}

// Load builds a Config from defaults, an optional YAML file, and flags.
// path may be empty to skip file loading. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	cfg := Default()

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		// Flag names use dashes (--http-addr); config keys use underscores.
		provider := posflag.ProviderWithValue(flags, ".", k, func(key, value string) (string, any) {
			return strings.ReplaceAll(key, "-", "_"), value
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_PARSE_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("http_addr cannot be empty")
	}
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url is required")
	}
	if !strings.HasPrefix(c.DatabaseURL, "postgres://") && !strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return oops.Code("CONFIG_INVALID").
			With("database_url", c.DatabaseURL).
			Errorf("database_url must use postgres:// or postgresql:// scheme")
	}
	if c.SessionStrategy != SessionStrategySignedToken {
		return oops.Code("CONFIG_INVALID").
			With("session_strategy", c.SessionStrategy).
			Errorf("unsupported session strategy %q", c.SessionStrategy)
	}
	if !strings.HasPrefix(c.SignInRoute, "/") {
		return oops.Code("CONFIG_INVALID").
			With("sign_in_route", c.SignInRoute).
			Errorf("sign_in_route must start with /")
	}
	if c.SessionTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("session_ttl must be positive")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log_format must be json or text")
	}
	return nil
}
