// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads blockguard configuration from an optional YAML file
// and command flags. Flags the operator set explicitly win over the file;
// the file wins over flag defaults.
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

// Runtime selects how the host runs the guard.
type Runtime string

// Supported runtimes.
const (
	RuntimeInProcess Runtime = "inprocess"
	RuntimeProcess   Runtime = "process"
)

// Error codes for configuration failures.
const (
	CodeLoadFailed = "CONFIG_LOAD_FAILED"
	CodeInvalid    = "CONFIG_INVALID"
)

// Default values.
const (
	DefaultLogFormat    = "json"
	DefaultLogLevel     = "info"
	DefaultRuntime      = RuntimeInProcess
	DefaultEventTimeout = 5 * time.Second
)

// Config is the complete blockguard configuration.
type Config struct {
	LogFormat       string        `koanf:"log-format"`
	LogLevel        string        `koanf:"log-level"`
	MetricsAddr     string        `koanf:"metrics-addr"`
	Runtime         Runtime       `koanf:"runtime"`
	PluginPath      string        `koanf:"plugin-path"`
	Manifest        string        `koanf:"manifest"`
	EventTimeout    time.Duration `koanf:"event-timeout"`
	ProtectedBlocks []string      `koanf:"protected-blocks"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		LogFormat:    DefaultLogFormat,
		LogLevel:     DefaultLogLevel,
		Runtime:      DefaultRuntime,
		EventTimeout: DefaultEventTimeout,
	}
}

// RegisterFlags adds one flag per configuration key to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("log-format", d.LogFormat, "log format (json, text)")
	fs.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	fs.String("metrics-addr", d.MetricsAddr, "metrics and health address (empty to disable)")
	fs.String("runtime", string(d.Runtime), "guard runtime (inprocess, process)")
	fs.String("plugin-path", d.PluginPath, "guard executable for the process runtime (defaults to this binary)")
	fs.String("manifest", d.Manifest, "path to plugin.yaml (defaults to the built-in manifest)")
	fs.Duration("event-timeout", d.EventTimeout, "maximum time the guard may take per event")
	fs.StringSlice("protected-blocks", nil, "block types to protect (replaces the default denylist)")
}

// Load reads path (if not empty) and then fs (if not nil) into a Config and
// validates it.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code(CodeLoadFailed).With("path", path).Wrapf(err, "load config file")
		}
	}
	if fs != nil {
		if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
			return nil, oops.Code(CodeLoadFailed).Wrapf(err, "load flags")
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code(CodeLoadFailed).Wrapf(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return invalid("log-format", c.LogFormat).
			Errorf("log-format must be 'json' or 'text', got %q", c.LogFormat)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log-level", c.LogLevel).
			Errorf("log-level must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	if c.Runtime != RuntimeInProcess && c.Runtime != RuntimeProcess {
		return invalid("runtime", string(c.Runtime)).
			Errorf("runtime must be 'inprocess' or 'process', got %q", c.Runtime)
	}
	if c.EventTimeout <= 0 {
		return invalid("event-timeout", c.EventTimeout.String()).
			Errorf("event-timeout must be positive")
	}
	for _, b := range c.ProtectedBlocks {
		if strings.TrimSpace(b) == "" {
			return invalid("protected-blocks", b).Errorf("protected block entries cannot be blank")
		}
	}
	return nil
}

func invalid(key, value string) oops.OopsErrorBuilder {
	return oops.Code(CodeInvalid).With("key", key).With("value", value)
}
