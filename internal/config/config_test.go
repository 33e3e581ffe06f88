// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/blockguard/internal/config"
	"github.com/holomush/blockguard/pkg/errutil"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blockguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("", newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, config.RuntimeInProcess, cfg.Runtime)
	assert.Equal(t, 5*time.Second, cfg.EventTimeout)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Empty(t, cfg.ProtectedBlocks)
}

func TestLoad_NoSources(t *testing.T) {
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_FileOverridesFlagDefaults(t *testing.T) {
	path := writeConfig(t, `
log-format: text
log-level: debug
runtime: process
event-timeout: 250ms
protected-blocks:
  - minecraft:beacon
  - minecraft:end_portal_frame
`)

	cfg, err := config.Load(path, newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.RuntimeProcess, cfg.Runtime)
	assert.Equal(t, 250*time.Millisecond, cfg.EventTimeout)
	assert.Equal(t, []string{"minecraft:beacon", "minecraft:end_portal_frame"}, cfg.ProtectedBlocks)
}

func TestLoad_ExplicitFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "log-format: text\nmetrics-addr: 127.0.0.1:9100\n")

	cfg, err := config.Load(path, newFlags(t,
		"--log-format=json",
		"--protected-blocks=minecraft:beacon,minecraft:bedrock",
	))
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "127.0.0.1:9100", cfg.MetricsAddr)
	assert.Equal(t, []string{"minecraft:beacon", "minecraft:bedrock"}, cfg.ProtectedBlocks)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	errutil.AssertErrorCode(t, err, config.CodeLoadFailed)
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := config.Load("", newFlags(t, "--runtime=wasm"))
	errutil.AssertErrorCode(t, err, config.CodeInvalid)
	errutil.AssertErrorContext(t, err, "key", "runtime")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		key    string
	}{
		{"log format", func(c *config.Config) { c.LogFormat = "xml" }, "log-format"},
		{"log level", func(c *config.Config) { c.LogLevel = "trace" }, "log-level"},
		{"runtime", func(c *config.Config) { c.Runtime = "docker" }, "runtime"},
		{"zero timeout", func(c *config.Config) { c.EventTimeout = 0 }, "event-timeout"},
		{"blank block", func(c *config.Config) { c.ProtectedBlocks = []string{"minecraft:stone", " "} }, "protected-blocks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			errutil.AssertErrorCode(t, err, config.CodeInvalid)
			errutil.AssertErrorContext(t, err, "key", tt.key)
		})
	}
}

func TestConfig_ValidateAcceptsUppercaseLevel(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "WARN"
	assert.NoError(t, cfg.Validate())
}
