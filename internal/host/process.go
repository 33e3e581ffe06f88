// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package host

import (
	"context"
	"os"
	"os/exec"
	"time"

	hashiplug "github.com/hashicorp/go-plugin"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/holomush/blockguard/pkg/pluginsdk"
)

// Defaults for connecting to a guard process.
const (
	DefaultStartAttempts = 3
	DefaultStartBackoff  = 100 * time.Millisecond
)

// PluginClient wraps go-plugin client for testability.
type PluginClient interface {
	// Client returns the RPC client protocol, starting the process if needed.
	Client() (hashiplug.ClientProtocol, error)
	// Kill terminates the plugin process.
	Kill()
}

// ClientFactory creates plugin clients.
type ClientFactory interface {
	// NewClient creates a client that runs execPath with args.
	NewClient(execPath string, args []string) PluginClient
}

// DefaultClientFactory creates real go-plugin clients.
type DefaultClientFactory struct{}

// NewClient creates a real go-plugin client speaking net/rpc.
func (DefaultClientFactory) NewClient(execPath string, args []string) PluginClient {
	return hashiplug.NewClient(&hashiplug.ClientConfig{
		HandshakeConfig:  pluginsdk.HandshakeConfig,
		Plugins:          pluginsdk.PluginMap,
		Cmd:              exec.Command(execPath, args...), // #nosec G204 -- path and args come from operator config
		AllowedProtocols: []hashiplug.Protocol{hashiplug.ProtocolNetRPC},
	})
}

// ProcessConfig describes how to launch a guard process.
type ProcessConfig struct {
	// Path is the guard executable.
	Path string
	// Args are passed to the executable.
	Args []string
	// Factory creates the go-plugin client. Defaults to DefaultClientFactory.
	Factory ClientFactory
	// Attempts bounds connection attempts. Defaults to DefaultStartAttempts.
	Attempts uint64
	// Backoff is the first retry delay; it doubles per attempt.
	// Defaults to DefaultStartBackoff.
	Backoff time.Duration
}

// Process is a guard running in a child process.
type Process struct {
	pluginsdk.Guest
	client PluginClient
}

var _ Runtime = (*Process)(nil)

// StartProcess launches the guard executable and connects to it, retrying
// with exponential backoff when the process fails to come up.
func StartProcess(ctx context.Context, cfg ProcessConfig) (*Process, error) {
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, oops.Code(CodePluginStart).With("path", cfg.Path).Wrapf(err, "guard executable not accessible")
	}
	if cfg.Factory == nil {
		cfg.Factory = DefaultClientFactory{}
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = DefaultStartAttempts
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultStartBackoff
	}

	var proc *Process
	backoff := retry.WithMaxRetries(cfg.Attempts-1, retry.NewExponential(cfg.Backoff))
	err := retry.Do(ctx, backoff, func(_ context.Context) error {
		client := cfg.Factory.NewClient(cfg.Path, cfg.Args)

		protocol, err := client.Client()
		if err != nil {
			client.Kill()
			return retry.RetryableError(err)
		}

		raw, err := protocol.Dispense(pluginsdk.PluginName)
		if err != nil {
			client.Kill()
			return retry.RetryableError(err)
		}

		guest, ok := raw.(pluginsdk.Guest)
		if !ok {
			client.Kill()
			return oops.Errorf("dispensed %T does not implement Guest", raw)
		}

		proc = &Process{Guest: guest, client: client}
		return nil
	})
	if err != nil {
		return nil, oops.Code(CodePluginStart).
			With("path", cfg.Path).
			With("attempts", cfg.Attempts).
			Wrapf(err, "start guard process")
	}
	return proc, nil
}

// Close terminates the guard process.
func (p *Process) Close() error {
	p.client.Kill()
	return nil
}
