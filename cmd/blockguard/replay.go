// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/holomush/blockguard/internal/config"
	"github.com/holomush/blockguard/internal/guard"
	"github.com/holomush/blockguard/internal/host"
	"github.com/holomush/blockguard/internal/logging"
	"github.com/holomush/blockguard/internal/manifest"
	"github.com/holomush/blockguard/internal/observability"
	"github.com/holomush/blockguard/pkg/errutil"
	"github.com/holomush/blockguard/pkg/event"
)

// Script is a recorded sequence of events to replay through the guard.
type Script struct {
	Events []ScriptEvent `yaml:"events"`
}

// ScriptEvent is one scripted event. Raw, when set, is sent verbatim
// instead of the JSON encoding of Payload.
type ScriptEvent struct {
	Type    string  `yaml:"type"`
	Payload any     `yaml:"payload"`
	Raw     *string `yaml:"raw"`
}

func (e ScriptEvent) payload() ([]byte, error) {
	if e.Raw != nil {
		return []byte(*e.Raw), nil
	}
	if e.Payload == nil {
		return nil, nil
	}
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, oops.With("type", e.Type).Wrapf(err, "encode scripted payload")
	}
	return data, nil
}

// LoadScript reads a replay script.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is a CLI argument
	if err != nil {
		return nil, oops.With("path", path).Wrapf(err, "read script")
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, oops.With("path", path).Wrapf(err, "parse script")
	}
	return &s, nil
}

// NewReplayCmd creates the replay subcommand.
func NewReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Replay a script of events through the guard",
		Long: `Start a host with the configured runtime, deliver each scripted event
to the guard and print the outcome together with the notifications the
guard sent. Guard log lines go to the log on stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runReplay(cmd.Context(), cfg, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func runReplay(ctx context.Context, cfg *config.Config, scriptPath string, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.Setup("blockguard", version, cfg.LogFormat, cfg.LogLevel, errOut)

	script, err := LoadScript(scriptPath)
	if err != nil {
		return err
	}

	m := manifest.Default()
	if cfg.Manifest != "" {
		if m, err = manifest.Load(cfg.Manifest); err != nil {
			return err
		}
	}
	protected := cfg.ProtectedBlocks
	if len(protected) == 0 {
		protected = m.ProtectedBlocks
	}

	rt, err := newRuntime(ctx, cfg, protected)
	if err != nil {
		return err
	}

	opts := []host.Option{
		host.WithManifest(m),
		host.WithLogger(logger),
		host.WithTimeout(cfg.EventTimeout),
		host.WithMessenger(&consoleMessenger{w: out}),
	}

	var (
		h   *host.Host
		obs *observability.Server
	)
	if cfg.MetricsAddr != "" {
		obs = observability.NewServer(cfg.MetricsAddr, func() bool { return h.Ready() }, logger)
		opts = append(opts, host.WithMetrics(host.NewMetrics(obs.Registry())))
	}

	h, err = host.New(rt, opts...)
	if err != nil {
		_ = rt.Close()
		return err
	}

	if obs != nil {
		if _, err := obs.Start(); err != nil {
			_ = rt.Close()
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := obs.Stop(stopCtx); err != nil {
				errutil.LogError(logger, "observability server shutdown failed", err)
			}
		}()
	}

	if err := h.Start(ctx); err != nil {
		_ = h.Stop(ctx)
		return err
	}
	defer func() {
		if err := h.Stop(ctx); err != nil {
			errutil.LogError(logger, "guard shutdown failed", err)
		}
	}()

	for i, ev := range script.Events {
		replayEvent(ctx, h, logger, out, i+1, ev)
	}
	printSummary(out, h.Counts())
	return nil
}

func newRuntime(ctx context.Context, cfg *config.Config, protected []string) (host.Runtime, error) {
	if cfg.Runtime == config.RuntimeInProcess {
		return host.NewInProcess(guard.NewGuest(guard.WithProtectedBlocks(protected...))), nil
	}

	path := cfg.PluginPath
	if path == "" {
		self, err := os.Executable()
		if err != nil {
			return nil, oops.Wrapf(err, "locate blockguard executable")
		}
		path = self
	}
	args := []string{pluginCommand}
	if len(protected) > 0 {
		args = append(args, "--protected-blocks="+strings.Join(protected, ","))
	}
	return host.StartProcess(ctx, host.ProcessConfig{Path: path, Args: args})
}

func replayEvent(ctx context.Context, h *host.Host, logger *slog.Logger, out io.Writer, n int, ev ScriptEvent) {
	fmt.Fprintf(out, "> #%d %s\n", n, ev.Type)

	payload, err := ev.payload()
	if err != nil {
		errutil.LogError(logger, "skipping scripted event", err, "index", n)
		fmt.Fprintf(out, "< #%d invalid script entry\n", n)
		return
	}

	d, err := h.Deliver(ctx, event.Tag(ev.Type), payload)
	fmt.Fprintf(out, "< #%d %s\n", n, describe(d, err))
}

func describe(d host.Delivery, err error) string {
	var b strings.Builder
	switch {
	case d.Skipped:
		b.WriteString("skipped")
	case d.Outcome.Cancelled:
		b.WriteString("cancelled")
	default:
		b.WriteString("allowed")
	}
	if d.Outcome.Modifications != nil {
		mods, _ := json.Marshal(d.Outcome.Modifications)
		b.WriteString(" modifications=")
		b.Write(mods)
	}
	if err != nil {
		b.WriteString(" (guard error: ")
		b.WriteString(err.Error())
		b.WriteString(")")
	}
	return b.String()
}

func printSummary(out io.Writer, counts map[event.Tag]host.TagCounts) {
	tags := make([]event.Tag, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	slices.Sort(tags)

	fmt.Fprintln(out, "summary:")
	for _, tag := range tags {
		c := counts[tag]
		fmt.Fprintf(out, "  %s handled=%d cancelled=%d\n", tag, c.Handled, c.Cancelled)
	}
}

// consoleMessenger prints player notifications.
type consoleMessenger struct {
	w io.Writer
}

func (m *consoleMessenger) Notify(_ context.Context, playerUUID, message string) error {
	_, err := fmt.Fprintf(m.w, "  notify %s: %s\n", playerUUID, message)
	return err
}
