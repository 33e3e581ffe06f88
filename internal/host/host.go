// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package host drives a block guard: it loads it through a Runtime, runs
// its lifecycle, delivers subscribed events as envelopes and applies the
// commands the guard sends back.
package host

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/blockguard/internal/logging"
	"github.com/holomush/blockguard/internal/manifest"
	"github.com/holomush/blockguard/pkg/errutil"
	"github.com/holomush/blockguard/pkg/event"
	"github.com/holomush/blockguard/pkg/pluginsdk"
)

// DefaultEventTimeout is the default timeout for guard event handling.
const DefaultEventTimeout = 5 * time.Second

// Messenger delivers guard notifications to players.
type Messenger interface {
	Notify(ctx context.Context, playerUUID, message string) error
}

// Delivery is the result of offering one event to the guard.
type Delivery struct {
	ID      ulid.ULID
	Tag     event.Tag
	Outcome event.Outcome
	// Skipped is set when the guard is not subscribed to Tag.
	Skipped bool
	// Commands are the guard's side effects, already applied.
	Commands []event.Command
}

// TagCounts counts deliveries of one tag.
type TagCounts struct {
	Handled   uint64
	Cancelled uint64
}

// Host manages one guard.
type Host struct {
	runtime   Runtime
	manifest  *manifest.Manifest
	subs      *Subscriptions
	messenger Messenger
	logger    *slog.Logger
	guardLog  *slog.Logger
	timeout   time.Duration
	tracer    trace.Tracer
	metrics   *Metrics

	mu      sync.RWMutex
	started bool
	closed  bool
	counts  map[event.Tag]*TagCounts
}

// Option configures a Host.
type Option func(*Host)

// WithManifest sets the guard's manifest. Defaults to manifest.Default().
func WithManifest(m *manifest.Manifest) Option {
	return func(h *Host) {
		if m != nil {
			h.manifest = m
		}
	}
}

// WithMessenger sets where notifications go. Without one they are dropped.
func WithMessenger(m Messenger) Option {
	return func(h *Host) {
		h.messenger = m
	}
}

// WithLogger sets the host logger. Guard log lines go to it with a plugin
// attribute.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithTimeout bounds how long the guard may take per call.
func WithTimeout(d time.Duration) Option {
	return func(h *Host) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithTracer sets the tracer for delivery spans.
func WithTracer(t trace.Tracer) Option {
	return func(h *Host) {
		if t != nil {
			h.tracer = t
		}
	}
}

// WithMetrics records delivery metrics.
func WithMetrics(m *Metrics) Option {
	return func(h *Host) {
		h.metrics = m
	}
}

// New creates a host for the guard behind rt. The manifest's event
// patterns decide which tags are delivered.
func New(rt Runtime, opts ...Option) (*Host, error) {
	if rt == nil {
		return nil, oops.Errorf("host: runtime cannot be nil")
	}
	h := &Host{
		runtime:  rt,
		manifest: manifest.Default(),
		logger:   slog.Default(),
		timeout:  DefaultEventTimeout,
		tracer:   otel.Tracer("blockguard/host"),
		counts:   make(map[event.Tag]*TagCounts),
	}
	for _, opt := range opts {
		opt(h)
	}

	subs, err := NewSubscriptions(h.manifest.Events)
	if err != nil {
		return nil, oops.With("plugin", h.manifest.Name).Wrap(err)
	}
	h.subs = subs
	h.guardLog = h.logger.With("plugin", h.manifest.Name)
	return h, nil
}

// Manifest returns the guard's manifest.
func (h *Host) Manifest() *manifest.Manifest {
	return h.manifest
}

// Start runs the guard's init and enable hooks.
func (h *Host) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHostClosed
	}
	if h.started {
		return ErrAlreadyStarted
	}

	for _, phase := range []pluginsdk.Phase{pluginsdk.PhaseInit, pluginsdk.PhaseEnable} {
		if err := h.lifecycle(ctx, phase); err != nil {
			return err
		}
	}
	h.started = true
	h.logger.Info("guard started",
		"plugin", h.manifest.Name,
		"version", h.manifest.Version,
		"events", h.subs.Patterns())
	return nil
}

// Ready reports whether the host is delivering events.
func (h *Host) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.started && !h.closed
}

// Stop runs the guard's disable hook and closes the runtime. Stop is
// idempotent.
func (h *Host) Stop(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	var disableErr error
	if h.started {
		disableErr = h.lifecycle(ctx, pluginsdk.PhaseDisable)
	}
	if err := h.runtime.Close(); err != nil {
		return oops.With("plugin", h.manifest.Name).Wrapf(err, "close runtime")
	}
	return disableErr
}

func (h *Host) lifecycle(ctx context.Context, phase pluginsdk.Phase) error {
	cmds, err := h.runtime.Lifecycle(phase)
	if err != nil {
		return oops.Code(CodeLifecycleFailed).
			With("plugin", h.manifest.Name).
			With("phase", string(phase)).
			Wrapf(err, "guard %s hook", phase)
	}
	h.apply(ctx, cmds)
	return nil
}

// DeliverEvent encodes v as the payload for tag and delivers it.
func (h *Host) DeliverEvent(ctx context.Context, tag event.Tag, v any) (Delivery, error) {
	env, err := event.NewEnvelope(tag, v)
	if err != nil {
		return Delivery{Tag: tag}, oops.With("tag", string(tag)).Wrap(err)
	}
	return h.Deliver(ctx, env.Tag, env.Payload)
}

// Deliver offers a raw payload for tag to the guard.
//
// Unsubscribed tags are skipped. When the guard fails or times out the
// returned Delivery still carries the default outcome, so the caller can
// let the event proceed.
func (h *Host) Deliver(ctx context.Context, tag event.Tag, payload []byte) (d Delivery, err error) {
	h.mu.RLock()
	closed, started := h.closed, h.started
	h.mu.RUnlock()
	if closed {
		return Delivery{Tag: tag}, ErrHostClosed
	}
	if !started {
		return Delivery{Tag: tag}, ErrNotStarted
	}

	d = Delivery{ID: ulid.Make(), Tag: tag}
	if !h.subs.Match(tag) {
		d.Skipped = true
		h.metrics.observe(tag, StatusSkipped, 0)
		return d, nil
	}

	ctx, span := h.tracer.Start(ctx, "guard.deliver",
		trace.WithAttributes(
			attribute.String("event.tag", string(tag)),
			attribute.String("delivery.id", d.ID.String()),
			attribute.String("plugin.name", h.manifest.Name),
		),
	)
	start := time.Now()
	defer func() {
		status := StatusAllowed
		switch {
		case err != nil:
			status = StatusFailed
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case d.Outcome.Cancelled:
			status = StatusCancelled
		}
		span.SetAttributes(attribute.Bool("event.cancelled", d.Outcome.Cancelled))
		span.End()
		h.metrics.observe(tag, status, time.Since(start))
	}()

	reply, err := h.call(ctx, tag, event.Envelope{Tag: tag, Payload: payload}.Bytes())
	if err != nil {
		errutil.Log(ctx, h.logger, slog.LevelWarn, "guard delivery failed", err, "delivery_id", d.ID.String())
		return d, err
	}

	out, decodeErr := event.DecodeOutcome(reply.Outcome)
	if decodeErr != nil {
		errutil.Log(ctx, h.logger, slog.LevelWarn, "guard returned a malformed outcome", decodeErr,
			"delivery_id", d.ID.String(), "tag", string(tag))
	}
	d.Outcome = out
	d.Commands = reply.Commands

	h.apply(ctx, reply.Commands)
	h.count(tag, out)
	return d, nil
}

// call runs HandleEvent with the host timeout. A guard that overruns is
// abandoned; its late reply is dropped.
func (h *Host) call(ctx context.Context, tag event.Tag, envelope []byte) (pluginsdk.Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	type result struct {
		reply pluginsdk.Reply
		err   error
	}
	done := make(chan result, 1)
	go func() {
		reply, err := h.runtime.HandleEvent(envelope)
		done <- result{reply: reply, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return pluginsdk.Reply{}, errDeliveryFailed(tag, res.err)
		}
		return res.reply, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return pluginsdk.Reply{}, errDeliveryTimeout(tag, h.timeout)
		}
		return pluginsdk.Reply{}, errDeliveryFailed(tag, ctx.Err())
	}
}

// apply carries out guard commands in order. Notification failures are
// logged and dropped.
func (h *Host) apply(ctx context.Context, cmds []event.Command) {
	for _, cmd := range cmds {
		h.metrics.command(cmd.Kind)
		switch cmd.Kind {
		case event.CommandLog:
			h.guardLog.Log(ctx, logging.GuardLevel(cmd.Level), cmd.Message)
		case event.CommandNotify:
			if h.messenger == nil {
				continue
			}
			if err := h.messenger.Notify(ctx, cmd.PlayerUUID, cmd.Message); err != nil {
				errutil.Log(ctx, h.logger, slog.LevelDebug, "notify failed", err, "player", cmd.PlayerUUID)
			}
		default:
			h.logger.WarnContext(ctx, "unknown guard command", "kind", string(cmd.Kind))
		}
	}
}

func (h *Host) count(tag event.Tag, out event.Outcome) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.counts[tag]
	if !ok {
		c = &TagCounts{}
		h.counts[tag] = c
	}
	c.Handled++
	if out.Cancelled {
		c.Cancelled++
	}
}

// Counts returns per-tag delivery counts for events the guard answered.
func (h *Host) Counts() map[event.Tag]TagCounts {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[event.Tag]TagCounts, len(h.counts))
	for tag, c := range h.counts {
		out[tag] = *c
	}
	return out
}
