// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package guard assembles the block guard: policy, statistics, handlers and
// dispatcher behind one lifecycle and one entry point.
package guard

import (
	"sync"

	"github.com/holomush/blockguard/internal/dispatch"
	"github.com/holomush/blockguard/internal/handler"
	"github.com/holomush/blockguard/internal/protection"
	"github.com/holomush/blockguard/internal/sink"
	"github.com/holomush/blockguard/internal/stats"
	"github.com/holomush/blockguard/pkg/event"
)

// Lifecycle log lines.
const (
	initializedMessage = "block protection initialized"
	enabledMessage     = "block protection enabled"
	disabledMessage    = "block protection disabled"
)

// Guard is one guard instance. Its statistics live as long as it does.
type Guard struct {
	mu         sync.Mutex
	sink       sink.Sink
	policy     *protection.Policy
	stats      *stats.Store
	dispatcher *dispatch.Dispatcher
}

// Option configures a Guard.
type Option func(*Guard)

// WithSink sets where side effects go. Defaults to sink.Discard.
func WithSink(s sink.Sink) Option {
	return func(g *Guard) {
		if s != nil {
			g.sink = s
		}
	}
}

// WithProtectedBlocks replaces the default denylist.
func WithProtectedBlocks(blockTypes ...string) Option {
	return func(g *Guard) {
		g.policy = protection.New(blockTypes...)
	}
}

// WithStore shares a statistics store with the caller.
func WithStore(store *stats.Store) Option {
	return func(g *Guard) {
		if store != nil {
			g.stats = store
		}
	}
}

// New creates a guard.
func New(opts ...Option) *Guard {
	g := &Guard{
		sink:   sink.Discard{},
		policy: protection.New(),
		stats:  stats.NewStore(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.dispatcher = dispatch.New(handler.New(g.policy, g.stats, g.sink))
	return g
}

// Init runs when the guard is loaded.
func (g *Guard) Init() {
	_ = g.sink.Log(event.LevelInfo, initializedMessage)
}

// OnEnable runs when the host enables the guard.
func (g *Guard) OnEnable() {
	_ = g.sink.Log(event.LevelInfo, enabledMessage)
}

// OnDisable runs before the guard is unloaded.
func (g *Guard) OnDisable() {
	_ = g.sink.Log(event.LevelInfo, disabledMessage)
}

// HandleEvent handles one envelope and returns the encoded outcome.
// Calls are serialized.
func (g *Guard) HandleEvent(envelope []byte) []byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dispatcher.Handle(envelope)
}

// Decide is HandleEvent with the undecoded outcome and the reason it fell
// back to the default, if it did.
func (g *Guard) Decide(envelope []byte) (event.Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dispatcher.Decide(envelope)
}

// Stats returns a snapshot of a player's statistics.
func (g *Guard) Stats(playerUUID string) stats.PlayerStats {
	return g.stats.Get(playerUUID)
}

// Players returns the number of players with statistics.
func (g *Guard) Players() int {
	return g.stats.Len()
}

// ProtectedBlocks returns the active denylist.
func (g *Guard) ProtectedBlocks() []string {
	return g.policy.Entries()
}
