// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package guard

import (
	"sync"

	"github.com/samber/oops"

	"github.com/holomush/blockguard/internal/sink"
	"github.com/holomush/blockguard/pkg/event"
	"github.com/holomush/blockguard/pkg/pluginsdk"
)

// CodeUnknownPhase is returned for a lifecycle phase the guard does not know.
const CodeUnknownPhase = "UNKNOWN_PHASE"

// Guest exposes a Guard to a host. Side effects are buffered while a call
// runs and returned with its result.
type Guest struct {
	mu       sync.Mutex
	guard    *Guard
	recorder *sink.Recorder
}

var _ pluginsdk.Guest = (*Guest)(nil)

// NewGuest creates a guard whose sink records commands for the host.
// Any WithSink option is overridden.
func NewGuest(opts ...Option) *Guest {
	rec := sink.NewRecorder()
	opts = append(opts[:len(opts):len(opts)], WithSink(rec))
	return &Guest{guard: New(opts...), recorder: rec}
}

// Guard returns the wrapped guard.
func (g *Guest) Guard() *Guard {
	return g.guard
}

// Lifecycle runs the hook for phase.
func (g *Guest) Lifecycle(phase pluginsdk.Phase) ([]event.Command, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch phase {
	case pluginsdk.PhaseInit:
		g.guard.Init()
	case pluginsdk.PhaseEnable:
		g.guard.OnEnable()
	case pluginsdk.PhaseDisable:
		g.guard.OnDisable()
	default:
		return nil, oops.Code(CodeUnknownPhase).
			With("phase", string(phase)).
			Errorf("unknown lifecycle phase %q", phase)
	}
	return g.recorder.Drain(), nil
}

// HandleEvent handles one envelope. It never fails.
func (g *Guest) HandleEvent(envelope []byte) (pluginsdk.Reply, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := g.guard.HandleEvent(envelope)
	return pluginsdk.Reply{Outcome: out, Commands: g.recorder.Drain()}, nil
}
