// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package handler implements the guard's per-event decisions.
package handler

import (
	"github.com/holomush/blockguard/internal/protection"
	"github.com/holomush/blockguard/internal/sink"
	"github.com/holomush/blockguard/internal/stats"
	"github.com/holomush/blockguard/pkg/event"
)

// MilestoneInterval is how many counted actions separate milestone
// notifications.
const MilestoneInterval = 50

// Handlers turns events into outcomes, updating statistics and emitting
// side effects as it goes. Sink errors are ignored.
type Handlers struct {
	policy *protection.Policy
	stats  *stats.Store
	sink   sink.Sink
}

// New creates handlers over the given policy, store and sink.
// Panics if any argument is nil.
func New(policy *protection.Policy, store *stats.Store, s sink.Sink) *Handlers {
	if policy == nil {
		panic("handler: policy cannot be nil")
	}
	if store == nil {
		panic("handler: store cannot be nil")
	}
	if s == nil {
		panic("handler: sink cannot be nil")
	}
	return &Handlers{policy: policy, stats: store, sink: s}
}

// BlockBreak cancels breaks of protected blocks and counts the rest.
func (h *Handlers) BlockBreak(ev event.BlockBreak) event.Outcome {
	uuid := ev.Player.UUID

	if h.policy.IsProtected(ev.Block.Type) {
		h.stats.Update(uuid, func(s *stats.PlayerStats) { s.Denied++ })
		_ = h.sink.Notify(uuid, protectedNotice(ev.Block.Type))
		_ = h.sink.Log(event.LevelWarn, deniedLog(ev.Player, ev.Block))
		return event.Outcome{Cancelled: true}
	}

	st := h.stats.Update(uuid, func(s *stats.PlayerStats) { s.Broken++ })
	if isMilestone(st.Broken) {
		_ = h.sink.Notify(uuid, brokenMilestone(st.Broken))
	}
	_ = h.sink.Log(event.LevelDebug, brokeLog(ev.Player, ev.Block))
	return event.Outcome{}
}

// BlockPlace counts every placement.
func (h *Handlers) BlockPlace(ev event.BlockPlace) event.Outcome {
	uuid := ev.Player.UUID

	st := h.stats.Update(uuid, func(s *stats.PlayerStats) { s.Placed++ })
	if isMilestone(st.Placed) {
		_ = h.sink.Notify(uuid, placedMilestone(st.Placed))
	}
	_ = h.sink.Log(event.LevelDebug, placedLog(ev.Player, ev.Block))
	return event.Outcome{}
}

// PlayerJoin greets returning players. It never modifies statistics.
func (h *Handlers) PlayerJoin(ev event.PlayerJoin) event.Outcome {
	st := h.stats.Get(ev.Player.UUID)
	if st.Broken > 0 || st.Placed > 0 {
		_ = h.sink.Notify(ev.Player.UUID, welcomeBack(st.Broken, st.Placed))
	}
	_ = h.sink.Log(event.LevelInfo, joinedLog(ev.Player))
	return event.Outcome{}
}

func isMilestone(n uint64) bool {
	return n > 0 && n%MilestoneInterval == 0
}
