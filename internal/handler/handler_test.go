// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package handler_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/blockguard/internal/handler"
	"github.com/holomush/blockguard/internal/protection"
	"github.com/holomush/blockguard/internal/sink"
	"github.com/holomush/blockguard/internal/stats"
	"github.com/holomush/blockguard/pkg/event"
)

var steve = event.Player{UUID: "0f1e2d3c", Name: "Steve"}

func newHandlers(t *testing.T) (*handler.Handlers, *stats.Store, *sink.Recorder) {
	t.Helper()
	store := stats.NewStore()
	rec := sink.NewRecorder()
	return handler.New(protection.New(), store, rec), store, rec
}

func breakEvent(blockType string) event.BlockBreak {
	return event.BlockBreak{
		Player: steve,
		Block:  event.Block{Type: blockType, Position: event.Position{X: 10, Y: 64, Z: -5}},
	}
}

func notifications(cmds []event.Command) []string {
	var out []string
	for _, c := range cmds {
		if c.Kind == event.CommandNotify {
			out = append(out, c.Message)
		}
	}
	return out
}

func TestBlockBreak_Protected(t *testing.T) {
	h, store, rec := newHandlers(t)

	out := h.BlockBreak(breakEvent("minecraft:diamond_ore"))

	assert.Equal(t, event.Outcome{Cancelled: true}, out)
	assert.Equal(t, stats.PlayerStats{Denied: 1}, store.Get(steve.UUID))
	assert.Equal(t, []event.Command{
		event.NotifyCommand(steve.UUID, "§c§lProtected! §r§7diamond_ore cannot be mined."),
		event.LogCommand(event.LevelWarn, "Steve tried to break protected block minecraft:diamond_ore at 10,64,-5"),
	}, rec.Drain())
}

func TestBlockBreak_ForeignNamespaceSuffix(t *testing.T) {
	h, store, rec := newHandlers(t)

	out := h.BlockBreak(breakEvent("othermod:ancient_debris"))

	assert.True(t, out.Cancelled)
	assert.Equal(t, uint64(1), store.Get(steve.UUID).Denied)
	assert.Equal(t, []string{"§c§lProtected! §r§7ancient_debris cannot be mined."}, notifications(rec.Drain()))
}

func TestBlockBreak_Allowed(t *testing.T) {
	h, store, rec := newHandlers(t)

	out := h.BlockBreak(breakEvent("minecraft:stone"))

	assert.Equal(t, event.Outcome{}, out)
	assert.Nil(t, out.Modifications)
	assert.Equal(t, stats.PlayerStats{Broken: 1}, store.Get(steve.UUID))
	assert.Equal(t, []event.Command{
		event.LogCommand(event.LevelDebug, "Steve broke minecraft:stone at 10,64,-5"),
	}, rec.Drain())
}

func TestBlockBreak_DeniedDoesNotCountAsBroken(t *testing.T) {
	h, store, _ := newHandlers(t)

	h.BlockBreak(breakEvent("minecraft:stone"))
	h.BlockBreak(breakEvent("minecraft:spawner"))
	h.BlockBreak(breakEvent("minecraft:spawner"))

	assert.Equal(t, stats.PlayerStats{Broken: 1, Denied: 2}, store.Get(steve.UUID))
}

func TestBlockBreak_Milestones(t *testing.T) {
	for _, n := range []int{1, 49, 50, 51, 99, 100, 149, 150, 237} {
		h, store, rec := newHandlers(t)

		var fired []int
		for i := 1; i <= n; i++ {
			h.BlockBreak(breakEvent("minecraft:dirt"))
			if len(notifications(rec.Drain())) > 0 {
				fired = append(fired, i)
			}
		}

		assert.Equal(t, uint64(n), store.Get(steve.UUID).Broken)
		require.Len(t, fired, n/handler.MilestoneInterval, "n=%d", n)
		for k, idx := range fired {
			assert.Equal(t, (k+1)*handler.MilestoneInterval, idx)
		}
	}
}

func TestBlockBreak_MilestoneMessage(t *testing.T) {
	h, _, rec := newHandlers(t)

	for range 50 {
		h.BlockBreak(breakEvent("minecraft:dirt"))
	}

	assert.Equal(t, []string{"§e50 §7blocks broken"}, notifications(rec.Drain()))
}

func TestBlockPlace(t *testing.T) {
	h, store, rec := newHandlers(t)

	out := h.BlockPlace(event.BlockPlace{
		Player: steve,
		Block:  event.Block{Type: "minecraft:diamond_ore", Position: event.Position{X: 1, Y: 2, Z: 3}},
	})

	assert.Equal(t, event.Outcome{}, out, "placing a protected block is never cancelled")
	assert.Equal(t, stats.PlayerStats{Placed: 1}, store.Get(steve.UUID))
	assert.Equal(t, []event.Command{
		event.LogCommand(event.LevelDebug, "Steve placed minecraft:diamond_ore at 1,2,3"),
	}, rec.Drain())
}

func TestBlockPlace_Milestone(t *testing.T) {
	h, _, rec := newHandlers(t)
	ev := event.BlockPlace{Player: steve, Block: event.Block{Type: "minecraft:oak_planks"}}

	var msgs []string
	for range 100 {
		h.BlockPlace(ev)
		msgs = append(msgs, notifications(rec.Drain())...)
	}

	assert.Equal(t, []string{"§e50 §7blocks placed", "§e100 §7blocks placed"}, msgs)
}

func TestPlayerJoin(t *testing.T) {
	tests := []struct {
		name   string
		seed   stats.PlayerStats
		notice []string
	}{
		{
			name:   "returning breaker",
			seed:   stats.PlayerStats{Broken: 3},
			notice: []string{"§7Welcome back! §e3 §7broken, §e0 §7placed"},
		},
		{
			name:   "returning builder",
			seed:   stats.PlayerStats{Placed: 7, Denied: 2},
			notice: []string{"§7Welcome back! §e0 §7broken, §e7 §7placed"},
		},
		{
			name: "new player",
		},
		{
			name: "only denied attempts",
			seed: stats.PlayerStats{Denied: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := stats.NewStore()
			if tt.seed != (stats.PlayerStats{}) {
				store.Update(steve.UUID, func(s *stats.PlayerStats) { *s = tt.seed })
			}
			rec := sink.NewRecorder()
			h := handler.New(protection.New(), store, rec)

			out := h.PlayerJoin(event.PlayerJoin{Player: steve})

			assert.Equal(t, event.Outcome{}, out)
			cmds := rec.Drain()
			assert.Equal(t, tt.notice, notifications(cmds))
			require.NotEmpty(t, cmds)
			assert.Equal(t, event.LogCommand(event.LevelInfo, "Steve joined"), cmds[len(cmds)-1])
			assert.Equal(t, tt.seed, store.Get(steve.UUID), "join must not mutate stats")
		})
	}
}

func TestPlayerJoin_UnseenPlayerCreatesNoRecord(t *testing.T) {
	h, store, _ := newHandlers(t)

	h.PlayerJoin(event.PlayerJoin{Player: steve})

	assert.Equal(t, 0, store.Len())
}

type failingSink struct{ calls int }

func (f *failingSink) Log(event.Level, string) error {
	f.calls++
	return errors.New("host log unavailable")
}

func (f *failingSink) Notify(string, string) error {
	f.calls++
	return errors.New("player offline")
}

func TestHandlers_SinkFailuresAreIgnored(t *testing.T) {
	store := stats.NewStore()
	fs := &failingSink{}
	h := handler.New(protection.New(), store, fs)

	assert.True(t, h.BlockBreak(breakEvent("minecraft:spawner")).Cancelled)
	assert.False(t, h.BlockBreak(breakEvent("minecraft:stone")).Cancelled)

	assert.Equal(t, stats.PlayerStats{Broken: 1, Denied: 1}, store.Get(steve.UUID))
	assert.Equal(t, 3, fs.calls)
}

func TestNew_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { handler.New(nil, stats.NewStore(), sink.Discard{}) })
	assert.Panics(t, func() { handler.New(protection.New(), nil, sink.Discard{}) })
	assert.Panics(t, func() { handler.New(protection.New(), stats.NewStore(), nil) })
}
