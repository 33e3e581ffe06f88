// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package guard_test

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/holomush/blockguard/internal/guard"
	"github.com/holomush/blockguard/internal/host"
	"github.com/holomush/blockguard/internal/manifest"
	"github.com/holomush/blockguard/pkg/event"
)

type inbox struct {
	mu       sync.Mutex
	messages map[string][]string
}

func (i *inbox) Notify(_ context.Context, playerUUID, message string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.messages == nil {
		i.messages = make(map[string][]string)
	}
	i.messages[playerUUID] = append(i.messages[playerUUID], message)
	return nil
}

func (i *inbox) For(playerUUID string) []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]string(nil), i.messages[playerUUID]...)
}

func steve() event.Player {
	return event.Player{UUID: "069a79f4-44e9-4726-a5be-fca90e38aaf5", Name: "Steve"}
}

func breakOf(blockType string) event.BlockBreak {
	return event.BlockBreak{
		Player: steve(),
		Block:  event.Block{Type: blockType, Position: event.Position{X: -12, Y: 40, Z: 7}},
	}
}

func placeOf(blockType string) event.BlockPlace {
	return event.BlockPlace{
		Player: steve(),
		Block:  event.Block{Type: blockType, Position: event.Position{X: -12, Y: 41, Z: 7}},
	}
}

// runtimeCase builds the same guard behind a different runtime.
type runtimeCase struct {
	name  string
	start func(ctx context.Context, protected ...string) host.Runtime
}

var runtimes = []runtimeCase{
	{
		name: "in-process",
		start: func(_ context.Context, protected ...string) host.Runtime {
			return host.NewInProcess(guard.NewGuest(guard.WithProtectedBlocks(protected...)))
		},
	},
	{
		name: "go-plugin process",
		start: func(ctx context.Context, protected ...string) host.Runtime {
			args := []string{"plugin"}
			for _, b := range protected {
				args = append(args, "--protected-blocks="+b)
			}
			proc, err := host.StartProcess(ctx, host.ProcessConfig{Path: guardBinary, Args: args})
			Expect(err).NotTo(HaveOccurred())
			return proc
		},
	},
}

var _ = Describe("Guard runtimes", func() {
	for _, rc := range runtimes {
		Describe(rc.name, func() {
			var (
				ctx      context.Context
				h        *host.Host
				messages *inbox
			)

			start := func(m *manifest.Manifest, protected ...string) {
				messages = &inbox{}
				var err error
				h, err = host.New(rc.start(ctx, protected...),
					host.WithManifest(m),
					host.WithMessenger(messages),
				)
				Expect(err).NotTo(HaveOccurred())
				Expect(h.Start(ctx)).To(Succeed())
			}

			BeforeEach(func() {
				ctx = context.Background()
			})

			AfterEach(func() {
				if h != nil {
					Expect(h.Stop(ctx)).To(Succeed())
					h = nil
				}
			})

			It("cancels breaks of protected blocks", func() {
				start(manifest.Default())

				d, err := h.DeliverEvent(ctx, event.TagBlockBreak, breakOf("minecraft:deepslate_diamond_ore"))
				Expect(err).NotTo(HaveOccurred())
				Expect(d.Outcome.Cancelled).To(BeTrue())
				Expect(messages.For(steve().UUID)).To(ConsistOf(
					"§c§lProtected! §r§7deepslate_diamond_ore cannot be mined.",
				))
			})

			It("lets other breaks through and counts them", func() {
				start(manifest.Default())

				for range 50 {
					d, err := h.DeliverEvent(ctx, event.TagBlockBreak, breakOf("minecraft:cobblestone"))
					Expect(err).NotTo(HaveOccurred())
					Expect(d.Outcome.Cancelled).To(BeFalse())
				}

				Expect(messages.For(steve().UUID)).To(Equal([]string{"§e50 §7blocks broken"}))
				Expect(h.Counts()).To(HaveKeyWithValue(event.TagBlockBreak, host.TagCounts{Handled: 50}))
			})

			It("welcomes back players with history", func() {
				start(manifest.Default())

				_, err := h.DeliverEvent(ctx, event.TagPlayerJoin, event.PlayerJoin{Player: steve()})
				Expect(err).NotTo(HaveOccurred())
				Expect(messages.For(steve().UUID)).To(BeEmpty())

				_, err = h.DeliverEvent(ctx, event.TagBlockPlace, placeOf("minecraft:oak_planks"))
				Expect(err).NotTo(HaveOccurred())
				_, err = h.DeliverEvent(ctx, event.TagPlayerJoin, event.PlayerJoin{Player: steve()})
				Expect(err).NotTo(HaveOccurred())

				Expect(messages.For(steve().UUID)).To(Equal([]string{
					"§7Welcome back! §e0 §7broken, §e1 §7placed",
				}))
			})

			It("uses the configured denylist", func() {
				start(manifest.Default(), "minecraft:beacon")

				d, err := h.DeliverEvent(ctx, event.TagBlockBreak, breakOf("minecraft:beacon"))
				Expect(err).NotTo(HaveOccurred())
				Expect(d.Outcome.Cancelled).To(BeTrue())

				d, err = h.DeliverEvent(ctx, event.TagBlockBreak, breakOf("minecraft:spawner"))
				Expect(err).NotTo(HaveOccurred())
				Expect(d.Outcome.Cancelled).To(BeFalse())
			})

			It("degrades malformed and unknown events to the default outcome", func() {
				m := manifest.Default()
				m.Events = nil
				start(m)

				for _, env := range []struct {
					tag     event.Tag
					payload string
				}{
					{event.TagBlockBreak, `{"player":`},
					{event.TagBlockBreak, `{"player":{"uuid":"u","name":"n"}}`},
					{"unknown_event", `{}`},
					{"", ``},
				} {
					d, err := h.Deliver(ctx, env.tag, []byte(env.payload))
					Expect(err).NotTo(HaveOccurred())
					Expect(d.Skipped).To(BeFalse())
					Expect(d.Outcome).To(Equal(event.Outcome{}))
					Expect(d.Commands).To(BeEmpty())
				}
			})
		})
	}
})
