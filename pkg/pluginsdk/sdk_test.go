// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pluginsdk_test

import (
	"errors"
	"testing"

	hashiplug "github.com/hashicorp/go-plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/blockguard/pkg/event"
	"github.com/holomush/blockguard/pkg/pluginsdk"
)

type echoGuest struct {
	phases []pluginsdk.Phase
}

func (g *echoGuest) Lifecycle(phase pluginsdk.Phase) ([]event.Command, error) {
	if phase == "explode" {
		return nil, errors.New("bad phase")
	}
	g.phases = append(g.phases, phase)
	return []event.Command{event.LogCommand(event.LevelInfo, "phase "+string(phase))}, nil
}

func (g *echoGuest) HandleEvent(envelope []byte) (pluginsdk.Reply, error) {
	env := event.ParseEnvelope(envelope)
	return pluginsdk.Reply{
		Outcome:  event.Outcome{Cancelled: env.Tag == event.TagBlockBreak}.Encode(),
		Commands: []event.Command{event.NotifyCommand("u1", string(env.Tag))},
	}, nil
}

var _ pluginsdk.Guest = (*echoGuest)(nil)

func dispense(t *testing.T, g pluginsdk.Guest) pluginsdk.Guest {
	t.Helper()
	client, _ := hashiplug.TestPluginRPCConn(t, map[string]hashiplug.Plugin{
		pluginsdk.PluginName: &pluginsdk.GuestPlugin{Impl: g},
	}, nil)
	t.Cleanup(func() { _ = client.Close() })

	raw, err := client.Dispense(pluginsdk.PluginName)
	require.NoError(t, err)
	guest, ok := raw.(pluginsdk.Guest)
	require.True(t, ok, "dispensed %T does not implement Guest", raw)
	return guest
}

func TestGuestPlugin_Lifecycle(t *testing.T) {
	impl := &echoGuest{}
	guest := dispense(t, impl)

	cmds, err := guest.Lifecycle(pluginsdk.PhaseInit)
	require.NoError(t, err)
	assert.Equal(t, []event.Command{event.LogCommand(event.LevelInfo, "phase init")}, cmds)
	assert.Equal(t, []pluginsdk.Phase{pluginsdk.PhaseInit}, impl.phases)
}

func TestGuestPlugin_LifecycleError(t *testing.T) {
	guest := dispense(t, &echoGuest{})

	_, err := guest.Lifecycle("explode")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad phase")
}

func TestGuestPlugin_HandleEvent(t *testing.T) {
	guest := dispense(t, &echoGuest{})

	reply, err := guest.HandleEvent([]byte("block_break\x00{}"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, reply.Outcome)
	assert.Equal(t, []event.Command{event.NotifyCommand("u1", "block_break")}, reply.Commands)

	reply, err = guest.HandleEvent([]byte("player_join\x00{}"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, reply.Outcome)
}

func TestGuestPlugin_ServerRequiresImpl(t *testing.T) {
	_, err := (&pluginsdk.GuestPlugin{}).Server(nil)
	assert.Error(t, err)
}

func TestServe_PanicsWithoutGuest(t *testing.T) {
	assert.Panics(t, func() { pluginsdk.Serve(nil) })
	assert.Panics(t, func() { pluginsdk.Serve(&pluginsdk.ServeConfig{}) })
}

func TestHandshakeConfig(t *testing.T) {
	assert.Equal(t, uint(1), pluginsdk.HandshakeConfig.ProtocolVersion)
	assert.Equal(t, "BLOCKGUARD_PLUGIN", pluginsdk.HandshakeConfig.MagicCookieKey)
	assert.Equal(t, "blockguard-v1", pluginsdk.HandshakeConfig.MagicCookieValue)
	assert.Contains(t, pluginsdk.PluginMap, pluginsdk.PluginName)
}
