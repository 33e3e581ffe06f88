// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package pluginsdk runs a block guard behind the HashiCorp go-plugin
// boundary.
//
// The guard process serves a Guest; the host dispenses it and drives it
// through the same interface. Side effects produced during a call travel
// back with the reply as commands for the host to apply.
//
// Example usage:
//
//	func main() {
//		pluginsdk.Serve(&pluginsdk.ServeConfig{
//			Guest: guard.NewGuest(guard.New()),
//		})
//	}
package pluginsdk

import (
	"errors"
	"net/rpc"

	hashiplug "github.com/hashicorp/go-plugin"

	"github.com/holomush/blockguard/pkg/event"
)

// PluginName is the name the guard is served and dispensed under.
const PluginName = "guard"

// Phase is a lifecycle transition driven by the host.
type Phase string

// Lifecycle phases, in the order the host drives them.
const (
	PhaseInit    Phase = "init"
	PhaseEnable  Phase = "enable"
	PhaseDisable Phase = "disable"
)

// Reply is the result of one HandleEvent call.
type Reply struct {
	// Outcome is the encoded outcome: one cancel byte, optionally followed
	// by modifications JSON.
	Outcome []byte
	// Commands are the side effects emitted while handling the event, in
	// emission order.
	Commands []event.Command
}

// Guest is what a guard exposes to its host.
type Guest interface {
	// Lifecycle runs a lifecycle hook and returns the commands it emitted.
	Lifecycle(phase Phase) ([]event.Command, error)
	// HandleEvent handles one envelope.
	HandleEvent(envelope []byte) (Reply, error)
}

// HandshakeConfig is the go-plugin handshake configuration.
// Both host and guard must use the same values.
var HandshakeConfig = hashiplug.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "BLOCKGUARD_PLUGIN",
	MagicCookieValue: "blockguard-v1",
}

// PluginMap is the plugin set a host passes to go-plugin.
var PluginMap = map[string]hashiplug.Plugin{
	PluginName: &GuestPlugin{},
}

// ServeConfig configures the guard server.
type ServeConfig struct {
	// Guest is the guard implementation.
	// Required; Serve will panic if nil.
	Guest Guest
}

// Serve starts the guard server. This should be called from main().
// It blocks and never returns under normal operation.
func Serve(config *ServeConfig) {
	if config == nil {
		panic("pluginsdk: config cannot be nil")
	}
	if config.Guest == nil {
		panic("pluginsdk: config.Guest cannot be nil")
	}
	hashiplug.Serve(&hashiplug.ServeConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins: map[string]hashiplug.Plugin{
			PluginName: &GuestPlugin{Impl: config.Guest},
		},
	})
}

// GuestPlugin implements go-plugin's Plugin interface over net/rpc.
type GuestPlugin struct {
	Impl Guest
}

// Server returns the RPC server for the guard process.
func (p *GuestPlugin) Server(*hashiplug.MuxBroker) (interface{}, error) {
	if p.Impl == nil {
		return nil, errors.New("pluginsdk: guest is nil")
	}
	return &rpcServer{impl: p.Impl}, nil
}

// Client returns a Guest backed by the RPC connection.
func (*GuestPlugin) Client(_ *hashiplug.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &rpcClient{client: c}, nil
}

// rpcServer exposes a Guest as net/rpc methods.
type rpcServer struct {
	impl Guest
}

func (s *rpcServer) Lifecycle(phase Phase, resp *[]event.Command) error {
	cmds, err := s.impl.Lifecycle(phase)
	*resp = cmds
	return err
}

func (s *rpcServer) HandleEvent(envelope []byte, resp *Reply) error {
	reply, err := s.impl.HandleEvent(envelope)
	*resp = reply
	return err
}

// rpcClient is the host's view of a served Guest.
type rpcClient struct {
	client *rpc.Client
}

func (c *rpcClient) Lifecycle(phase Phase) ([]event.Command, error) {
	var resp []event.Command
	if err := c.client.Call("Plugin.Lifecycle", phase, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *rpcClient) HandleEvent(envelope []byte) (Reply, error) {
	var resp Reply
	if err := c.client.Call("Plugin.HandleEvent", envelope, &resp); err != nil {
		return Reply{}, err
	}
	return resp, nil
}
