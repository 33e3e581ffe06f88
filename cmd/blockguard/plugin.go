// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/holomush/blockguard/internal/guard"
	"github.com/holomush/blockguard/pkg/pluginsdk"
)

// pluginCommand is the subcommand the process runtime launches.
const pluginCommand = "plugin"

// NewPluginCmd creates the hidden plugin subcommand, which serves the guard
// over go-plugin. It is started by a host, not by hand.
func NewPluginCmd() *cobra.Command {
	var protected []string

	cmd := &cobra.Command{
		Use:    pluginCommand,
		Short:  "Serve the guard to a host over go-plugin",
		Hidden: true,
		Args:   cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			pluginsdk.Serve(&pluginsdk.ServeConfig{
				Guest: guard.NewGuest(guard.WithProtectedBlocks(protected...)),
			})
		},
	}
	cmd.Flags().StringSliceVar(&protected, "protected-blocks", nil, "block types to protect")
	return cmd
}
