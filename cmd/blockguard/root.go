// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the blockguard CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blockguard",
		Short: "Block protection and player statistics guard",
		Long: `blockguard cancels breaks of protected blocks, keeps per-player
break and place statistics and tells players about their milestones.

The guard runs behind a host, either in the host process or as a
go-plugin child process.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewReplayCmd())
	cmd.AddCommand(NewPluginCmd())
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}
