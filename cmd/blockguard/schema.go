// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holomush/blockguard/internal/manifest"
	"github.com/holomush/blockguard/internal/schema"
	"github.com/holomush/blockguard/pkg/event"
)

const manifestSchemaName = "manifest"

// NewSchemaCmd creates the schema subcommand.
func NewSchemaCmd() *cobra.Command {
	valid := []string{manifestSchemaName}
	for _, tag := range event.Tags() {
		valid = append(valid, string(tag))
	}

	return &cobra.Command{
		Use:       "schema <" + manifestSchemaName + "|event-tag>",
		Short:     "Print a JSON Schema",
		Long:      `Print the JSON Schema for plugin.yaml or for the payload of an event tag.`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: valid,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == manifestSchemaName {
				data, err = manifest.GenerateSchema()
			} else {
				data, err = schema.Generate(event.Tag(args[0]))
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
