// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Command gen-schema writes the manifest and event payload JSON Schemas
// into the schemas directory.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/holomush/blockguard/internal/manifest"
	"github.com/holomush/blockguard/internal/schema"
	"github.com/holomush/blockguard/pkg/event"
)

const outDir = "schemas"

func main() {
	if err := run(outDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(dir string) error {
	files := map[string]func() ([]byte, error){
		"plugin.schema.json": manifest.GenerateSchema,
	}
	for _, tag := range event.Tags() {
		files[string(tag)+".schema.json"] = func() ([]byte, error) { return schema.Generate(tag) }
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	for name, generate := range files {
		data, err := generate()
		if err != nil {
			return fmt.Errorf("generate %s: %w", name, err)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Printf("Generated %s\n", path)
	}
	return nil
}
