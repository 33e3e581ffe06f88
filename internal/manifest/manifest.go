// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package manifest loads and validates plugin.yaml, the file that tells
// the host which guard to run and which events to deliver to it.
package manifest

import (
	"os"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/gobwas/glob"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// HostAPIVersion is the guard API this host implements.
const HostAPIVersion = "1.0.0"

// defaultAPIConstraint applies when a manifest omits api-version.
const defaultAPIConstraint = "^1.0"

// Error codes for manifest failures.
const (
	CodeEmpty          = "MANIFEST_EMPTY"
	CodeInvalidYAML    = "MANIFEST_INVALID_YAML"
	CodeSchema         = "MANIFEST_SCHEMA"
	CodeInvalid        = "MANIFEST_INVALID"
	CodeIncompatible   = "MANIFEST_INCOMPATIBLE_API"
	CodeReadFailed     = "MANIFEST_READ_FAILED"
	CodeSchemaGenerate = "MANIFEST_SCHEMA_GENERATE"
)

// Manifest represents a plugin.yaml file.
type Manifest struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	// APIVersion is a semver constraint on HostAPIVersion.
	APIVersion string `yaml:"api-version,omitempty"`
	// Events are glob patterns over event tags. Empty means every tag.
	Events []string `yaml:"events,omitempty"`
	// ProtectedBlocks replaces the guard's default denylist when set.
	ProtectedBlocks []string `yaml:"protected-blocks,omitempty"`
}

// maxNameLength is the maximum allowed length for plugin names.
const maxNameLength = 64

// namePattern validates plugin names: must start with lowercase letter,
// followed by lowercase letters, digits, or hyphens.
// Cannot end with a hyphen.
var namePattern = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)

// Default returns the manifest used when none is configured.
func Default() *Manifest {
	return &Manifest{
		Name:       "blockguard",
		Version:    "1.0.0",
		APIVersion: defaultAPIConstraint,
		Events:     []string{"block_*", "player_join"},
	}
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, oops.Code(CodeReadFailed).With("path", path).Wrapf(err, "read manifest")
	}
	m, err := Parse(data)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return m, nil
}

// Parse validates data against the manifest schema, decodes it and checks
// the remaining constraints.
func Parse(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, oops.Code(CodeEmpty).Errorf("manifest data is empty")
	}
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, oops.Code(CodeInvalidYAML).Wrapf(err, "invalid YAML")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks manifest constraints, including API compatibility with
// this host.
func (m *Manifest) Validate() error {
	if !namePattern.MatchString(m.Name) {
		return invalid("name", m.Name).
			Errorf("name %q must start with a-z, contain only a-z, 0-9, hyphens, and not end with a hyphen", m.Name)
	}
	if len(m.Name) > maxNameLength {
		return invalid("name", m.Name).
			Errorf("name must be %d characters or less, got %d", maxNameLength, len(m.Name))
	}

	if _, err := semver.StrictNewVersion(m.Version); err != nil {
		return invalid("version", m.Version).Wrapf(err, "version must be semantic")
	}

	constraint, err := semver.NewConstraint(m.apiConstraint())
	if err != nil {
		return invalid("api-version", m.APIVersion).Wrapf(err, "api-version must be a version constraint")
	}
	if !constraint.Check(semver.MustParse(HostAPIVersion)) {
		return oops.Code(CodeIncompatible).
			With("api_version", m.apiConstraint()).
			With("host_api_version", HostAPIVersion).
			Errorf("plugin %s requires API %s, host provides %s", m.Name, m.apiConstraint(), HostAPIVersion)
	}

	for _, pattern := range m.Events {
		if _, err := glob.Compile(pattern); err != nil {
			return invalid("events", pattern).Wrapf(err, "bad event pattern")
		}
	}

	for _, block := range m.ProtectedBlocks {
		if strings.TrimSpace(block) == "" {
			return invalid("protected-blocks", block).Errorf("protected block entries cannot be blank")
		}
	}

	return nil
}

func (m *Manifest) apiConstraint() string {
	if m.APIVersion == "" {
		return defaultAPIConstraint
	}
	return m.APIVersion
}

func invalid(field, value string) oops.OopsErrorBuilder {
	return oops.Code(CodeInvalid).With("field", field).With("value", value)
}
