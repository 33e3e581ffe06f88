// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package protection decides which block types may not be broken.
//
// Matching is intentionally loose: a block type is protected when its
// lowercased form contains a denylist entry, or ends with the entry's name
// portion (the text after the namespace separator). "othermod:ancient_debris"
// is therefore protected, and so is anything merely containing "spawner".
package protection

import "strings"

// namespaceSeparator splits "namespace:name" identifiers.
const namespaceSeparator = ":"

// DefaultDenylist is the built-in set of protected block types.
var DefaultDenylist = []string{
	"minecraft:diamond_ore",
	"minecraft:deepslate_diamond_ore",
	"minecraft:ancient_debris",
	"minecraft:spawner",
}

type entry struct {
	full string
	name string
}

// Policy is a static block-type denylist. It is immutable after New and safe
// for concurrent use.
type Policy struct {
	entries []entry
}

var defaultPolicy = New()

// New builds a policy from the given block types. Entries are lowercased;
// blank entries and entries with an empty name portion are ignored. With no
// usable entries the DefaultDenylist is used.
func New(blockTypes ...string) *Policy {
	p := &Policy{}
	for _, bt := range blockTypes {
		full := strings.ToLower(strings.TrimSpace(bt))
		name := nameOf(full)
		if name == "" {
			continue
		}
		p.entries = append(p.entries, entry{full: full, name: name})
	}
	if len(p.entries) == 0 {
		for _, bt := range DefaultDenylist {
			p.entries = append(p.entries, entry{full: bt, name: nameOf(bt)})
		}
	}
	return p
}

// IsProtected reports whether blockType matches the policy. The check is
// case-insensitive and never fails.
func (p *Policy) IsProtected(blockType string) bool {
	normalized := strings.ToLower(blockType)
	for _, e := range p.entries {
		if strings.Contains(normalized, e.full) || strings.HasSuffix(normalized, e.name) {
			return true
		}
	}
	return false
}

// Entries returns the normalized denylist. The slice is a copy.
func (p *Policy) Entries() []string {
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.full
	}
	return out
}

// IsProtected checks blockType against the DefaultDenylist.
func IsProtected(blockType string) bool {
	return defaultPolicy.IsProtected(blockType)
}

// BlockName returns the part of a namespaced identifier after the last
// separator, or the whole identifier when there is none.
func BlockName(blockType string) string {
	if i := strings.LastIndex(blockType, namespaceSeparator); i >= 0 {
		return blockType[i+len(namespaceSeparator):]
	}
	return blockType
}

// nameOf strips the namespace from a denylist entry.
func nameOf(full string) string {
	if _, name, ok := strings.Cut(full, namespaceSeparator); ok {
		return name
	}
	return full
}
