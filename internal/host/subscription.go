// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package host

import (
	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/holomush/blockguard/pkg/event"
)

// Subscriptions decides which event tags reach the guard.
type Subscriptions struct {
	patterns []string
	globs    []glob.Glob
}

// NewSubscriptions compiles tag patterns such as "block_*".
// No patterns means every tag is delivered.
func NewSubscriptions(patterns []string) (*Subscriptions, error) {
	s := &Subscriptions{patterns: patterns, globs: make([]glob.Glob, 0, len(patterns))}
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, oops.Code(CodeBadSubscription).With("pattern", p).Wrapf(err, "compile subscription")
		}
		s.globs = append(s.globs, g)
	}
	return s, nil
}

// Match reports whether tag is subscribed.
func (s *Subscriptions) Match(tag event.Tag) bool {
	if len(s.globs) == 0 {
		return true
	}
	for _, g := range s.globs {
		if g.Match(string(tag)) {
			return true
		}
	}
	return false
}

// Patterns returns the configured patterns.
func (s *Subscriptions) Patterns() []string {
	return s.patterns
}
