// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package stats keeps per-player block counters for the lifetime of a guard
// instance. Nothing is persisted; records are never evicted.
package stats

import "sync"

// PlayerStats holds a player's counters. All counters only ever increase.
type PlayerStats struct {
	Broken uint64
	Placed uint64
	Denied uint64
}

// Store maps player UUIDs to their counters.
//
// Store is safe for concurrent use. The zero value is ready to use.
type Store struct {
	mu      sync.Mutex
	players map[string]*PlayerStats
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{players: make(map[string]*PlayerStats)}
}

// Get returns a snapshot of the counters for uuid. Unseen players get the
// zero record; no entry is created.
func (s *Store) Get(uuid string) PlayerStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.players[uuid]; ok {
		return *st
	}
	return PlayerStats{}
}

// Update obtains or creates the record for uuid, applies mutate to it in
// place and returns the resulting snapshot. It is the only write path.
func (s *Store) Update(uuid string, mutate func(*PlayerStats)) PlayerStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.players == nil {
		s.players = make(map[string]*PlayerStats)
	}
	st, ok := s.players[uuid]
	if !ok {
		st = &PlayerStats{}
		s.players[uuid] = st
	}
	mutate(st)
	return *st
}

// Len returns the number of players with a record.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}
