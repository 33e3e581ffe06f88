// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package event defines the types exchanged between a game host and the
// block guard: the event payloads, the envelope that carries them, the
// outcome the guard returns and the commands it asks the host to run.
package event

import "fmt"

// Tag identifies which payload schema an envelope carries.
type Tag string

// Event tags understood by the guard.
const (
	TagBlockBreak Tag = "block_break"
	TagBlockPlace Tag = "block_place"
	TagPlayerJoin Tag = "player_join"
)

// String returns the tag as a plain string.
func (t Tag) String() string { return string(t) }

// Tags returns every tag the guard routes, in a stable order.
func Tags() []Tag {
	return []Tag{TagBlockBreak, TagBlockPlace, TagPlayerJoin}
}

// Player identifies the acting player. UUID is the stable identity key;
// Name is for display only.
type Player struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// Position is a block position in world coordinates.
type Position struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
	Z int32 `json:"z"`
}

// String renders the position as "x,y,z".
func (p Position) String() string {
	return fmt.Sprintf("%d,%d,%d", p.X, p.Y, p.Z)
}

// Block is a namespaced block type at a position.
type Block struct {
	Type       string            `json:"block_type"`
	Position   Position          `json:"position"`
	Properties map[string]string `json:"properties,omitempty"`
}

// ItemStack is a stack of items dropped by a broken block.
type ItemStack struct {
	ItemType string `json:"item_type"`
	Count    int32  `json:"count"`
}

// BlockBreak is delivered when a player breaks a block.
type BlockBreak struct {
	Player     Player      `json:"player"`
	Block      Block       `json:"block"`
	Drops      []ItemStack `json:"drops,omitempty"`
	Experience int32       `json:"experience,omitempty"`
}

// BlockPlace is delivered when a player places a block.
type BlockPlace struct {
	Player Player `json:"player"`
	Block  Block  `json:"block"`
}

// PlayerJoin is delivered when a player joins the world.
type PlayerJoin struct {
	Player Player `json:"player"`
}
