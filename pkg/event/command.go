// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package event

// Level is a log level understood by the host's log sink.
type Level string

// Log levels.
const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// ParseLevel maps a level name to a Level. Unknown names map to LevelInfo,
// matching how the host treats them.
func ParseLevel(s string) Level {
	switch l := Level(s); l {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return l
	default:
		return LevelInfo
	}
}

// CommandKind identifies a host-directed side effect.
type CommandKind string

// Command kinds.
const (
	CommandLog    CommandKind = "log"
	CommandNotify CommandKind = "notify"
)

// Command is a side effect the guard asks the host to perform. Log commands
// carry Level; notify commands carry PlayerUUID. Message may contain
// §-prefixed formatting codes that only the host interprets.
type Command struct {
	Kind       CommandKind `json:"kind"`
	Level      Level       `json:"level,omitempty"`
	PlayerUUID string      `json:"player_uuid,omitempty"`
	Message    string      `json:"message"`
}

// LogCommand builds a log command.
func LogCommand(level Level, message string) Command {
	return Command{Kind: CommandLog, Level: level, Message: message}
}

// NotifyCommand builds a player notification command.
func NotifyCommand(playerUUID, message string) Command {
	return Command{Kind: CommandNotify, PlayerUUID: playerUUID, Message: message}
}
