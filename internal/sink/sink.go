// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package sink provides the guard's side-effect channels: host log lines
// and player notifications.
package sink

import (
	"sync"

	"github.com/holomush/blockguard/pkg/event"
)

// Sink receives host-directed side effects. Calls are best-effort: callers
// ignore the returned error and carry on.
type Sink interface {
	// Log records a message at the given level on the host log.
	Log(level event.Level, message string) error
	// Notify sends a message to a single player.
	Notify(playerUUID, message string) error
}

// Recorder buffers side effects as commands until they are drained.
// It never fails. Recorder is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	commands []event.Command
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Log buffers a log command.
func (r *Recorder) Log(level event.Level, message string) error {
	r.record(event.LogCommand(level, message))
	return nil
}

// Notify buffers a notify command.
func (r *Recorder) Notify(playerUUID, message string) error {
	r.record(event.NotifyCommand(playerUUID, message))
	return nil
}

// Drain returns the buffered commands in emission order and empties the
// buffer. Returns nil when nothing was recorded.
func (r *Recorder) Drain() []event.Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.commands
	r.commands = nil
	return out
}

func (r *Recorder) record(cmd event.Command) {
	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	r.mu.Unlock()
}

// Discard drops everything.
type Discard struct{}

// Log does nothing.
func (Discard) Log(event.Level, string) error { return nil }

// Notify does nothing.
func (Discard) Notify(string, string) error { return nil }
