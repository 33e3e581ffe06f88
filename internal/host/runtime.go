// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package host

import (
	"github.com/holomush/blockguard/pkg/pluginsdk"
)

// Runtime is a loaded guard. Close releases whatever the runtime holds;
// the guard's state is gone afterwards.
type Runtime interface {
	pluginsdk.Guest
	Close() error
}

// inProcess runs the guard in the host's own address space.
type inProcess struct {
	pluginsdk.Guest
}

// NewInProcess wraps a guest that lives in this process.
func NewInProcess(guest pluginsdk.Guest) Runtime {
	if guest == nil {
		panic("host: guest cannot be nil")
	}
	return inProcess{Guest: guest}
}

func (inProcess) Close() error { return nil }
