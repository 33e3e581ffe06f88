// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package host

import (
	"errors"
	"time"

	"github.com/samber/oops"

	"github.com/holomush/blockguard/pkg/event"
)

// Sentinel errors for programmatic error checking.
var (
	// ErrHostClosed is returned when operations are attempted on a stopped host.
	ErrHostClosed = errors.New("host is closed")
	// ErrNotStarted is returned when delivering before Start.
	ErrNotStarted = errors.New("host not started")
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("host already started")
)

// Error codes for host failures.
const (
	CodeDeliveryTimeout = "DELIVERY_TIMEOUT"
	CodeDeliveryFailed  = "DELIVERY_FAILED"
	CodeLifecycleFailed = "LIFECYCLE_FAILED"
	CodePluginStart     = "PLUGIN_START_FAILED"
	CodeBadSubscription = "BAD_SUBSCRIPTION"
)

func errDeliveryTimeout(tag event.Tag, timeout time.Duration) error {
	return oops.Code(CodeDeliveryTimeout).
		With("tag", string(tag)).
		With("timeout", timeout.String()).
		Errorf("guard did not answer %s within %s", tag, timeout)
}

func errDeliveryFailed(tag event.Tag, cause error) error {
	return oops.Code(CodeDeliveryFailed).
		With("tag", string(tag)).
		Wrapf(cause, "deliver %s", tag)
}
