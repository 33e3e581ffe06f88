// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package dispatch

import (
	"fmt"

	"github.com/samber/oops"

	"github.com/holomush/blockguard/pkg/event"
)

// Error codes for dispatch failures. None of these reach the host; they are
// reported by Decide for logging and tests.
const (
	CodeUnknownEvent   = "UNKNOWN_EVENT"
	CodeInvalidPayload = "INVALID_PAYLOAD"
	CodeHandlerPanic   = "HANDLER_PANIC"
)

// ErrUnknownEvent creates an error for a tag with no route.
func ErrUnknownEvent(tag event.Tag) error {
	return oops.Code(CodeUnknownEvent).
		With("tag", string(tag)).
		Errorf("unknown event tag %q", tag)
}

// ErrInvalidPayload wraps a payload decode failure.
func ErrInvalidPayload(tag event.Tag, cause error) error {
	return oops.Code(CodeInvalidPayload).
		With("tag", string(tag)).
		Wrapf(cause, "decode %s payload", tag)
}

// ErrHandlerPanic converts a recovered panic into an error.
func ErrHandlerPanic(tag event.Tag, recovered any) error {
	return oops.Code(CodeHandlerPanic).
		With("tag", string(tag)).
		Errorf("handler panicked: %s", fmt.Sprint(recovered))
}
