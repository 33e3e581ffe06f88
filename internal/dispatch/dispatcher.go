// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package dispatch decodes envelopes, routes them to the matching handler
// and encodes the outcome. It never fails outwardly: anything that goes
// wrong degrades to the default outcome.
package dispatch

import (
	jsonv2 "github.com/go-json-experiment/json"

	"github.com/holomush/blockguard/internal/handler"
	"github.com/holomush/blockguard/internal/schema"
	"github.com/holomush/blockguard/pkg/event"
)

// route validates, decodes and handles one payload.
type route func(payload []byte) (event.Outcome, error)

// Dispatcher routes envelopes by tag.
type Dispatcher struct {
	routes map[event.Tag]route
}

// New creates a dispatcher over h. Panics if h is nil.
func New(h *handler.Handlers) *Dispatcher {
	if h == nil {
		panic("dispatch: handlers cannot be nil")
	}
	return &Dispatcher{
		routes: map[event.Tag]route{
			event.TagBlockBreak: bind(event.TagBlockBreak, h.BlockBreak),
			event.TagBlockPlace: bind(event.TagBlockPlace, h.BlockPlace),
			event.TagPlayerJoin: bind(event.TagPlayerJoin, h.PlayerJoin),
		},
	}
}

// bind builds a route that validates the payload against the tag's schema
// and decodes it into E before calling fn. Member names must match exactly;
// a case variant such as "BLOCK_TYPE" is an unknown member and is ignored.
func bind[E any](tag event.Tag, fn func(E) event.Outcome) route {
	return func(payload []byte) (event.Outcome, error) {
		if err := schema.Validate(tag, payload); err != nil {
			return event.Outcome{}, err
		}
		var ev E
		if err := jsonv2.Unmarshal(payload, &ev, jsonv2.MatchCaseInsensitiveNames(false)); err != nil {
			return event.Outcome{}, ErrInvalidPayload(tag, err)
		}
		return fn(ev), nil
	}
}

// Handle decodes envelope, runs the matching handler and returns the
// encoded outcome. It always returns at least one byte.
func (d *Dispatcher) Handle(envelope []byte) []byte {
	out, _ := d.Decide(envelope)
	return out.Encode()
}

// Decide is Handle without the encoding step. The error explains why the
// default outcome was returned; callers at the host boundary must drop it.
func (d *Dispatcher) Decide(envelope []byte) (out event.Outcome, err error) {
	env := event.ParseEnvelope(envelope)

	r, ok := d.routes[env.Tag]
	defer func() {
		if rec := recover(); rec != nil {
			out, err = event.Outcome{}, ErrHandlerPanic(env.Tag, rec)
		}
		recordEvent(env.Tag, ok, out, err)
	}()

	if !ok {
		return event.Outcome{}, ErrUnknownEvent(env.Tag)
	}

	out, err = r(env.Payload)
	if err != nil {
		return event.Outcome{}, err
	}
	return out, nil
}
