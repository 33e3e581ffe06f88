// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/holomush/blockguard/pkg/event"
)

// Results recorded per dispatched envelope.
const (
	resultAllowed   = "allowed"
	resultCancelled = "cancelled"
	resultRejected  = "rejected"
	resultUnknown   = "unknown"
)

// unknownTagLabel keeps arbitrary host tags out of label values.
const unknownTagLabel = "other"

// eventsTotal counts dispatched envelopes by tag and result.
var eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "blockguard_events_total",
	Help: "Total number of envelopes dispatched by the guard, by tag and result",
}, []string{"tag", "result"})

func recordEvent(tag event.Tag, routed bool, out event.Outcome, err error) {
	label := string(tag)
	if !routed {
		label = unknownTagLabel
	}

	var result string
	switch {
	case !routed:
		result = resultUnknown
	case err != nil:
		result = resultRejected
	case out.Cancelled:
		result = resultCancelled
	default:
		result = resultAllowed
	}
	eventsTotal.WithLabelValues(label, result).Inc()
}
