// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package host

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/holomush/blockguard/pkg/event"
)

// Delivery statuses recorded in metrics.
const (
	StatusAllowed   = "allowed"
	StatusCancelled = "cancelled"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// otherTagLabel stands in for every tag the guard does not route, so
// caller-supplied tags cannot grow label cardinality.
const otherTagLabel = "other"

var routedTags = func() map[event.Tag]struct{} {
	set := make(map[event.Tag]struct{}, len(event.Tags()))
	for _, t := range event.Tags() {
		set[t] = struct{}{}
	}
	return set
}()

func tagLabel(tag event.Tag) string {
	if _, ok := routedTags[tag]; ok {
		return string(tag)
	}
	return otherTagLabel
}

// Metrics holds host delivery metrics.
type Metrics struct {
	Deliveries *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	Commands   *prometheus.CounterVec
}

// NewMetrics creates host metrics and registers them with reg.
// Panics if registration fails (following prometheus convention).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockguard_host_deliveries_total",
				Help: "Total number of events offered to the guard by tag and status",
			},
			[]string{"tag", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blockguard_host_delivery_duration_seconds",
				Help:    "Time the guard took to answer an event",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tag"},
		),
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockguard_host_commands_total",
				Help: "Total number of guard commands applied by kind",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.Deliveries, m.Duration, m.Commands)
	return m
}

func (m *Metrics) observe(tag event.Tag, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := tagLabel(tag)
	m.Deliveries.WithLabelValues(label, status).Inc()
	if status != StatusSkipped {
		m.Duration.WithLabelValues(label).Observe(elapsed.Seconds())
	}
}

func (m *Metrics) command(kind event.CommandKind) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(string(kind)).Inc()
}
