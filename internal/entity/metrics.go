// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package entity

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the entity runtime's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	EventsAppended  *prometheus.CounterVec
	ReplaysTotal    *prometheus.CounterVec
	LiveEngines     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "profile_entity_commands_total",
				Help: "Total number of entity commands by command and outcome",
			},
			[]string{"command", "outcome"},
		),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "profile_entity_command_duration_seconds",
				Help:    "Time from dequeue to reply for entity commands",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		EventsAppended: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "profile_entity_events_appended_total",
				Help: "Total number of events durably appended by type",
			},
			[]string{"type"},
		),
		ReplaysTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "profile_entity_replays_total",
				Help: "Total number of stream replays by outcome",
			},
			[]string{"outcome"},
		),
		LiveEngines: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "profile_entity_live_engines",
				Help: "Number of entity engines currently in memory",
			},
		),
	}

	reg.MustRegister(m.CommandsTotal, m.CommandDuration, m.EventsAppended, m.ReplaysTotal, m.LiveEngines)
	return m
}

func (m *Metrics) observeCommand(command string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(command, KindOf(err).String()).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}

func (m *Metrics) eventAppended(eventType string) {
	if m == nil {
		return
	}
	m.EventsAppended.WithLabelValues(eventType).Inc()
}

func (m *Metrics) replayed(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ReplaysTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) engineStarted() {
	if m != nil {
		m.LiveEngines.Inc()
	}
}

func (m *Metrics) engineStopped() {
	if m != nil {
		m.LiveEngines.Dec()
	}
}
