// Package metrics exposes Prometheus collectors for the presence subsystem.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Group labels use the group kind (the part before ':'), not the full group
// key, to keep label cardinality bounded.
var (
	ConnectionsActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "kavach",
		Subsystem: "presence",
		Name:      "connections_active",
		Help:      "Currently registered connections per group kind.",
	}, []string{"group_kind"})

	BroadcastsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kavach",
		Subsystem: "presence",
		Name:      "broadcasts_total",
		Help:      "Broadcast operations per group kind.",
	}, []string{"group_kind"})

	MessagesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kavach",
		Subsystem: "presence",
		Name:      "messages_delivered_total",
		Help:      "Individual messages successfully handed to a connection.",
	})

	SendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kavach",
		Subsystem: "presence",
		Name:      "send_failures_total",
		Help:      "Per-connection delivery failures during broadcast.",
	})

	LocationUpdatesAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kavach",
		Subsystem: "presence",
		Name:      "location_updates_accepted_total",
		Help:      "Location samples that passed the motion filter.",
	})

	LocationUpdatesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kavach",
		Subsystem: "presence",
		Name:      "location_updates_dropped_total",
		Help:      "Location samples rejected as insignificant motion.",
	})

	SOSTriggered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kavach",
		Subsystem: "alert",
		Name:      "sos_triggered_total",
		Help:      "SOS events created.",
	})
)
