// Package metrics defines the Prometheus collectors for the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Update metrics
var (
	UpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fedcase_updates_total",
		Help: "Total number of gateway updates processed",
	}, []string{"type"})
)

// Case metrics
var (
	CasesSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fedcase_cases_submitted_total",
		Help: "Total number of cases committed",
	}, []string{"kind"})

	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fedcase_decisions_total",
		Help: "Total number of moderator decisions",
	}, []string{"kind", "decision"})

	CasesDeletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fedcase_cases_deleted_total",
		Help: "Total number of cases deleted by moderators",
	}, []string{"kind"})
)

// Store metrics
var (
	StoreSavesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fedcase_store_saves_total",
		Help: "Total number of store snapshot writes",
	}, []string{"backend"})

	StoreSaveErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fedcase_store_save_errors_total",
		Help: "Total number of failed store snapshot writes",
	}, []string{"backend"})
)

// Broadcast metrics
var (
	BroadcastDeliveriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fedcase_broadcast_deliveries_total",
		Help: "Total number of broadcast messages delivered",
	})

	BroadcastFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fedcase_broadcast_failures_total",
		Help: "Total number of broadcast messages that failed to send",
	})
)
