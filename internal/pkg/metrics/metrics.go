// Package metrics registers the prometheus collectors for the report
// lifecycle and the notification fan-out.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ReportsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_created_total",
		Help: "Total number of reports created",
	}, []string{"type"})

	StatusTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_status_transitions_total",
		Help: "Total number of report status transitions",
	}, []string{"to"})

	DispatchOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_dispatch_total",
		Help: "Per-channel notification dispatch outcomes",
	}, []string{"channel", "outcome"})

	BroadcastsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "broadcasts_published_total",
		Help: "Total number of report broadcasts",
	}, []string{"trigger"}) // immediate or sweep
)

// Register adds all collectors to the default registry. Call once at startup.
func Register() {
	prometheus.MustRegister(
		ReportsCreated,
		StatusTransitions,
		DispatchOutcomes,
		BroadcastsPublished,
	)
}
