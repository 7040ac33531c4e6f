package lifecycle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fir_submissions_total",
		Help: "FIRs stored, by source",
	}, []string{"source"})

	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fir_transitions_total",
		Help: "Applied FIR status updates, by previous and new status",
	}, []string{"from", "to"})

	degradedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fir_collaborator_degraded_total",
		Help: "Submissions that fell back after a collaborator failure",
	}, []string{"reason"})

	notificationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fir_notification_failures_total",
		Help: "Status changes whose notification could not be stored",
	})
)
