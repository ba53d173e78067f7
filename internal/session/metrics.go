package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizzypop_submissions_accepted_total",
		Help: "Answer submissions accepted and written to the store.",
	})

	submissionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quizzypop_submissions_rejected_total",
		Help: "Answer submissions rejected before the store write.",
	}, []string{"reason"})

	sessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizzypop_sessions_completed_total",
		Help: "Sessions that finished the scoring pass and ended.",
	})
)
