package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DrawsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "olympics",
		Subsystem: "draws",
		Name:      "created_total",
		Help:      "Draws generated, by draw type.",
	}, []string{"draw_type"})

	DrawsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "olympics",
		Subsystem: "draws",
		Name:      "completed_total",
		Help:      "Draws that reached the completed status, by draw type.",
	}, []string{"draw_type"})

	MatchTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "olympics",
		Subsystem: "matches",
		Name:      "transitions_total",
		Help:      "Accepted match operations, by operation.",
	}, []string{"operation"})

	OperationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "olympics",
		Subsystem: "engine",
		Name:      "failures_total",
		Help:      "Rejected or failed engine operations, by operation.",
	}, []string{"operation"})

	EmitterFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "olympics",
		Subsystem: "emitter",
		Name:      "failures_total",
		Help:      "Result notifications that could not be delivered, by sink.",
	}, []string{"sink"})
)
