// Package metrics defines the Prometheus collectors for the orchestrator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// BatchesTotal counts completed batch runs.
	BatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hiring_orchestrator_batches_total",
			Help: "Total number of batch runs processed",
		},
	)

	// InvocationsTotal counts agent invocations by agent and normalized status.
	InvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hiring_orchestrator_invocations_total",
			Help: "Total number of agent invocations by agent and result status",
		},
		[]string{"agent", "status"},
	)

	// InvocationDurationMs observes wall-clock invocation duration per agent.
	InvocationDurationMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hiring_orchestrator_invocation_duration_milliseconds",
			Help:    "Agent invocation duration in milliseconds",
			Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 10000, 30000, 90000},
		},
		[]string{"agent"},
	)

	// PolicyBlocksTotal counts tasks short-circuited by the upload policy.
	PolicyBlocksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hiring_orchestrator_policy_blocks_total",
			Help: "Total number of invocations blocked by the upload policy",
		},
	)

	// UnmatchedFilesTotal counts uploaded files that matched no agent.
	UnmatchedFilesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hiring_orchestrator_unmatched_files_total",
			Help: "Total number of uploaded files with no matching agent",
		},
	)
)

func init() {
	prometheus.MustRegister(BatchesTotal)
	prometheus.MustRegister(InvocationsTotal)
	prometheus.MustRegister(InvocationDurationMs)
	prometheus.MustRegister(PolicyBlocksTotal)
	prometheus.MustRegister(UnmatchedFilesTotal)
}
