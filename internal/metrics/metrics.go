// Package metrics exposes the pipeline's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// JobsSubmitted counts processing jobs sent to the server, by kind
	// (bg_sub or full_process).
	JobsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gemscreen_jobs_submitted_total",
		Help: "Processing jobs submitted to the remote server.",
	}, []string{"kind"})

	// StatusPolls counts completion-status polls against the server.
	StatusPolls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gemscreen_status_polls_total",
		Help: "Completion status polls issued while waiting on a well.",
	})

	// CompletionTimeouts counts wells whose jobs never finished in time.
	CompletionTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gemscreen_completion_timeouts_total",
		Help: "Wells that hit the processing completion deadline.",
	})

	// JobsRemaining tracks the server's outstanding job count per well
	// while the completion barrier polls it.
	JobsRemaining = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gemscreen_jobs_remaining",
		Help: "Outstanding processing jobs reported by the server, per well.",
	}, []string{"well"})

	// WellsCompleted counts wells that ran the full round sequence.
	WellsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gemscreen_wells_completed_total",
		Help: "Wells that finished the full two-round workflow.",
	})

	// StepsRun counts workflow steps by step name and outcome.
	StepsRun = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gemscreen_steps_total",
		Help: "Workflow steps executed, by step and outcome.",
	}, []string{"step", "outcome"})
)

// Serve exposes /metrics on addr. It blocks, so callers run it in a
// goroutine; errors other than server shutdown are returned.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
