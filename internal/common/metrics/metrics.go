package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	TaskRunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_task_runs_completed_total",
			Help: "Total number of task runs completed",
		},
		[]string{"task_type"},
	)

	TaskRunsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_task_runs_failed_total",
			Help: "Total number of task runs failed",
		},
		[]string{"task_type", "error_code"},
	)

	TaskRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "intake_task_run_duration_seconds",
			Help: "Duration of task runs in seconds",
		},
		[]string{"task_type"},
	)

	ValidationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_validations_total",
			Help: "Profile validations by outcome (passed, failed, malformed)",
		},
		[]string{"outcome"},
	)

	ProbeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_probe_failures_total",
			Help: "Repository probes that failed and were treated as absent",
		},
		[]string{"probe"},
	)

	ReposScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_repos_scanned_total",
			Help: "Non-fork repositories inspected during profile scans",
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_scan_cache_lookups_total",
			Help: "Scan cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	Scores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_score",
			Help:    "Distribution of computed sub-scores and totals",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"component"},
	)
)

// Push sends everything in the default registry to a Pushgateway. The CLI
// exits after each run, so there is nothing to scrape.
func Push(url, job string, grouping map[string]string) error {
	if url == "" {
		return nil
	}
	pusher := push.New(url, job).Gatherer(prometheus.DefaultGatherer)
	for k, v := range grouping {
		pusher = pusher.Grouping(k, v)
	}
	if err := pusher.Push(); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
