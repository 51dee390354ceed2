package feedcheck

import (
	"github.com/ethereum-optimism/infra/op-feedcheck/metrics"
	"github.com/ethereum-optimism/infra/op-feedcheck/runner"
)

// MetricsReporter is responsible for reporting metrics from test results.
type MetricsReporter interface {
	ReportResults(result *runner.RunnerResult)
}

// DefaultMetricsReporter implements the MetricsReporter interface.
type DefaultMetricsReporter struct{}

// NewDefaultMetricsReporter creates a new DefaultMetricsReporter.
func NewDefaultMetricsReporter() *DefaultMetricsReporter {
	return &DefaultMetricsReporter{}
}

// ReportResults records the run level metrics. Per-case metrics are recorded by the runner.
func (r *DefaultMetricsReporter) ReportResults(result *runner.RunnerResult) {
	metrics.RecordRun(
		result.RunID,
		string(result.Status),
		result.Stats.Passed,
		result.Stats.Failed,
		result.Stats.TimedOut,
		result.Duration,
	)
}
