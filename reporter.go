package acceptor

import (
	"github.com/oci-infra/oci-acceptor/metrics"
	"github.com/oci-infra/oci-acceptor/runner"
)

// MetricsReporter is responsible for reporting metrics from run results.
type MetricsReporter interface {
	ReportResults(runID string, result *runner.RunResult)
}

// DefaultMetricsReporter implements the MetricsReporter interface.
type DefaultMetricsReporter struct{}

// NewDefaultMetricsReporter creates a new DefaultMetricsReporter.
func NewDefaultMetricsReporter() *DefaultMetricsReporter {
	return &DefaultMetricsReporter{}
}

// ReportResults reports the run results to metrics systems.
func (r *DefaultMetricsReporter) ReportResults(runID string, result *runner.RunResult) {
	metrics.RecordRun(
		runID,
		string(result.Verdict),
		result.Stats.Total,
		result.Stats.Passed,
		result.Stats.Failed,
		result.Stats.Skipped,
		result.Duration,
	)
}
