package metrics

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/oci-infra/oci-acceptor/types"
)

const (
	MetricsNamespace = "acceptor"
)

var (
	Debug                bool = true
	validVerdicts             = []types.Verdict{types.VerdictPass, types.VerdictFail, types.VerdictSkip}
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	caseResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "case_results_total",
		Help:      "Count of validation case verdicts",
	}, []string{
		"run_id",
		"case",
		"result",
	})

	caseDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "case_duration_seconds",
		Help:      "Wall-clock duration of each validation case",
	}, []string{
		"run_id",
		"case",
	})

	runResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_results",
		Help:      "Result of conformance runs",
	}, []string{
		"run_id",
		"result",
	})

	runCasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "run_cases_total",
		Help:      "Total number of cases scheduled in a run",
	}, []string{
		"run_id",
	})

	runCasesPassed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "run_cases_passed",
		Help:      "Number of passed cases in a run",
	}, []string{
		"run_id",
	})

	runCasesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "run_cases_failed",
		Help:      "Number of failed cases in a run",
	}, []string{
		"run_id",
	})

	runCasesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "run_cases_skipped",
		Help:      "Number of skipped cases in a run",
	}, []string{
		"run_id",
	})

	runDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of conformance runs",
	}, []string{
		"run_id",
	})

	buildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "builds_total",
		Help:      "Count of validation executable builds",
	}, []string{
		"result",
	})

	buildDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "build_duration_seconds",
		Help:      "Duration of the last validation executable build",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		slog.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

func RecordCase(runID string, caseID string, verdict types.Verdict, duration time.Duration) {
	if !isValidVerdict(verdict) {
		slog.Error("RecordCase - invalid verdict", "verdict", verdict)
		return
	}
	if Debug {
		slog.Debug("metric inc",
			"m", "case_results_total",
			"run_id", runID,
			"case", caseID,
			"result", verdict)
	}
	caseResultsTotal.WithLabelValues(runID, caseID, string(verdict)).Inc()
	caseDuration.WithLabelValues(runID, caseID).Set(duration.Seconds())
}

func RecordRun(
	runID string,
	result string,
	total int,
	passed int,
	failed int,
	skipped int,
	duration time.Duration,
) {
	runResults.WithLabelValues(runID, result).Set(1)
	runCasesTotal.WithLabelValues(runID).Add(float64(total))
	runCasesPassed.WithLabelValues(runID).Add(float64(passed))
	runCasesFailed.WithLabelValues(runID).Add(float64(failed))
	runCasesSkipped.WithLabelValues(runID).Add(float64(skipped))
	runDuration.WithLabelValues(runID).Set(duration.Seconds())
}

func RecordBuild(result string, duration time.Duration) {
	if Debug {
		slog.Debug("metric inc",
			"m", "builds_total",
			"result", result)
	}
	buildsTotal.WithLabelValues(result).Inc()
	buildDuration.Set(duration.Seconds())
}

func isValidVerdict(verdict types.Verdict) bool {
	return slices.Contains(validVerdicts, verdict)
}
