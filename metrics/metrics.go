package metrics

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/ethereum-optimism/infra/op-feedcheck/types"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	MetricsNamespace = "feedcheck"
)

var (
	Debug                bool = true
	validResults              = []types.TestStatus{types.TestStatusPass, types.TestStatusFail, types.TestStatusTimeout}
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	registry = opmetrics.NewRegistry()
	factory  = promauto.With(registry)

	errorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	casesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "cases_total",
		Help:      "Count of test cases by verdict",
	}, []string{
		"suite",
		"case",
		"result",
	})

	caseDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: MetricsNamespace,
		Name:      "case_duration_seconds",
		Help:      "Time from case start to verdict",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
	}, []string{
		"suite",
		"result",
	})

	signalsDiscarded = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "signals_discarded_total",
		Help:      "Completion signals ignored because they were duplicates or arrived after the case resolved",
	}, []string{
		"suite",
		"kind",
	})

	runResults = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_results",
		Help:      "Result of acceptance runs",
	}, []string{
		"run_id",
		"result",
	})

	runCases = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "run_cases_total",
		Help:      "Number of cases per run and verdict",
	}, []string{
		"run_id",
		"result",
	})

	runDuration = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of acceptance runs",
	}, []string{
		"run_id",
	})
)

// Registry returns the registry all feedcheck metrics are registered on.
func Registry() *prometheus.Registry {
	return registry
}

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
		log.Debug("metric inc",
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

// RecordCase records the verdict of a single case
func RecordCase(suite string, name string, result types.TestStatus, duration time.Duration) {
	if !isValidResult(result) {
		log.Error("RecordCase - invalid result", "result", result)
		return
	}
	if Debug {
		log.Debug("metric inc",
			"m", "cases_total",
			"suite", suite,
			"case", name,
			"result", result)
	}
	casesTotal.WithLabelValues(suite, name, string(result)).Inc()
	caseDuration.WithLabelValues(suite, string(result)).Observe(duration.Seconds())
}

// RecordDiscardedSignal counts a completion signal that had no effect.
// kind is either "duplicate" or "late".
func RecordDiscardedSignal(suite string, kind string) {
	signalsDiscarded.WithLabelValues(suite, kind).Inc()
}

func RecordRun(
	runID string,
	result string,
	passed int,
	failed int,
	timedOut int,
	duration time.Duration,
) {
	runResults.WithLabelValues(runID, result).Set(1)
	runCases.WithLabelValues(runID, string(types.TestStatusPass)).Add(float64(passed))
	runCases.WithLabelValues(runID, string(types.TestStatusFail)).Add(float64(failed))
	runCases.WithLabelValues(runID, string(types.TestStatusTimeout)).Add(float64(timedOut))
	runDuration.WithLabelValues(runID).Set(duration.Seconds())
}

func isValidResult(result types.TestStatus) bool {
	return slices.Contains(validResults, result)
}
