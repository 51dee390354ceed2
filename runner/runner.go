package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ethereum-optimism/infra/op-feedcheck/acceptance"
	"github.com/ethereum-optimism/infra/op-feedcheck/harness"
	"github.com/ethereum-optimism/infra/op-feedcheck/metrics"
	"github.com/ethereum-optimism/infra/op-feedcheck/types"
)

// SuiteResult captures aggregated results for a suite
type SuiteResult struct {
	ID       string
	Tests    *orderedmap.OrderedMap[string, *types.TestResult]
	Status   types.TestStatus
	Duration time.Duration
	Stats    ResultStats
}

// RunnerResult captures the complete run results
type RunnerResult struct {
	Suites      *orderedmap.OrderedMap[string, *SuiteResult]
	Status      types.TestStatus
	Duration    time.Duration
	Stats       ResultStats
	RunID       string
	Interrupted bool // ctx was cancelled before every registered case ran
}

// ResultStats tracks case statistics at each level
type ResultStats struct {
	Total     int
	Passed    int
	Failed    int
	TimedOut  int
	Skipped   int // Registered but never started, e.g. after shutdown
	StartTime time.Time
	EndTime   time.Time
}

// TestRunner defines the interface for running the acceptance suites
type TestRunner interface {
	RunAllTests(ctx context.Context) (*RunnerResult, error)
}

// Config holds configuration for creating a new runner
type Config struct {
	Log            log.Logger
	NewApp         acceptance.AppFactory // Required
	Suites         []string              // Optional suite filter, empty runs everything
	DefaultTimeout time.Duration         // Completion signal budget, 0 uses harness.DefaultTimeout
}

type runner struct {
	log            log.Logger
	newApp         acceptance.AppFactory
	suites         []string
	defaultTimeout time.Duration
	tracer         trace.Tracer
}

// NewTestRunner creates a new runner
func NewTestRunner(cfg Config) (TestRunner, error) {
	if cfg.NewApp == nil {
		return nil, errors.New("app factory is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	cfg.Log.Debug("NewTestRunner()", "suites", cfg.Suites, "defaultTimeout", cfg.DefaultTimeout)

	return &runner{
		log:            cfg.Log,
		newApp:         cfg.NewApp,
		suites:         cfg.Suites,
		defaultTimeout: cfg.DefaultTimeout,
		tracer:         otel.Tracer("feedcheck runner"),
	}, nil
}

// RunAllTests implements the TestRunner interface. A cancelled ctx stops the run after the
// in-flight case; the partial result is returned together with the cancellation error.
func (r *runner) RunAllTests(ctx context.Context) (*RunnerResult, error) {
	runID := uuid.New().String()
	start := time.Now()
	runLog := r.log.New("run_id", runID)
	runLog.Debug("Running all tests")

	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("run %s", runID))
	defer span.End()

	scheduler := harness.NewScheduler(harness.Config{
		Log:            runLog,
		DefaultTimeout: r.defaultTimeout,
	})
	if err := acceptance.Register(scheduler, r.newApp, r.suites...); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("registering suites: %w", err)
	}

	result := &RunnerResult{
		Suites: orderedmap.New[string, *SuiteResult](),
		Stats:  ResultStats{StartTime: start},
		RunID:  runID,
	}

	var (
		suite     *SuiteResult
		suiteCtx  context.Context
		suiteSpan trace.Span
	)
	endSuite := func() {
		if suite == nil {
			return
		}
		suite.Status = determineSuiteStatus(suite)
		suite.Stats.EndTime = time.Now()
		suiteSpan.SetAttributes(attribute.String("status", string(suite.Status)))
		suiteSpan.End()
	}

	for _, out := range scheduler.Run(ctx) {
		if suite == nil || suite.ID != out.Metadata.Suite {
			endSuite()
			suiteStart := time.Now().Add(-out.Duration)
			suiteCtx, suiteSpan = r.tracer.Start(ctx, fmt.Sprintf("suite %s", out.Metadata.Suite),
				trace.WithTimestamp(suiteStart))
			suite = &SuiteResult{
				ID:    out.Metadata.Suite,
				Tests: orderedmap.New[string, *types.TestResult](),
				Stats: ResultStats{StartTime: suiteStart},
			}
			result.Suites.Set(suite.ID, suite)
		}

		r.traceCase(suiteCtx, out)
		metrics.RecordCase(out.Metadata.Suite, out.Metadata.Name, out.Status, out.Duration)

		test := out
		suite.Tests.Set(out.Metadata.Name, &test)
		suite.Stats.add(test.Status)
		suite.Duration += test.Duration
	}
	endSuite()

	agg := scheduler.Aggregate().Stats()
	result.Stats.Total = agg.Total
	result.Stats.Passed = agg.Passed
	result.Stats.Failed = agg.Failed
	result.Stats.TimedOut = agg.TimedOut
	result.Stats.Skipped = scheduler.Len() - agg.Total
	result.Interrupted = ctx.Err() != nil && result.Stats.Skipped > 0
	result.Duration = time.Since(start)
	result.Status = determineRunnerStatus(result)
	result.Stats.EndTime = time.Now()

	span.SetAttributes(
		attribute.String("status", string(result.Status)),
		attribute.Int("cases", result.Stats.Total),
	)
	runLog.Info("Run finished", "status", result.Status, "passed", result.Stats.Passed,
		"failed", result.Stats.Failed, "timedOut", result.Stats.TimedOut, "skipped", result.Stats.Skipped,
		"duration", result.Duration)

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, "run interrupted")
		return result, fmt.Errorf("run interrupted: %w", err)
	}
	return result, nil
}

// traceCase records a finished case as a span covering its execution.
func (r *runner) traceCase(ctx context.Context, out harness.Outcome) {
	end := time.Now()
	_, span := r.tracer.Start(ctx, fmt.Sprintf("case %s", out.Metadata.Name),
		trace.WithTimestamp(end.Add(-out.Duration)),
		trace.WithAttributes(
			attribute.Int("case.id", out.Metadata.ID),
			attribute.String("case.suite", out.Metadata.Suite),
			attribute.String("case.status", string(out.Status)),
			attribute.Int64("case.timeout_ms", out.Metadata.Timeout.Milliseconds()),
		))
	if out.Status != types.TestStatusPass {
		span.SetStatus(codes.Error, out.Reason)
	}
	span.End(trace.WithTimestamp(end))
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// String returns a formatted string representation of the run results
func (r *RunnerResult) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Test Run Results (%s):\n", formatDuration(r.Duration)))
	b.WriteString(fmt.Sprintf("Total: %d, Passed: %d, Failed: %d, Timed out: %d, Skipped: %d\n",
		r.Stats.Total, r.Stats.Passed, r.Stats.Failed, r.Stats.TimedOut, r.Stats.Skipped))
	if r.Interrupted {
		b.WriteString(fmt.Sprintf("Interrupted: %d cases not started\n", r.Stats.Skipped))
	}

	for pair := r.Suites.Oldest(); pair != nil; pair = pair.Next() {
		suite := pair.Value
		b.WriteString(fmt.Sprintf("\nSuite: %s (%s)\n", suite.ID, formatDuration(suite.Duration)))
		b.WriteString(fmt.Sprintf("├── Status: %s\n", suite.Status))
		b.WriteString(fmt.Sprintf("├── Tests: %d passed, %d failed, %d timed out\n",
			suite.Stats.Passed, suite.Stats.Failed, suite.Stats.TimedOut))

		for tp := suite.Tests.Oldest(); tp != nil; tp = tp.Next() {
			test := tp.Value
			b.WriteString(fmt.Sprintf("├── Test: %s (%s) [status=%s]\n",
				test.Metadata.Name, formatDuration(test.Duration), test.Status))
			if test.Reason != "" {
				b.WriteString(fmt.Sprintf("│       └── Error: %s\n", test.Reason))
			}
		}
	}
	return b.String()
}

// AllTests returns every case result in execution order.
func (r *RunnerResult) AllTests() []*types.TestResult {
	var tests []*types.TestResult
	for pair := r.Suites.Oldest(); pair != nil; pair = pair.Next() {
		for tp := pair.Value.Tests.Oldest(); tp != nil; tp = tp.Next() {
			tests = append(tests, tp.Value)
		}
	}
	return tests
}

func (s *ResultStats) add(status types.TestStatus) {
	s.Total++
	switch status {
	case types.TestStatusPass:
		s.Passed++
	case types.TestStatusFail:
		s.Failed++
	case types.TestStatusTimeout:
		s.TimedOut++
	case types.TestStatusSkip:
		s.Skipped++
	}
}

// determineSuiteStatus determines the overall status of a suite based on its cases
func determineSuiteStatus(suite *SuiteResult) types.TestStatus {
	if suite.Tests.Len() == 0 {
		return types.TestStatusSkip
	}
	return determineStatusFromFlags(suite.Stats.Total == suite.Stats.Skipped,
		suite.Stats.Failed+suite.Stats.TimedOut > 0)
}

// determineRunnerStatus determines the overall status of the run. An interrupted run fails:
// its unstarted cases have no verdict.
func determineRunnerStatus(result *RunnerResult) types.TestStatus {
	if result.Interrupted {
		return types.TestStatusFail
	}
	if result.Suites.Len() == 0 {
		return types.TestStatusSkip
	}

	allSkipped := true
	anyFailed := false
	for pair := result.Suites.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Status != types.TestStatusSkip {
			allSkipped = false
		}
		if pair.Value.Status == types.TestStatusFail {
			anyFailed = true
		}
	}
	return determineStatusFromFlags(allSkipped, anyFailed)
}

// determineStatusFromFlags is a helper that returns a status based on common flag logic
func determineStatusFromFlags(allSkipped, anyFailed bool) types.TestStatus {
	if allSkipped {
		return types.TestStatusSkip
	}
	if anyFailed {
		return types.TestStatusFail
	}
	return types.TestStatusPass
}
