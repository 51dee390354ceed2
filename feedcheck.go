// Package feedcheck is the op-feedcheck service: it runs the feed-reader acceptance suites once or
// periodically and reports the results to the console, to disk and as metrics.
package feedcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/ethereum-optimism/infra/op-feedcheck/exitcodes"
	"github.com/ethereum-optimism/infra/op-feedcheck/reader"
	"github.com/ethereum-optimism/infra/op-feedcheck/reporting"
	"github.com/ethereum-optimism/infra/op-feedcheck/runner"
	"github.com/ethereum-optimism/infra/op-feedcheck/service"
	"github.com/ethereum-optimism/infra/op-feedcheck/types"
	"github.com/ethereum-optimism/optimism/op-service/cliapp"
)

// feedcheck implements the cliapp.Lifecycle interface.
var _ cliapp.Lifecycle = &feedcheck{}

type feedcheck struct {
	config    *Config
	version   string
	executor  TestExecutor
	scheduler TestScheduler
	reporter  MetricsReporter
	service   *service.Service
	out       io.Writer

	mu     sync.Mutex
	result *runner.RunnerResult

	running atomic.Bool

	shutdownCallback func(error) // Callback to signal application shutdown
}

func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*feedcheck, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating feedcheck with config",
		"feeds", config.FeedsFile,
		"suites", config.Suites,
		"defaultTimeout", config.DefaultTimeout,
		"loadLatency", config.LoadLatency,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce)

	testRunner, err := runner.NewTestRunner(runner.Config{
		Log:            config.Log,
		NewApp:         appFactory(config),
		Suites:         config.Suites,
		DefaultTimeout: config.DefaultTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create test runner: %w", err)
	}

	f := &feedcheck{
		config:           config,
		version:          version,
		executor:         NewDefaultTestExecutor(testRunner, config.Log),
		scheduler:        NewDefaultTestScheduler(config.RunInterval, config.RunOnce, config.Log),
		reporter:         NewDefaultMetricsReporter(),
		out:              os.Stdout,
		shutdownCallback: shutdownCallback,
	}
	f.service = service.New(service.Config{
		Log:         config.Log,
		HealthzAddr: config.HealthzAddr,
		Metrics:     config.MetricsConfig,
		Status:      f.lastStatus,
		NextRun:     f.scheduler.NextRun,
	})
	f.scheduler.RegisterCallback(f.runTests)
	return f, nil
}

// appFactory builds a fresh widget per case.
func appFactory(config *Config) func() (*reader.App, error) {
	return func() (*reader.App, error) {
		return reader.New(reader.Config{
			Log:    config.Log,
			Feeds:  config.Feeds,
			Source: &reader.FixtureSource{Latency: config.LoadLatency},
		}), nil
	}
}

// Start runs the acceptance suites, once or at the configured interval.
// Start implements the cliapp.Lifecycle interface.
func (f *feedcheck) Start(ctx context.Context) error {
	// Set up panic recovery to ensure we exit with code 2 for runtime errors
	defer func() {
		if r := recover(); r != nil {
			f.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	f.running.Store(true)
	if err := f.service.Start(ctx); err != nil {
		return NewRuntimeError(err)
	}

	if f.config.RunOnce {
		f.config.Log.Info("Starting op-feedcheck in run-once mode")
	} else {
		f.config.Log.Info("Starting op-feedcheck in continuous mode", "interval", f.config.RunInterval)
	}

	if err := f.scheduler.Start(ctx); err != nil {
		f.config.Log.Error("Runtime error running tests", "error", err)
		return err
	}

	if f.config.RunOnce {
		f.config.Log.Info("Tests completed, exiting (run-once mode)")

		result := f.Result()
		if result != nil && result.Interrupted {
			f.config.Log.Warn("Run-once test run was interrupted, returning exit code 2", "not_started", result.Stats.Skipped)
			return NewRuntimeError(fmt.Errorf("run %s interrupted: %d cases not started", result.RunID, result.Stats.Skipped))
		}
		if result != nil && result.Status == types.TestStatusFail {
			f.config.Log.Warn("Run-once test run completed with failures, returning exit code 1")
			return NewTestFailureError(result.Stats.Failed+result.Stats.TimedOut, result.String())
		}

		go func() {
			f.shutdownCallback(nil)
		}()
		return nil
	}

	f.config.Log.Debug("op-feedcheck started successfully")
	return nil
}

// runTests runs all suites and processes the results
func (f *feedcheck) runTests(ctx context.Context) error {
	result, err := f.executor.RunTests(ctx)
	if err != nil {
		if result == nil || ctx.Err() == nil {
			return NewRuntimeError(err)
		}
		f.config.Log.Warn("Run interrupted, reporting partial results", "run_id", result.RunID, "err", err)
	}

	f.mu.Lock()
	f.result = result
	f.mu.Unlock()

	reporting.RenderTable(f.out, result)
	fmt.Fprintln(f.out, result.String())

	if f.config.LogDir != "" {
		dir, err := reporting.WriteRunFiles(f.config.LogDir, result)
		if err != nil {
			f.config.Log.Error("Failed to write run files", "error", err)
		} else {
			f.config.Log.Info("Wrote run files", "dir", dir)
		}
	}

	f.reporter.ReportResults(result)
	f.config.Log.Info("Test run completed", "run_id", result.RunID, "status", result.Status)
	return nil
}

// Result returns the result of the last completed run, nil if none completed yet.
func (f *feedcheck) Result() *runner.RunnerResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

func (f *feedcheck) lastStatus() string {
	if result := f.Result(); result != nil {
		return string(result.Status)
	}
	return ""
}

// Stop stops the op-feedcheck service.
// Stop implements the cliapp.Lifecycle interface.
func (f *feedcheck) Stop(ctx context.Context) error {
	f.config.Log.Info("Stopping op-feedcheck")

	if !f.running.CompareAndSwap(true, false) {
		f.config.Log.Debug("Service already stopped, nothing to do")
		return nil
	}

	var result error
	if err := f.scheduler.Stop(); err != nil {
		result = errors.Join(result, err)
	}
	if err := f.service.Shutdown(ctx); err != nil {
		result = errors.Join(result, err)
	}

	f.config.Log.Info("op-feedcheck stopped successfully")
	return result
}

// Stopped returns true if the op-feedcheck service is stopped.
// Stopped implements the cliapp.Lifecycle interface.
func (f *feedcheck) Stopped() bool {
	return !f.running.Load()
}

// WaitForShutdown blocks until all goroutines have terminated.
// This is useful in tests to ensure complete cleanup before moving to the next test.
func (f *feedcheck) WaitForShutdown(ctx context.Context) error {
	return f.scheduler.WaitForShutdown(ctx)
}
