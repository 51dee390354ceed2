package feedcheck

import (
	"context"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-feedcheck/runner"
)

// TestExecutor is responsible for running tests.
type TestExecutor interface {
	RunTests(ctx context.Context) (*runner.RunnerResult, error)
}

// DefaultTestExecutor implements the TestExecutor interface.
type DefaultTestExecutor struct {
	runner runner.TestRunner
	logger log.Logger
}

// NewDefaultTestExecutor creates a new DefaultTestExecutor.
func NewDefaultTestExecutor(runner runner.TestRunner, logger log.Logger) *DefaultTestExecutor {
	return &DefaultTestExecutor{
		runner: runner,
		logger: logger,
	}
}

// RunTests runs all tests and returns the results. An interrupted run returns its partial
// result together with the error.
func (e *DefaultTestExecutor) RunTests(ctx context.Context) (*runner.RunnerResult, error) {
	e.logger.Info("Running all tests...")
	result, err := e.runner.RunAllTests(ctx)
	if err != nil {
		e.logger.Error("Error running tests", "error", err)
		return result, err
	}
	e.logger.Info("Test run completed", "run_id", result.RunID, "status", result.Status)
	return result, nil
}
