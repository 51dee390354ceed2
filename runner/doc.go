// Package runner executes the acceptance suites for one run.
//
// A run builds a fresh harness scheduler, registers the selected suites on it and drains the
// scheduler's sequence. Outcomes are grouped per suite in execution order into a RunnerResult,
// recorded as metrics, and traced with one span per run, suite and case.
package runner
