// Package types contains shared types used across the feedcheck harness
package types

import (
	"fmt"
	"time"
)

// TestStatus represents the possible states of a test case
type TestStatus string

const (
	TestStatusPending TestStatus = "pending"
	TestStatusRunning TestStatus = "running"
	TestStatusPass    TestStatus = "pass"
	TestStatusFail    TestStatus = "fail"
	TestStatusTimeout TestStatus = "timeout"
	TestStatusSkip    TestStatus = "skip"
)

// Terminal reports whether the status is a final verdict for a case that ran.
func (s TestStatus) Terminal() bool {
	switch s {
	case TestStatusPass, TestStatusFail, TestStatusTimeout:
		return true
	default:
		return false
	}
}

// CaseMetadata identifies a registered test case
type CaseMetadata struct {
	ID      int
	Suite   string
	Name    string
	Timeout time.Duration // Budget for the completion signal, 0 means the scheduler default
}

// FullName returns the suite-qualified case name, e.g. "The menu/is hidden by default"
func (m CaseMetadata) FullName() string {
	if m.Suite == "" {
		return m.Name
	}
	return fmt.Sprintf("%s/%s", m.Suite, m.Name)
}

// TestResult captures the outcome of a single test case
type TestResult struct {
	Metadata CaseMetadata
	Status   TestStatus
	Reason   string        // Human readable reason for non-passing cases
	Error    error         `json:"-"`
	Duration time.Duration // Time from case start to verdict
}

// Passed is a convenience helper for reporting
func (r *TestResult) Passed() bool {
	return r.Status == TestStatusPass
}
