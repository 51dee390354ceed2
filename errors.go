package feedcheck

import (
	"errors"
	"fmt"
)

// RuntimeError is an operational error of the tester itself and leads to exit code 2.
// Examples are configuration errors, unreadable feed files or servers that fail to bind.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a new RuntimeError
func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

// IsRuntimeError checks if the error is or wraps a RuntimeError
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}

// TestFailureError reports a run in which cases failed or timed out (exit code 1)
type TestFailureError struct {
	Failed  int
	Message string
}

func (e *TestFailureError) Error() string {
	return fmt.Sprintf("test failure: %d case(s) did not pass\n%s", e.Failed, e.Message)
}

// NewTestFailureError creates a new TestFailureError
func NewTestFailureError(failed int, message string) *TestFailureError {
	return &TestFailureError{Failed: failed, Message: message}
}

// IsTestFailureError checks if the error is or wraps a TestFailureError
func IsTestFailureError(err error) bool {
	var testErr *TestFailureError
	return err != nil && errors.As(err, &testErr)
}
