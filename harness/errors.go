package harness

import "errors"

var (
	// ErrAssertionMismatch wraps failures raised during the assertion phase.
	ErrAssertionMismatch = errors.New("assertion mismatch")
	// ErrSetupFault wraps errors and panics raised by a setup before its signal fired.
	ErrSetupFault = errors.New("setup raised before completion")
	// ErrSignalTimeout is reported when the completion signal did not fire within the budget.
	ErrSignalTimeout = errors.New("completion signal not received within budget")
	// ErrLateSignal marks a signal fired after its case was resolved. It is only logged.
	ErrLateSignal = errors.New("completion signal fired after case resolved")
	// ErrRunCancelled is reported for the in-flight case when the run context is cancelled.
	ErrRunCancelled = errors.New("run cancelled")
	// ErrAlreadyStarted is returned by Register once Run has begun consuming the queue.
	ErrAlreadyStarted = errors.New("scheduler already started")
)
