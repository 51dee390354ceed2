// Package harness runs test cases whose setup completes asynchronously.
//
// A case declares an optional setup function and a synchronous assertion function. The setup
// receives a single-use Signal and may finish its work on any goroutine; the scheduler waits for
// the signal (bounded by the case's timeout budget) before it runs the assertions. Cases run one
// at a time, suites in the order they were first registered and cases in registration order within
// a suite, so fixtures mutated by a setup are only ever observed by the paired assertions.
//
// Every case that runs ends in exactly one of pass, fail or timeout and is appended to the
// scheduler's Aggregate before it is yielded to the caller.
package harness
