// Package exitcodes defines the exit codes of op-feedcheck.
package exitcodes

// Exit codes:
//
// * Success (0): every case of the run passed
// * TestFailure (1): at least one case failed or timed out
// * RuntimeErr (2): the tester itself failed, e.g. bad configuration or a panic
const (
	Success     = 0
	TestFailure = 1
	RuntimeErr  = 2
)
