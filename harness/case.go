package harness

import (
	"context"
	"time"
)

// CaseID identifies a registered case. IDs are assigned in registration order starting at 1.
type CaseID int

// SetupFunc performs the (possibly asynchronous) setup of a case. It must resolve done exactly
// once, either before returning or later from another goroutine. Returning a non-nil error before
// done fires fails the case. ctx is cancelled once the case is resolved.
type SetupFunc func(ctx context.Context, done *Signal) error

// AssertFunc performs the synchronous checks of a case. Mismatches are reported through t.
type AssertFunc func(t T)

// Case is a unit of work for the Scheduler.
type Case struct {
	Suite   string
	Name    string
	Setup   SetupFunc     // Optional
	Assert  AssertFunc    // Required
	Timeout time.Duration // Budget for the completion signal, 0 uses the scheduler default

	prepare func() (SetupFunc, AssertFunc)
}

// Fixtured builds a case whose setup and assertions share a fixture. newFixture is called when
// the case starts, so every case observes its own fixture and nothing leaks between cases.
func Fixtured[F any](
	suite, name string,
	newFixture func() F,
	setup func(ctx context.Context, fx F, done *Signal) error,
	assert func(t T, fx F),
) Case {
	c := Case{Suite: suite, Name: name}
	if assert == nil {
		return c
	}
	c.prepare = func() (SetupFunc, AssertFunc) {
		fx := newFixture()
		var s SetupFunc
		if setup != nil {
			s = func(ctx context.Context, done *Signal) error {
				return setup(ctx, fx, done)
			}
		}
		return s, func(t T) { assert(t, fx) }
	}
	return c
}

// bind returns the setup and assert functions for one execution of the case.
func (c Case) bind() (SetupFunc, AssertFunc) {
	if c.prepare != nil {
		return c.prepare()
	}
	return c.Setup, c.Assert
}

func (c Case) hasAssert() bool {
	return c.Assert != nil || c.prepare != nil
}
