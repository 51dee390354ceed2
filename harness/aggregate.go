package harness

import (
	"sync"

	"github.com/ethereum-optimism/infra/op-feedcheck/types"
)

// Outcome is the verdict of a single case.
type Outcome = types.TestResult

// Stats counts verdicts in an Aggregate.
type Stats struct {
	Total    int
	Passed   int
	Failed   int
	TimedOut int
}

// Aggregate is the append-only, ordered log of case outcomes.
type Aggregate struct {
	mu      sync.RWMutex
	entries []Outcome
}

// Append adds an outcome to the end of the log.
func (a *Aggregate) Append(o Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, o)
}

// Entries returns a copy of the log in append order.
func (a *Aggregate) Entries() []Outcome {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Outcome, len(a.entries))
	copy(out, a.entries)
	return out
}

// Len returns the number of outcomes recorded so far.
func (a *Aggregate) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}

// Stats counts the verdicts recorded so far.
func (a *Aggregate) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var s Stats
	for _, e := range a.entries {
		s.Total++
		switch e.Status {
		case types.TestStatusPass:
			s.Passed++
		case types.TestStatusFail:
			s.Failed++
		case types.TestStatusTimeout:
			s.TimedOut++
		}
	}
	return s
}
